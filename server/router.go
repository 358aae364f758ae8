package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sbb-poker/server/agent"
	"sbb-poker/server/config"
	"sbb-poker/server/engine"
	"sbb-poker/server/matchstate"
	"sbb-poker/server/opponent"
	"sbb-poker/server/policy"
	"sbb-poker/server/session"
	"sbb-poker/server/store"
)

// Server carries what the HTTP handlers need. db is nil when storage is off.
type Server struct {
	cfg *config.Config
	mgr *session.Manager
	db  *store.DB
	log zerolog.Logger
}

// NewServer starts sessions from the configured default policy; a create
// request may swap the policy and seed.
func NewServer(cfg *config.Config, db *store.DB, log zerolog.Logger) (*Server, error) {
	kind, err := policy.ParseKind(cfg.Policy)
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.Session(kind, 0, log)
	if err != nil {
		return nil, err
	}
	var rec session.Recorder
	if db != nil {
		rec = db
	}
	return &Server{
		cfg: cfg,
		mgr: session.NewManager(defaults, rec, log),
		db:  db,
		log: log,
	}, nil
}

func Router(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.health)
	r.Post("/api/decode", s.decode)
	r.Get("/api/leaderboard", s.leaderboard)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/observe", s.observe)
			r.Post("/decide", s.decide)
			r.Post("/reset", s.resetSession)
			r.Get("/decisions", s.decisions)
		})
	})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http")
		})
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

type createRequest struct {
	Policy string `json:"policy"`
	Seed   int64  `json:"seed"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"sessions": len(s.mgr.List()),
		"storage":  s.db != nil,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !readJSON(w, r, &req) {
		return
	}
	out, err := describeMessage(s.cfg, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// describeMessage decodes msg and adds what the core derives from it.
func describeMessage(cfg *config.Config, msg string) (map[string]any, error) {
	snap, err := matchstate.Decode(msg)
	if err != nil {
		return nil, err
	}
	x := agent.Extractor{Stakes: cfg.Stakes()}
	if cfg.HandStrength {
		x.Oracle = engine.Ranker{}
	}
	out := map[string]any{
		"position":         snap.Position,
		"hand_id":          snap.HandID,
		"rounds":           snap.Rounds,
		"hole_cards":       snap.HoleCards,
		"board_cards":      snap.BoardCards,
		"showdown":         snap.IsShowdown(),
		"to_act":           snap.IsCurrentPlayerToAct(),
		"opponent_actions": snap.OpponentActions(),
		"inputs":           x.Names(),
		"features":         x.Features(snap),
		"valid":            agent.ValidActions(snap),
	}
	// once the flop is out, name the best hand the seat holds
	if cards, err := engine.ParseCards(append([]string{snap.CurrentHoleCards()}, snap.BoardCards...)...); err == nil && len(cards) >= 5 {
		if d := engine.Describe(cards); d != "" {
			out["best_hand"] = d
		}
	}
	return out, nil
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.List())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sc := s.mgr.Defaults()
	req := createRequest{Policy: sc.Policy.String()}
	if !readJSON(w, r, &req) {
		return
	}
	kind, err := policy.ParseKind(req.Policy)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sc.Policy, sc.Seed = kind, req.Seed
	sess, err := s.mgr.Create(r.Context(), sc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Info())
}

// withSession resolves {id} or answers 404.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.mgr.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.withSession(w, r); ok {
		writeJSON(w, http.StatusOK, sess.Info())
	}
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) observe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !readJSON(w, r, &req) {
		return
	}
	snap, err := sess.Observe(req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"to_act":  snap.IsCurrentPlayerToAct(),
		"session": sess.Info(),
	})
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !readJSON(w, r, &req) {
		return
	}
	d, err := sess.Decide(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.withSession(w, r); ok {
		sess.Reset()
		writeJSON(w, http.StatusOK, sess.Info())
	}
}

func (s *Server) decisions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage disabled"})
		return
	}
	id := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ds, err := s.db.RecentDecisions(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if ds == nil {
		ds = []session.Decision{}
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage disabled"})
		return
	}
	rows, err := s.db.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []store.Standing{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// readJSON decodes the body into v; an empty body leaves v untouched.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json: " + err.Error()})
	return false
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotToAct),
		errors.Is(err, opponent.ErrDegenerateBelief):
		return http.StatusConflict
	case errors.Is(err, matchstate.ErrDecode),
		errors.Is(err, agent.ErrUnknownAction),
		errors.Is(err, agent.ErrIllegalAction),
		errors.Is(err, opponent.ErrBadTable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
