// Package session turns match-state messages into decisions for one seat,
// keeping the per-match state (belief, point ids, hand tracking) together.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sbb-poker/server/agent"
	"sbb-poker/server/matchstate"
	"sbb-poker/server/opponent"
	"sbb-poker/server/policy"
)

var (
	ErrNotToAct = errors.New("seat is not to act")
	ErrNotFound = errors.New("session not found")
)

// Decision is one answered decision point.
type Decision struct {
	SessionID string           `json:"session_id"`
	PointID   int64            `json:"point_id"`
	HandID    int              `json:"hand_id"`
	Position  int              `json:"position"`
	Message   string           `json:"message"`
	Features  []float64        `json:"features"`
	Valid     []agent.Action   `json:"valid"`
	Action    agent.Action     `json:"action"`
	Style     string           `json:"style,omitempty"`
	Belief    *opponent.Belief `json:"belief,omitempty"`
	At        time.Time        `json:"at"`
}

// Recorder persists sessions and decisions. Failures are logged, never
// returned to the caller of Decide.
type Recorder interface {
	CreateSession(ctx context.Context, id, policy string, settings map[string]any) error
	RecordDecision(ctx context.Context, d Decision) error
}

// Config is what a session is built from.
type Config struct {
	Stakes     agent.Stakes
	Policy     policy.Kind
	Seed       int64
	Training   bool
	Oracle     agent.HandRanker
	Classifier []opponent.Option
}

// Info is the externally visible state of a session.
type Info struct {
	ID        string                   `json:"id"`
	Policy    string                   `json:"policy"`
	Created   time.Time                `json:"created"`
	Decisions int                      `json:"decisions"`
	LastPoint int64                    `json:"last_point"`
	HandID    int                      `json:"hand_id"`
	Belief    *opponent.Belief         `json:"belief,omitempty"`
	Style     string                   `json:"style,omitempty"`
	History   string                   `json:"history,omitempty"`
	Metrics   opponent.BehaviorMetrics `json:"metrics"`
}

// NewPolicy builds any policy kind, including the classifier, which is
// also returned on its own so callers can read its belief.
func NewPolicy(kind policy.Kind, seed int64, opts ...opponent.Option) (policy.Policy, *opponent.Classifier, error) {
	if kind != policy.KindBayesian {
		p, err := policy.New(kind, seed)
		return p, nil, err
	}
	c, err := opponent.NewClassifier(opts...)
	if err != nil {
		return nil, nil, err
	}
	c.Initialize(seed)
	return c, c, nil
}

// Session plays one seat of one match. Calls are serialized.
type Session struct {
	ID string

	mu         sync.Mutex
	cfg        Config
	policy     policy.Policy
	classifier *opponent.Classifier
	extractor  agent.Extractor
	points     PointAllocator
	tally      opponent.Tally
	rec        Recorder
	log        zerolog.Logger
	created    time.Time
	decisions  int

	handID  int
	inHand  bool
	oppSeen int
}

func New(id string, cfg Config, rec Recorder, log zerolog.Logger) (*Session, error) {
	p, c, err := NewPolicy(cfg.Policy, cfg.Seed, cfg.Classifier...)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         id,
		cfg:        cfg,
		policy:     p,
		classifier: c,
		extractor:  agent.Extractor{Stakes: cfg.Stakes, Oracle: cfg.Oracle},
		rec:        rec,
		log:        log.With().Str("session", id).Str("policy", p.Name()).Logger(),
		created:    time.Now().UTC(),
	}, nil
}

func (s *Session) Policy() policy.Policy { return s.policy }

// Classifier is nil unless the session plays the bayesian policy.
func (s *Session) Classifier() *opponent.Classifier { return s.classifier }

// Observe decodes msg and feeds the opponent actions not seen before to the
// classifier. It is what Decide does before choosing.
func (s *Session) Observe(msg string) (*matchstate.Snapshot, error) {
	snap, err := matchstate.Decode(msg)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.observe(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Session) observe(snap *matchstate.Snapshot) error {
	if !s.inHand || snap.HandID != s.handID {
		s.inHand = true
		s.handID = snap.HandID
		s.oppSeen = 0
		s.tally.NewHand()
		if s.classifier != nil {
			s.classifier.NewHand()
		}
	}
	codes := snap.OpponentActions()
	if len(codes) < s.oppSeen {
		s.log.Warn().Int("hand", snap.HandID).Int("seen", s.oppSeen).Int("got", len(codes)).
			Msg("opponent history shrank, ignoring")
		return nil
	}
	fresh := codes[s.oppSeen:]
	if fresh == "" {
		return nil
	}
	actions, err := agent.ParseActions(fresh)
	if err != nil {
		return fmt.Errorf("hand %d: %w", snap.HandID, err)
	}
	if s.classifier != nil {
		if err := s.classifier.Update(actions); err != nil {
			return err
		}
	}
	s.oppSeen = len(codes)
	return nil
}

// Decide answers msg. It fails with ErrNotToAct when the message is not a
// decision point for this seat; the opponent actions are still observed.
func (s *Session) Decide(ctx context.Context, msg string) (Decision, error) {
	snap, err := matchstate.Decode(msg)
	if err != nil {
		return Decision{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.observe(snap); err != nil {
		return Decision{}, err
	}
	if !snap.IsCurrentPlayerToAct() {
		return Decision{}, fmt.Errorf("%w: hand %d rounds %v", ErrNotToAct, snap.HandID, snap.Rounds)
	}

	features := s.extractor.Features(snap)
	valid := agent.ValidActions(snap)
	d := Decision{
		SessionID: s.ID,
		PointID:   s.points.Next(),
		HandID:    snap.HandID,
		Position:  snap.Position,
		Message:   msg,
		Features:  features,
		Valid:     valid,
		At:        time.Now().UTC(),
	}
	if s.classifier != nil {
		b := s.classifier.Belief()
		d.Belief = &b
		d.Style = b.MostLikely().String()
		d.Action, err = s.classifier.Dispatch(d.PointID, features, valid, s.cfg.Training)
		if err != nil {
			return Decision{}, err
		}
	} else {
		d.Action = s.policy.Execute(d.PointID, features, valid, s.cfg.Training)
	}
	s.tally.Record(features, d.Action)
	s.decisions++

	ev := s.log.Debug().Int64("point", d.PointID).Object("state", snap).
		Floats64("features", features).Stringer("action", d.Action)
	if d.Style != "" {
		ev = ev.Str("style", d.Style)
	}
	ev.Msg("decide")

	if s.rec != nil {
		if err := s.rec.RecordDecision(ctx, d); err != nil {
			s.log.Warn().Err(err).Int64("point", d.PointID).Msg("record decision failed")
		}
	}
	return d, nil
}

// Reset starts the session over: uniform belief, fresh point ids, no hand.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classifier != nil {
		s.classifier.Reset()
	}
	s.policy.Initialize(s.cfg.Seed)
	s.points.Reset()
	s.tally = opponent.Tally{}
	s.decisions = 0
	s.inHand = false
	s.handID = 0
	s.oppSeen = 0
	s.log.Info().Msg("session reset")
}

func (s *Session) Metrics() opponent.BehaviorMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally.Metrics()
}

// Tally returns a copy of this seat's own decision counts.
func (s *Session) Tally() opponent.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{
		ID:        s.ID,
		Policy:    s.policy.Name(),
		Created:   s.created,
		Decisions: s.decisions,
		LastPoint: s.points.Last(),
		HandID:    s.handID,
		Metrics:   s.tally.Metrics(),
	}
	if s.classifier != nil {
		b := s.classifier.Belief()
		info.Belief = &b
		info.Style = b.MostLikely().String()
		for _, a := range s.classifier.History() {
			info.History += string(a.Code())
		}
	}
	return info
}
