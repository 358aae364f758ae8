package store

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sbb-poker/server/agent"
	"sbb-poker/server/judge"
	"sbb-poker/server/opponent"
	"sbb-poker/server/session"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Sessions and decisions
------------------------------*/

// CreateSession stores the session row decisions hang off.
func (db *DB) CreateSession(ctx context.Context, id, policy string, settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}
	_, err := db.Exec(ctx, `
		INSERT INTO sessions(id, policy, settings)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO NOTHING
	`, id, policy, settings)
	return err
}

func (db *DB) RecordDecision(ctx context.Context, d session.Decision) error {
	var belief any
	if d.Belief != nil {
		belief = *d.Belief
	}
	var style any
	if d.Style != "" {
		style = d.Style
	}
	_, err := db.Exec(ctx, `
		INSERT INTO decisions(
			session_id, point_id, hand_id, position, message,
			features, valid, action, style, belief, decided_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		d.SessionID, d.PointID, d.HandID, d.Position, d.Message,
		d.Features, actionNames(d.Valid), d.Action.String(), style, belief, d.At,
	)
	return err
}

// RecentDecisions returns up to limit decisions of a session, newest first.
func (db *DB) RecentDecisions(ctx context.Context, sessionID string, limit int) ([]session.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT point_id, hand_id, position, message, features, valid,
		       action, COALESCE(style, ''), belief, decided_at
		  FROM decisions
		 WHERE session_id = $1
		 ORDER BY point_id DESC
		 LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Decision
	for rows.Next() {
		d := session.Decision{SessionID: sessionID}
		var (
			valid  []string
			action string
		)
		if err := rows.Scan(&d.PointID, &d.HandID, &d.Position, &d.Message, &d.Features, &valid,
			&action, &d.Style, &d.Belief, &d.At); err != nil {
			return nil, err
		}
		if d.Valid, err = parseActionNames(valid); err != nil {
			return nil, err
		}
		if err := d.Action.UnmarshalText([]byte(action)); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func actionNames(as []agent.Action) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.String()
	}
	return out
}

func parseActionNames(names []string) ([]agent.Action, error) {
	out := make([]agent.Action, len(names))
	for i, n := range names {
		if err := out[i].UnmarshalText([]byte(n)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

/* -----------------------------
   Policies, ratings and duels
------------------------------*/

// UpsertPolicy returns the id of the named policy, creating it if needed.
func (db *DB) UpsertPolicy(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO policies(name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	return id, err
}

// GetOrInitRating ensures a rating row exists, seeded with start, and reads it.
func (db *DB) GetOrInitRating(ctx context.Context, policyID int64, start float64) (elo float64, duels, hands int, err error) {
	if _, e := db.Exec(ctx, `INSERT INTO policy_ratings(policy_id, elo) VALUES ($1,$2) ON CONFLICT (policy_id) DO NOTHING`, policyID, start); e != nil {
		return 0, 0, 0, e
	}
	err = db.QueryRow(ctx, `
		SELECT elo, duels, hands FROM policy_ratings WHERE policy_id = $1
	`, policyID).Scan(&elo, &duels, &hands)
	return
}

// Participant is one side of a stored duel.
type Participant struct {
	Label    string
	PolicyID int64
	Hands    int
	Wins     int
	NetChips int
	SBPer100 float64
	EloStart float64
	EloEnd   float64
	Folds    int
	Calls    int
	Raises   int
	Metrics  opponent.BehaviorMetrics
	Belief   *opponent.Belief
	River    judge.Record
}

// DuelRecord is a finished duel and both sides' results.
type DuelRecord struct {
	SmallBet int
	BigBet   int
	Seeds    int
	SeedBase int64
	EloStart float64
	EloK     float64
	Started  time.Time
	A, B     Participant
}

// InsertDuel stores the duel, its participants and their new ratings atomically.
func (db *DB) InsertDuel(ctx context.Context, r DuelRecord) (int64, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // safe if already committed

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO duels(small_bet, big_bet, seeds, seed_base, elo_start, elo_k, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, r.SmallBet, r.BigBet, r.Seeds, r.SeedBase, r.EloStart, r.EloK, r.Started).Scan(&id); err != nil {
		return 0, err
	}

	for _, p := range []Participant{r.A, r.B} {
		var belief any
		if p.Belief != nil {
			belief = *p.Belief
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO duel_participants(
				duel_id, label, policy_id, hands, wins, net_chips, sb_per_100,
				elo_before, elo_after, fold_ct, call_ct, raise_ct, metrics, belief,
				river_decisions, river_top, river_gap_bb
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`, id, p.Label, p.PolicyID, p.Hands, p.Wins, p.NetChips, p.SBPer100,
			p.EloStart, p.EloEnd, p.Folds, p.Calls, p.Raises, p.Metrics, belief,
			p.River.Decisions, p.River.Top, p.River.GapBB); err != nil {
			return 0, fmt.Errorf("participant %s: %w", p.Label, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO policy_ratings(policy_id, elo, duels, hands)
			VALUES ($1,$2,1,$3)
			ON CONFLICT (policy_id) DO UPDATE
			   SET elo = EXCLUDED.elo,
			       duels = policy_ratings.duels + 1,
			       hands = policy_ratings.hands + EXCLUDED.hands,
			       updated_at = now()
		`, p.PolicyID, p.EloEnd, p.Hands); err != nil {
			return 0, fmt.Errorf("rating %s: %w", p.Label, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// Standing is one row of the leaderboard.
type Standing struct {
	Name  string  `json:"name"`
	Elo   float64 `json:"elo"`
	Duels int     `json:"duels"`
	Hands int     `json:"hands"`
}

// Leaderboard lists every rated policy, best first.
func (db *DB) Leaderboard(ctx context.Context) ([]Standing, error) {
	rows, err := db.Query(ctx, `
		SELECT p.name, r.elo, r.duels, r.hands
		  FROM policy_ratings r
		  JOIN policies p ON p.id = r.policy_id
		 ORDER BY r.elo DESC, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Name, &s.Elo, &s.Duels, &s.Hands); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ session.Recorder = (*DB)(nil)
