package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbb-poker/server/agent"
	"sbb-poker/server/opponent"
	"sbb-poker/server/session"
)

func TestActionNames(t *testing.T) {
	valid := []agent.Action{agent.Call, agent.Raise}
	names := actionNames(valid)
	assert.Equal(t, []string{"call", "raise"}, names)

	back, err := parseActionNames(names)
	require.NoError(t, err)
	assert.Equal(t, valid, back)

	_, err = parseActionNames([]string{"check"})
	assert.ErrorIs(t, err, agent.ErrUnknownAction)
}

// testDB connects to SBB_TEST_DATABASE_URL and skips without it.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("SBB_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SBB_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestDecisionsRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	id := uuid.NewString()
	require.NoError(t, db.CreateSession(ctx, id, "bayesian", map[string]any{"small_bet": 10}))

	b := opponent.Belief{0.1, 0.2, 0.3, 0.4}
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, db.RecordDecision(ctx, session.Decision{
			SessionID: id,
			PointID:   i,
			HandID:    7,
			Message:   "MATCHSTATE:0:7:r:Ah Kh|",
			Features:  []float64{20, 10, 1.0 / 3, 1},
			Valid:     []agent.Action{agent.Call, agent.Raise},
			Action:    agent.Raise,
			Style:     "la",
			Belief:    &b,
			At:        time.Now().UTC(),
		}))
	}

	got, err := db.RecentDecisions(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].PointID)
	assert.Equal(t, agent.Raise, got[0].Action)
	assert.Equal(t, []agent.Action{agent.Call, agent.Raise}, got[0].Valid)
	require.NotNil(t, got[0].Belief)
	assert.InDelta(t, 0.4, got[0].Belief[opponent.LooseAggressive], 1e-12)
}

func TestInsertDuelUpdatesRatings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	nameA, nameB := "test_a_"+uuid.NewString()[:8], "test_b_"+uuid.NewString()[:8]

	a, err := db.UpsertPolicy(ctx, nameA)
	require.NoError(t, err)
	again, err := db.UpsertPolicy(ctx, nameA)
	require.NoError(t, err)
	assert.Equal(t, a, again)
	b, err := db.UpsertPolicy(ctx, nameB)
	require.NoError(t, err)

	elo, duels, _, err := db.GetOrInitRating(ctx, a, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, elo)
	assert.Equal(t, 0, duels)

	_, err = db.InsertDuel(ctx, DuelRecord{
		SmallBet: 10, BigBet: 20, Seeds: 2, SeedBase: 1, EloStart: 1500, EloK: 24,
		Started: time.Now().UTC(),
		A:       Participant{Label: "A", PolicyID: a, Hands: 4, EloStart: 1500, EloEnd: 1512},
		B:       Participant{Label: "B", PolicyID: b, Hands: 4, EloStart: 1500, EloEnd: 1488},
	})
	require.NoError(t, err)

	elo, duels, hands, err := db.GetOrInitRating(ctx, a, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1512.0, elo)
	assert.Equal(t, 1, duels)
	assert.Equal(t, 4, hands)

	board, err := db.Leaderboard(ctx)
	require.NoError(t, err)
	names := map[string]float64{}
	for _, s := range board {
		names[s.Name] = s.Elo
	}
	assert.Equal(t, 1488.0, names[nameB])
}
