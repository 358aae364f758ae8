package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbb-poker/server/config"
	"sbb-poker/server/engine"
	"sbb-poker/server/judge"
	"sbb-poker/server/policy"
	"sbb-poker/server/session"
)

func testDuel(a, b policy.Kind, seeds int) DuelConfig {
	cfg := config.Default()
	return DuelConfig{
		A: a, B: b,
		Seeds:    seeds,
		SeedBase: 7,
		Dealer:   cfg.DealerStakes(),
		EloA:     cfg.EloStart,
		EloB:     cfg.EloStart,
		EloK:     cfg.EloK,
		Session: func(kind policy.Kind, seed int64) (session.Config, error) {
			return cfg.Session(kind, seed, zerolog.Nop())
		},
	}
}

func TestDuelConservesChips(t *testing.T) {
	res, err := runDuel(context.Background(), testDuel(policy.KindRandom, policy.KindTightPassive, 30), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 30, res.Pairs)
	assert.False(t, res.Stopped)
	for _, s := range []SideResult{res.A, res.B} {
		assert.Equal(t, 60, s.Stats.Overall.Hands)
		assert.Equal(t, 30, s.Stats.Seat0.Hands)
		assert.Equal(t, 30, s.Stats.Seat1.Hands)
		assert.Equal(t, s.Stats.Overall.NetChips, s.Stats.Seat0.NetChips+s.Stats.Seat1.NetChips)
	}
	assert.Zero(t, res.A.Stats.Overall.NetChips+res.B.Stats.Overall.NetChips)
	assert.Equal(t, res.A.Stats.Overall.Ties, res.B.Stats.Overall.Ties)
	assert.InDelta(t, res.A.EloStart+res.B.EloStart, res.A.Elo+res.B.Elo, 1e-6)
	assert.LessOrEqual(t, res.WinLo, res.WinHi)
	assert.LessOrEqual(t, res.MarginLo, res.MarginHi)
	assert.Equal(t, "random", res.A.Policy)
	assert.Equal(t, "tight_passive", res.B.Policy)
	assert.Nil(t, res.A.Belief)
}

func TestDuelIsReproducible(t *testing.T) {
	dc := testDuel(policy.KindRandom, policy.KindBayesian, 20)
	r1, err := runDuel(context.Background(), dc, zerolog.Nop())
	require.NoError(t, err)
	r2, err := runDuel(context.Background(), dc, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, r1.A.Stats, r2.A.Stats)
	assert.Equal(t, r1.B.Stats, r2.B.Stats)
	assert.Equal(t, r1.A.Elo, r2.A.Elo)
	assert.Equal(t, *r1.B.Belief, *r2.B.Belief)
	assert.Equal(t, r1.MarginLo, r2.MarginLo)
}

func TestDuelClassifierSpotsAggression(t *testing.T) {
	res, err := runDuel(context.Background(), testDuel(policy.KindBayesian, policy.KindAlwaysRaise, 20), zerolog.Nop())
	require.NoError(t, err)

	require.NotNil(t, res.A.Belief)
	assert.Equal(t, "la", res.A.Style)
	assert.InDelta(t, 1.0, res.A.Belief.Sum(), 1e-9)
	assert.Zero(t, res.B.Stats.Actions.Folds)
	assert.Equal(t, 40, res.B.Stats.Actions.Hands)
}

func TestDuelStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := runDuel(ctx, testDuel(policy.KindAlwaysCall, policy.KindAlwaysRaise, 10), zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Zero(t, res.Pairs)
	assert.Equal(t, res.A.EloStart, res.A.Elo)
}

func TestPlayHandMirrorsDeck(t *testing.T) {
	cfg := config.Default()
	dealer := cfg.DealerStakes()
	newSeat := func(kind policy.Kind) *session.Session {
		sc, err := cfg.Session(kind, 1, zerolog.Nop())
		require.NoError(t, err)
		s, err := session.New(kind.String(), sc, nil, zerolog.Nop())
		require.NoError(t, err)
		return s
	}
	a, b := newSeat(policy.KindAlwaysCall), newSeat(policy.KindAlwaysCall)

	var ra, rb judge.Record
	h1 := engine.NewHand(1, dealer, engine.NewDeck(3))
	require.NoError(t, playHand(context.Background(), h1, [2]*session.Session{b, a}, [2]*judge.Record{&rb, &ra}))
	h2 := engine.NewHand(2, dealer, engine.NewDeck(3))
	require.NoError(t, playHand(context.Background(), h2, [2]*session.Session{a, b}, [2]*judge.Record{&ra, nil}))

	// two callers see the same board, so the pair nets out
	assert.True(t, h1.Showdown())
	assert.Equal(t, h1.Board, h2.Board)
	assert.Zero(t, h1.Net(engine.Seat1)+h2.Net(engine.Seat0))
	// one river check each, b graded in the first hand only
	assert.Equal(t, 2, ra.Decisions)
	assert.Equal(t, 1, rb.Decisions)
}

func TestPrintDuel(t *testing.T) {
	res, err := runDuel(context.Background(), testDuel(policy.KindBayesian, policy.KindTightPassive, 3), zerolog.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	printDuel(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "3 mirrored pairs")
	assert.Contains(t, out, "bayesian")
	assert.Contains(t, out, "tight_passive")
	assert.Contains(t, out, "belief tp:")
	assert.Contains(t, out, "Glicko2")
	assert.Contains(t, out, "river ")
}
