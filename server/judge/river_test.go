package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbb-poker/server/agent"
	"sbb-poker/server/engine"
)

func cards(t *testing.T, s string) []engine.Card {
	t.Helper()
	cs, err := engine.ParseCards(s)
	require.NoError(t, err)
	return cs
}

func TestEquity(t *testing.T) {
	// royal flush on board: everyone splits
	eq, err := Equity(cards(t, "2c 3d"), cards(t, "As Ks Qs Js Ts"))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, eq, 1e-12)

	// the nuts
	eq, err = Equity(cards(t, "Ah Ad"), cards(t, "Ac As 7d 4h 2c"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, eq, 1e-12)

	eq, err = Equity(cards(t, "3h 2d"), cards(t, "Ac Ks 9d 7h 5c"))
	require.NoError(t, err)
	assert.Less(t, eq, 0.1)

	_, err = Equity(cards(t, "Ah"), cards(t, "Ac As 7d 4h 2c"))
	assert.ErrorIs(t, err, ErrCards)
}

func TestRiverFacingBet(t *testing.T) {
	board := cards(t, "Ac As 7d 4h 2c")

	v, err := River(cards(t, "Ah Ad"), board, 60, 20, 20, agent.Fold)
	require.NoError(t, err)
	assert.Equal(t, agent.Call, v.Best)
	assert.InDelta(t, 60.0, v.EVBest, 1e-9)
	assert.InDelta(t, 3.0, v.GapBB, 1e-9)
	assert.False(t, v.Top)

	v, err = River(cards(t, "Ah Ad"), board, 60, 20, 20, agent.Raise)
	require.NoError(t, err)
	assert.Equal(t, agent.Call, v.Chosen)
	assert.True(t, v.Top)
	assert.Zero(t, v.GapBB)

	v, err = River(cards(t, "3h 5d"), cards(t, "Ac Ks 9d 8h Jc"), 20, 20, 20, agent.Call)
	require.NoError(t, err)
	assert.Equal(t, agent.Fold, v.Best)
	assert.Greater(t, v.GapBB, 0.0)
}

func TestRiverUnopened(t *testing.T) {
	v, err := River(cards(t, "Ah Ad"), cards(t, "Ac As 7d 4h 2c"), 40, 0, 20, agent.Fold)
	require.NoError(t, err)
	assert.Equal(t, agent.Call, v.Chosen, "a fold with nothing to call is a check")
	assert.Equal(t, agent.Raise, v.Best)
	assert.InDelta(t, 40.0, v.EVChosen, 1e-9)
	assert.InDelta(t, 0.35*40+0.65*60, v.EVBest, 1e-9)
}

func TestRecord(t *testing.T) {
	var r Record
	assert.Zero(t, r.MeanGapBB())
	r.Add(Verdict{GapBB: 0, Top: true})
	r.Add(Verdict{GapBB: 1})
	assert.Equal(t, 2, r.Decisions)
	assert.Equal(t, 1, r.Top)
	assert.InDelta(t, 0.5, r.MeanGapBB(), 1e-12)
	assert.Equal(t, "1/2 top, mean gap 0.500 bb", r.String())
}
