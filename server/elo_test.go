package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloPairUpdate(t *testing.T) {
	e := NewElo(1500, 1500, 24)

	assert.InDelta(t, 0, e.Update(Pair{ChipsA: 0, Pots: 12, BigBet: 4}), 1e-12, "an even pair between equals moves nothing")

	d := e.Update(Pair{ChipsA: 24, Pots: 40, BigBet: 4})
	assert.Greater(t, d, 0.0)
	assert.InDelta(t, 3000, e.A+e.B, 1e-9)
	assert.InDelta(t, 1500+d, e.A, 1e-12)
	assert.Equal(t, 2, e.Pairs)

	// the favourite gains less from the same win
	fav := NewElo(1700, 1500, 24)
	assert.Less(t, fav.Update(Pair{ChipsA: 24, Pots: 40, BigBet: 4}), d*1.01)
	assert.Greater(t, fav.Expected(), 0.5)
}

func TestPairWeights(t *testing.T) {
	assert.Equal(t, 0.5, Pair{Pots: 2, BigBet: 4}.weight())
	assert.Equal(t, 3.0, Pair{Pots: 400, BigBet: 4}.weight())
	assert.Equal(t, 1.0, Pair{Pots: 8, BigBet: 4}.weight())
	assert.Equal(t, 1.0, Pair{ChipsA: 5}.weight())
	assert.Less(t, Pair{ChipsA: 10000, Pots: 8, BigBet: 4}.weight(), 1.36)

	assert.Equal(t, 1.5, Pair{ChipsA: 6, BigBet: 4}.Margin())
	assert.Zero(t, Pair{ChipsA: 6}.Margin())
	assert.InDelta(t, 0.5+0.5*math.Tanh(1), Pair{ChipsA: 24, BigBet: 4}.Score(), 1e-12)

	// the step shrinks as pairs accumulate
	fresh, seasoned := NewElo(1500, 1500, 24), NewElo(1500, 1500, 24)
	seasoned.Pairs = 100
	p := Pair{ChipsA: 24, Pots: 40, BigBet: 4}
	assert.Less(t, seasoned.Update(p), fresh.Update(p))
}

func TestGlickoUpdatePair(t *testing.T) {
	a, b := NewGlicko2(), NewGlicko2()
	oldA, oldB := *a, *b
	a.UpdatePair(oldB, 1)
	b.UpdatePair(oldA, 0)

	assert.Greater(t, a.Rating, 1500.0)
	assert.Less(t, b.Rating, 1500.0)
	assert.InDelta(t, a.Rating-1500, 1500-b.Rating, 1e-6)
	assert.Less(t, a.RD, 350.0)
	assert.Equal(t, 1, a.Periods)
	assert.Greater(t, a.Volatility, 0.0)

	c := NewGlicko2()
	c.UpdatePair(*NewGlicko2(), 0.5)
	assert.InDelta(t, 1500, c.Rating, 1e-9)
}

func TestScoreFromMargin(t *testing.T) {
	assert.Equal(t, 0.5, ScoreFromMargin(0, 20, 1.0/6))
	assert.Equal(t, 0.5, ScoreFromMargin(100, 0, 1.0/6))
	assert.Greater(t, ScoreFromMargin(60, 20, 1.0/6), 0.5)
	assert.InDelta(t, 1-ScoreFromMargin(60, 20, 1.0/6), ScoreFromMargin(-60, 20, 1.0/6), 1e-12)
}

func TestSeedStream(t *testing.T) {
	a, b := newSeedStream(42), newSeedStream(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.next(), b.next())
	}
	c := newSeedStream(43)
	d := newSeedStream(42)
	assert.NotEqual(t, d.next(), c.next())

	assert.Equal(t, uint64(9), baseSeed(9))
	assert.NotZero(t, baseSeed(0))
}
