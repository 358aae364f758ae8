package opponent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sbb-poker/server/agent"
)

func TestTally(t *testing.T) {
	var tl Tally
	noStrength := []float64{20, 10, 0.33, 1}
	weak := []float64{20, 0, 0, 1, 0.2}
	strong := []float64{20, 0, 0, 1, 0.9}

	tl.NewHand()
	tl.Record(noStrength, agent.Fold)

	tl.NewHand()
	tl.Record(noStrength, agent.Call)
	tl.Record(weak, agent.Raise)

	tl.NewHand()
	tl.Record(strong, agent.Raise)
	tl.Record(noStrength, agent.Call)
	tl.Record(noStrength, agent.Raise)

	assert.Equal(t, 3, tl.Hands)
	assert.Equal(t, 2, tl.Played)
	assert.Equal(t, 1, tl.Folds)
	assert.Equal(t, 2, tl.Calls)
	assert.Equal(t, 3, tl.Raises)
	assert.Equal(t, 1, tl.Bluffs)

	m := tl.Metrics()
	assert.InDelta(t, 1.5, m.Aggressiveness, 1e-12)
	assert.InDelta(t, 2.0/3, m.TightLoose, 1e-12)
	assert.InDelta(t, 0.6, m.PassiveAggressive, 1e-12)
	assert.InDelta(t, 1.0/3, m.Bluffing, 1e-12)
}

func TestTallyEmptyAndImplicitHand(t *testing.T) {
	var tl Tally
	assert.Equal(t, BehaviorMetrics{}, tl.Metrics())

	tl.Record(nil, agent.Raise)
	assert.Equal(t, 1, tl.Hands)
	assert.Equal(t, 1.0, tl.AF())
	assert.Equal(t, 1.0, tl.Metrics().TightLoose)
}

func TestClassifierTalliesItsDecisions(t *testing.T) {
	c := newClassifier(t)
	c.NewHand()
	c.Execute(1, splitFeatures, callRaise, false)
	c.Execute(2, splitFeatures, callRaise, false)

	m := c.Metrics()
	assert.Equal(t, 1.0, m.TightLoose)
	assert.Equal(t, 1.0, m.PassiveAggressive)
}
