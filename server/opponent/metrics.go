package opponent

import (
	"github.com/rs/zerolog"

	"sbb-poker/server/agent"
)

// BluffStrength is the hand-strength feature below which a raise counts as
// a bluff.
const BluffStrength = 0.5

// BehaviorMetrics summarizes how a player has been acting.
type BehaviorMetrics struct {
	// Aggressiveness is the aggression factor, raises per call.
	Aggressiveness float64 `json:"aggressiveness"`
	// TightLoose is the share of hands played past the first decision,
	// 0 for a player that always folds at once.
	TightLoose float64 `json:"tight_loose"`
	// PassiveAggressive is the share of raises among calls and raises.
	PassiveAggressive float64 `json:"passive_aggressive"`
	// Bluffing is the share of raises made with a weak hand. It stays 0
	// unless the hand-strength feature is present.
	Bluffing float64 `json:"bluffing"`
}

func (m BehaviorMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("aggressiveness", m.Aggressiveness).
		Float64("tight_loose", m.TightLoose).
		Float64("passive_aggressive", m.PassiveAggressive).
		Float64("bluffing", m.Bluffing)
}

// Tally counts one player's decisions.
type Tally struct {
	Hands  int
	Played int
	Folds  int
	Calls  int
	Raises int
	Bluffs int

	acted bool
}

func (t *Tally) NewHand() {
	t.Hands++
	t.acted = false
}

// Record counts a decision. The first decision of each hand decides
// whether the hand was played.
func (t *Tally) Record(features []float64, a agent.Action) {
	if t.Hands == 0 {
		t.NewHand()
	}
	if !t.acted {
		t.acted = true
		if a != agent.Fold {
			t.Played++
		}
	}
	switch a {
	case agent.Fold:
		t.Folds++
	case agent.Call:
		t.Calls++
	case agent.Raise:
		t.Raises++
		if len(features) > agent.InputHandStrength && features[agent.InputHandStrength] < BluffStrength {
			t.Bluffs++
		}
	}
}

// AF is the aggression factor; with no calls it is the raise count.
func (t *Tally) AF() float64 {
	if t.Calls == 0 {
		return float64(t.Raises)
	}
	return float64(t.Raises) / float64(t.Calls)
}

func (t *Tally) Metrics() BehaviorMetrics {
	var m BehaviorMetrics
	m.Aggressiveness = t.AF()
	if t.Hands > 0 {
		m.TightLoose = float64(t.Played) / float64(t.Hands)
	}
	if n := t.Calls + t.Raises; n > 0 {
		m.PassiveAggressive = float64(t.Raises) / float64(n)
	}
	if t.Raises > 0 {
		m.Bluffing = float64(t.Bluffs) / float64(t.Raises)
	}
	return m
}
