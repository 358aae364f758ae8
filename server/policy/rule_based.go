package policy

import (
	"sbb-poker/server/agent"
)

// RuleBased compares the first feature against two thresholds: below Alfa
// it folds when facing a bet and calls otherwise, between Alfa and Beta it
// calls, from Beta up it raises. Illegal choices fall back to call.
type RuleBased struct {
	ID   string
	Alfa float64
	Beta float64
}

func NewRuleBased(id string, alfa, beta float64) *RuleBased {
	return &RuleBased{ID: id, Alfa: alfa, Beta: beta}
}

func (p *RuleBased) Name() string     { return p.ID }
func (p *RuleBased) Initialize(int64) {}

func (p *RuleBased) Execute(_ int64, features []float64, valid []agent.Action, _ bool) agent.Action {
	strength := features[agent.InputPot]
	var action agent.Action
	if strength >= p.Alfa {
		if strength >= p.Beta {
			action = agent.Raise
		} else {
			action = agent.Call
		}
	} else {
		if features[agent.InputBet] > 0 {
			action = agent.Fold
		} else {
			action = agent.Call
		}
	}
	if !agent.Contains(valid, action) {
		action = agent.Call
	}
	return action
}

// Style presets.
func LooseAggressive() *RuleBased { return NewRuleBased("loose_aggressive", 2.0, 4.0) }
func LoosePassive() *RuleBased    { return NewRuleBased("loose_passive", 2.0, 8.0) }
func TightAggressive() *RuleBased { return NewRuleBased("tight_aggressive", 8.0, 8.5) }
func TightPassive() *RuleBased    { return NewRuleBased("tight_passive", 8.0, 9.5) }

// Anti-players exploit one style each. The balanced thresholds hold up
// against the whole field, the unbalanced ones squeeze more out of the
// targeted style.
func AntiLooseAggressive(balanced bool) *RuleBased {
	if balanced {
		return NewRuleBased("LA_antiplayer", 5.0, 5.0)
	}
	return NewRuleBased("LA_antiplayer", 4.0, 4.0)
}

func AntiLoosePassive(balanced bool) *RuleBased {
	if balanced {
		return NewRuleBased("LP_antiplayer", 6.0, 6.0)
	}
	return NewRuleBased("LP_antiplayer", 4.0, 5.0)
}

func AntiTightAggressive(balanced bool) *RuleBased {
	if balanced {
		return NewRuleBased("TA_antiplayer", 2.0, 2.0)
	}
	return NewRuleBased("TA_antiplayer", 0.0, 0.0)
}

func AntiTightPassive(balanced bool) *RuleBased {
	if balanced {
		return NewRuleBased("TP_antiplayer", 2.0, 2.0)
	}
	return NewRuleBased("TP_antiplayer", 0.0, 0.0)
}
