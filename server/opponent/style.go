// Package opponent infers an opponent's play style from the actions it is
// seen to take and answers with the rule-based player built to exploit it.
package opponent

import (
	"fmt"
	"strings"

	"sbb-poker/server/policy"
)

// Style is one of the four archetypes. The declaration order is also the
// tie-break order of MostLikely.
type Style int

const (
	TightPassive Style = iota
	TightAggressive
	LoosePassive
	LooseAggressive
)

const NumStyles = 4

var styleNames = [NumStyles]string{"tp", "ta", "lp", "la"}

// Styles lists every archetype in tie-break order.
var Styles = [NumStyles]Style{TightPassive, TightAggressive, LoosePassive, LooseAggressive}

func (s Style) String() string {
	if s >= 0 && int(s) < NumStyles {
		return styleNames[s]
	}
	return fmt.Sprintf("style(%d)", int(s))
}

func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown style %q", name)
}

// AntiPlayer returns the rule-based player tuned against style s.
func AntiPlayer(s Style, balanced bool) *policy.RuleBased {
	switch s {
	case TightPassive:
		return policy.AntiTightPassive(balanced)
	case TightAggressive:
		return policy.AntiTightAggressive(balanced)
	case LoosePassive:
		return policy.AntiLoosePassive(balanced)
	default:
		return policy.AntiLooseAggressive(balanced)
	}
}
