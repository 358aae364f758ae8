// Package policy provides the baseline and rule-based opponents that decide
// an action from a feature vector.
package policy

import (
	"fmt"
	"strings"

	"sbb-poker/server/agent"
)

// Policy is the capability shared by every opponent and by learned teams.
type Policy interface {
	Name() string
	// Initialize resets any internal randomness from seed.
	Initialize(seed int64)
	// Execute picks an action for the decision point.
	Execute(pointID int64, features []float64, valid []agent.Action, training bool) agent.Action
}

// Kind enumerates the built-in policies.
type Kind int

const (
	KindRandom Kind = iota
	KindAlwaysFold
	KindAlwaysCall
	KindAlwaysRaise
	KindLooseAggressive
	KindLoosePassive
	KindTightAggressive
	KindTightPassive
	KindBayesian
)

var kindNames = map[Kind]string{
	KindRandom:          "random",
	KindAlwaysFold:      "always_fold",
	KindAlwaysCall:      "always_call",
	KindAlwaysRaise:     "always_raise",
	KindLooseAggressive: "loose_aggressive",
	KindLoosePassive:    "loose_passive",
	KindTightAggressive: "tight_aggressive",
	KindTightPassive:    "tight_passive",
	KindBayesian:        "bayesian",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts the names printed by Kind.String, case-insensitively.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown policy %q", name)
}

// New builds a built-in policy. KindBayesian lives in package opponent and
// is rejected here.
func New(k Kind, seed int64) (Policy, error) {
	var p Policy
	switch k {
	case KindRandom:
		p = NewRandom(seed)
	case KindAlwaysFold:
		p = AlwaysFold{}
	case KindAlwaysCall:
		p = AlwaysCall{}
	case KindAlwaysRaise:
		p = AlwaysRaise{}
	case KindLooseAggressive:
		p = LooseAggressive()
	case KindLoosePassive:
		p = LoosePassive()
	case KindTightAggressive:
		p = TightAggressive()
	case KindTightPassive:
		p = TightPassive()
	default:
		return nil, fmt.Errorf("policy %v is not built by package policy", k)
	}
	p.Initialize(seed)
	return p, nil
}
