package policy

import (
	"math/rand"

	"sbb-poker/server/agent"
)

type AlwaysFold struct{}

func (AlwaysFold) Name() string     { return "always_fold" }
func (AlwaysFold) Initialize(int64) {}
func (AlwaysFold) Execute(int64, []float64, []agent.Action, bool) agent.Action {
	return agent.Fold
}

type AlwaysCall struct{}

func (AlwaysCall) Name() string     { return "always_call" }
func (AlwaysCall) Initialize(int64) {}
func (AlwaysCall) Execute(int64, []float64, []agent.Action, bool) agent.Action {
	return agent.Call
}

// AlwaysRaise raises whenever the cap allows and calls otherwise.
type AlwaysRaise struct{}

func (AlwaysRaise) Name() string     { return "always_raise" }
func (AlwaysRaise) Initialize(int64) {}
func (AlwaysRaise) Execute(_ int64, _ []float64, valid []agent.Action, _ bool) agent.Action {
	if agent.Contains(valid, agent.Raise) {
		return agent.Raise
	}
	return agent.Call
}

// Random picks uniformly among the valid actions from its own stream.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	r := &Random{}
	r.Initialize(seed)
	return r
}

func (r *Random) Name() string { return "random" }

func (r *Random) Initialize(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}

func (r *Random) Execute(_ int64, _ []float64, valid []agent.Action, _ bool) agent.Action {
	if len(valid) == 0 {
		return agent.Call
	}
	if r.rng == nil {
		r.Initialize(0)
	}
	return valid[r.rng.Intn(len(valid))]
}
