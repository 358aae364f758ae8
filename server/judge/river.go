// Package judge grades river decisions by exact equity against every
// holding the opponent could have.
package judge

import (
	"errors"
	"fmt"

	"sbb-poker/server/agent"
	"sbb-poker/server/engine"
)

// FoldEquity is how often a river bet is assumed to take the pot at once.
const FoldEquity = 0.35

// TopTolerance is the EV gap, in big bets, still graded as a top action.
const TopTolerance = 0.15

var ErrCards = errors.New("judge needs 2 hole cards and 5 board cards")

// Verdict is the grade of one river decision. EVs are chip changes from the
// decision point on, so folding is worth 0.
type Verdict struct {
	Equity   float64
	Chosen   agent.Action
	Best     agent.Action
	EVChosen float64
	EVBest   float64
	GapBB    float64
	Top      bool
}

// Equity enumerates every opponent hand left in the deck; ties count half.
func Equity(hole, board []engine.Card) (float64, error) {
	if len(hole) != 2 || len(board) != 5 {
		return 0, ErrCards
	}
	used := make(map[engine.Card]bool, 7)
	for _, c := range hole {
		used[c] = true
	}
	for _, c := range board {
		used[c] = true
	}
	avail := make([]engine.Card, 0, 45)
	for _, su := range []byte("cdhs") {
		for rnk := 2; rnk <= 14; rnk++ {
			if c := (engine.Card{Rank: rnk, Suit: su}); !used[c] {
				avail = append(avail, c)
			}
		}
	}

	hero := append(append([]engine.Card{}, hole...), board...)
	villain := make([]engine.Card, 7)
	copy(villain[2:], board)
	var total, win, tie int
	for i := 0; i < len(avail); i++ {
		for j := i + 1; j < len(avail); j++ {
			villain[0], villain[1] = avail[i], avail[j]
			total++
			switch engine.Compare(hero, villain) {
			case 1:
				win++
			case 0:
				tie++
			}
		}
	}
	return (float64(win) + 0.5*float64(tie)) / float64(total), nil
}

// River grades chosen for the player holding hole on board. pot is the pot
// before the decision and toCall what the player faces. Facing a bet the
// choice is call or fold; otherwise it is check (call) or bet (raise) for
// one bigBet.
func River(hole, board []engine.Card, pot, toCall, bigBet int, chosen agent.Action) (Verdict, error) {
	eq, err := Equity(hole, board)
	if err != nil {
		return Verdict{}, err
	}
	v := Verdict{Equity: eq, Chosen: chosen}
	p := float64(pot)

	type option struct {
		a  agent.Action
		ev float64
	}
	var opts [2]option
	if toCall > 0 {
		b := float64(toCall)
		opts = [2]option{{agent.Call, eq*(p+b) - b}, {agent.Fold, 0}}
		if chosen == agent.Raise {
			// graded as the call it extends
			v.Chosen = agent.Call
		}
	} else {
		b := float64(bigBet)
		opts = [2]option{{agent.Call, eq * p}, {agent.Raise, FoldEquity*p + (1-FoldEquity)*(eq*(p+2*b)-b)}}
		if chosen == agent.Fold {
			v.Chosen = agent.Call
		}
	}

	best := opts[0]
	if opts[1].ev > best.ev {
		best = opts[1]
	}
	v.Best, v.EVBest = best.a, best.ev
	for _, o := range opts {
		if o.a == v.Chosen {
			v.EVChosen = o.ev
		}
	}
	if bigBet > 0 {
		v.GapBB = (v.EVBest - v.EVChosen) / float64(bigBet)
	}
	v.Top = v.GapBB <= TopTolerance
	return v, nil
}

// Record sums the verdicts of one side.
type Record struct {
	Decisions int     `json:"decisions"`
	Top       int     `json:"top"`
	GapBB     float64 `json:"gap_bb"`
}

func (r *Record) Add(v Verdict) {
	r.Decisions++
	r.GapBB += v.GapBB
	if v.Top {
		r.Top++
	}
}

// MeanGapBB is the average EV given up per graded decision.
func (r Record) MeanGapBB() float64 {
	if r.Decisions == 0 {
		return 0
	}
	return r.GapBB / float64(r.Decisions)
}

func (r Record) String() string {
	return fmt.Sprintf("%d/%d top, mean gap %.3f bb", r.Top, r.Decisions, r.MeanGapBB())
}
