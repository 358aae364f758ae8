package main

import "math"

// Pair is the outcome of one mirrored pair in dealer chips.
type Pair struct {
	ChipsA int // A's net over both hands
	Pots   int // both final pots added
	BigBet int
}

// Margin is A's net in big bets.
func (p Pair) Margin() float64 {
	if p.BigBet <= 0 {
		return 0
	}
	return float64(p.ChipsA) / float64(p.BigBet)
}

// Score maps the margin onto [0,1]; six big bets is a decisive pair.
func (p Pair) Score() float64 { return ScoreFromMargin(p.ChipsA, p.BigBet, 1.0/6) }

// weight scales K by how much was at stake: the pots against a two big bet
// baseline, clamped to [0.5, 3], times up to 1.35 for a wide margin.
func (p Pair) weight() float64 {
	if p.BigBet <= 0 {
		return 1
	}
	w := 1.0
	if p.Pots > 0 {
		w = math.Min(math.Max(float64(p.Pots)/float64(2*p.BigBet), 0.5), 3)
	}
	return w * (1 + 0.35*math.Tanh(math.Abs(p.Margin())/8))
}

// Elo rates duel sides A and B with one zero-sum update per pair.
type Elo struct {
	A, B  float64
	K     float64
	Pairs int
}

func NewElo(a, b, k float64) Elo { return Elo{A: a, B: b, K: k} }

// Expected is A's expected score against B.
func (e Elo) Expected() float64 { return 1 / (1 + math.Pow(10, (e.B-e.A)/400)) }

// Update applies p and returns A's change; B moves the other way. The step
// anneals slowly with the number of pairs seen.
func (e *Elo) Update(p Pair) float64 {
	k := e.K * p.weight() / (1 + 0.01*float64(e.Pairs))
	d := k * (p.Score() - e.Expected())
	e.A += d
	e.B -= d
	e.Pairs++
	return d
}
