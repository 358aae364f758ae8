package agent

import (
	"strings"

	"sbb-poker/server/matchstate"
)

// Inputs names the feature slots in order. Trained policies index features
// by position: only append new slots, never reorder or remove.
var Inputs = []string{"pot", "bet", "pot odds", "betting position"}

// HandStrengthInput names the optional slot appended when an oracle is set.
const HandStrengthInput = "hand strength"

const (
	InputPot = iota
	InputBet
	InputPotOdds
	InputBettingPosition
	InputHandStrength
)

// Stakes are the fixed wager increments of a limit game.
type Stakes struct {
	SmallBet float64
	BigBet   float64
}

// HandRanker scores a set of cards; larger is stronger. MaxRank bounds Rank.
type HandRanker interface {
	Rank(cards []string) (int, error)
	MaxRank() int
}

// Extractor turns snapshots into feature vectors. Oracle is optional.
type Extractor struct {
	Stakes Stakes
	Oracle HandRanker
}

// Features builds the input vector for the seat in s.Position.
func (x Extractor) Features(s *matchstate.Snapshot) []float64 {
	n := len(Inputs)
	if x.Oracle != nil {
		n++
	}
	in := make([]float64, n)
	in[InputPot] = x.Pot(s)
	in[InputBet] = x.Bet(s)
	if in[InputPot]+in[InputBet] > 0 {
		in[InputPotOdds] = in[InputBet] / (in[InputPot] + in[InputBet])
	}
	in[InputBettingPosition] = BettingPosition(s)
	if x.Oracle != nil {
		in[InputHandStrength] = x.handStrength(s)
	}
	return in
}

// Names mirrors Features, including the optional slot.
func (x Extractor) Names() []string {
	names := append([]string(nil), Inputs...)
	if x.Oracle != nil {
		names = append(names, HandStrengthInput)
	}
	return names
}

// Pot starts at one small bet and adds one increment per raise code.
// Streets 0 and 1 use the small bet, later streets the big bet.
func (x Extractor) Pot(s *matchstate.Snapshot) float64 {
	pot := x.Stakes.SmallBet
	for i, round := range s.Rounds {
		bet := x.Stakes.SmallBet
		if i > 1 {
			bet = x.Stakes.BigBet
		}
		pot += bet * float64(strings.Count(round, "r"))
	}
	return pot
}

// Bet is the outstanding amount to call when the last code on the current
// street is a raise.
func (x Extractor) Bet(s *matchstate.Snapshot) float64 {
	round := s.CurrentRound()
	if round == "" || round[len(round)-1] != matchstate.CodeRaise {
		return 0
	}
	if street := s.Street(); street == 1 || street == 2 {
		return x.Stakes.SmallBet
	}
	return x.Stakes.BigBet
}

// BettingPosition is 1 when acting last. The first street uses reverse
// blinds, so the position is inverted there.
func BettingPosition(s *matchstate.Snapshot) float64 {
	if s.Street() == 1 {
		if s.Position == 0 {
			return 1
		}
		return 0
	}
	return float64(s.Position)
}

// MaxRaises is the raise cap for a street count: 3 while only the first
// street exists, 4 afterwards.
func MaxRaises(streets int) int {
	if streets == 1 {
		return 3
	}
	return 4
}

// ValidActions always offers call and offers raise while the cap allows.
// Fold is not offered.
func ValidActions(s *matchstate.Snapshot) []Action {
	valid := []Action{Call}
	if strings.Count(s.CurrentRound(), "r") < MaxRaises(s.Street()) {
		valid = append(valid, Raise)
	}
	return valid
}

func (x Extractor) handStrength(s *matchstate.Snapshot) float64 {
	cards := strings.Fields(s.CurrentHoleCards())
	for _, group := range s.BoardCards {
		cards = append(cards, strings.Fields(group)...)
	}
	rank, err := x.Oracle.Rank(cards)
	if err != nil || x.Oracle.MaxRank() <= 0 {
		return 0
	}
	return float64(rank) / float64(x.Oracle.MaxRank())
}
