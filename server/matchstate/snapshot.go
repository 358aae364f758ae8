package matchstate

import (
	"strings"

	"github.com/rs/zerolog"
)

// Tag is the message prefix written by Encode. Decode does not check it.
const Tag = "MATCHSTATE"

// Action codes as they appear in the rounds field.
const (
	CodeFold  = 'f'
	CodeCall  = 'c'
	CodeRaise = 'r'
)

// Snapshot is the decoded view of one match-state message, from the point of
// view of the seat in Position. It is rebuilt for every message and must not
// be mutated afterwards.
type Snapshot struct {
	Position   int
	HandID     int
	Rounds     []string  // action codes per street, never empty
	HoleCards  [2]string // per seat; empty when the protocol hides them
	BoardCards []string  // one entry per revealed community-card group
	Trailing   string    // final cards chunk, carried but not interpreted
}

// Street is the 1-based number of the street being played.
func (s *Snapshot) Street() int { return len(s.Rounds) }

// CurrentRound returns the action codes of the street being played.
func (s *Snapshot) CurrentRound() string { return s.Rounds[len(s.Rounds)-1] }

func (s *Snapshot) CurrentHoleCards() string { return s.HoleCards[s.Position] }

// OpponentHoleCards is empty unless the protocol revealed them.
func (s *Snapshot) OpponentHoleCards() string { return s.HoleCards[1-s.Position] }

// IsShowdown reports whether the opponent's hole cards were revealed.
func (s *Snapshot) IsShowdown() bool { return s.OpponentHoleCards() != "" }

// IsCurrentPlayerToAct derives the acting seat from code-string parity.
// The first street uses reverse blinds (seat 1 acts on even lengths) while
// later streets give seat 0 the even lengths. Trained policies depend on
// this exact rule, including the asymmetry.
func (s *Snapshot) IsCurrentPlayerToAct() bool {
	var current int
	if len(s.Rounds) == 1 {
		if len(s.Rounds[0])%2 == 0 {
			current = 1
		} else {
			current = 0
		}
	} else {
		if len(s.Rounds[len(s.Rounds)-1])%2 == 0 {
			current = 0
		} else {
			current = 1
		}
	}
	return s.Position == current
}

// ActorOf returns the seat that made the index-th action (0-based) of the
// given street (0-based). Seat 1 opens the first street, seat 0 every later one.
func ActorOf(street, index int) int {
	opener := 0
	if street == 0 {
		opener = 1
	}
	if index%2 == 0 {
		return opener
	}
	return 1 - opener
}

// OpponentActions lists the opponent's action codes in chronological order.
func (s *Snapshot) OpponentActions() string {
	var b strings.Builder
	for street, round := range s.Rounds {
		for i := 0; i < len(round); i++ {
			if ActorOf(street, i) != s.Position {
				b.WriteByte(round[i])
			}
		}
	}
	return b.String()
}

func (s *Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int("position", s.Position).
		Int("hand_id", s.HandID).
		Strs("rounds", s.Rounds).
		Str("hole", s.CurrentHoleCards()).
		Strs("board", s.BoardCards).
		Bool("showdown", s.IsShowdown())
}
