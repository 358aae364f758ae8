package engine

import (
	"errors"
	"fmt"
	"strings"

	"sbb-poker/server/agent"
	"sbb-poker/server/matchstate"
)

var (
	ErrHandEnded = errors.New("hand already ended")
	ErrRaiseCap  = errors.New("raise cap reached")
)

// Config holds the fixed-limit increments. Blinds are half a small bet and
// one small bet.
type Config struct{ SmallBet, BigBet int }

type Player struct {
	Seat      Seat
	Committed int
	Hole      []Card
	Folded    bool
}

// Hand is one heads-up fixed-limit hand with reverse blinds.
type Hand struct {
	ID      int
	Cfg     Config
	Deck    []Card
	Board   []Card
	Street  int // 0-based
	Rounds  []string
	Players [2]*Player

	streetBet [2]int
	finished  bool
}

func NewHand(id int, cfg Config, deck []Card) *Hand {
	h := &Hand{
		ID: id, Cfg: cfg, Deck: deck, Rounds: []string{""},
		Players: [2]*Player{{Seat: Seat0}, {Seat: Seat1}},
	}
	h.postBlinds()
	h.dealHole()
	return h
}

func (h *Hand) postBlinds() { h.bet(Seat1, h.Cfg.SmallBet/2); h.bet(Seat0, h.Cfg.SmallBet) }
func (h *Hand) dealHole() {
	h.Players[0].Hole = []Card{h.pop(), h.pop()}
	h.Players[1].Hole = []Card{h.pop(), h.pop()}
}
func (h *Hand) pop() Card { c := h.Deck[0]; h.Deck = h.Deck[1:]; return c }

func (h *Hand) bet(seat Seat, amt int) {
	h.Players[seat].Committed += amt
	h.streetBet[seat] += amt
}

func (h *Hand) Pot() int { return h.Players[0].Committed + h.Players[1].Committed }

func (h *Hand) increment() int {
	if h.Street < 2 {
		return h.Cfg.SmallBet
	}
	return h.Cfg.BigBet
}

// ToAct is the seat whose turn it is.
func (h *Hand) ToAct() Seat {
	return Seat(matchstate.ActorOf(h.Street, len(h.Rounds[h.Street])))
}

func (h *Hand) ToCall(seat Seat) int {
	d := h.streetBet[seat.Other()] - h.streetBet[seat]
	if d < 0 {
		return 0
	}
	return d
}

func (h *Hand) raises() int { return strings.Count(h.Rounds[h.Street], "r") }

// Legal lists what the seat to act may do. Fold is offered only when facing
// a bet.
func (h *Hand) Legal() []agent.Action {
	if h.finished {
		return nil
	}
	var out []agent.Action
	if h.ToCall(h.ToAct()) > 0 {
		out = append(out, agent.Fold)
	}
	out = append(out, agent.Call)
	if h.raises() < agent.MaxRaises(len(h.Rounds)) {
		out = append(out, agent.Raise)
	}
	return out
}

// Apply plays a for the seat to act. Folding with nothing to call is
// treated as a check.
func (h *Hand) Apply(a agent.Action) error {
	if h.finished {
		return ErrHandEnded
	}
	seat := h.ToAct()
	toCall := h.ToCall(seat)
	if a == agent.Fold && toCall == 0 {
		a = agent.Call
	}
	switch a {
	case agent.Fold:
		h.Players[seat].Folded = true
		h.Rounds[h.Street] += "f"
		h.finished = true
		return nil
	case agent.Call:
		h.bet(seat, toCall)
		h.Rounds[h.Street] += "c"
	case agent.Raise:
		if h.raises() >= agent.MaxRaises(len(h.Rounds)) {
			return fmt.Errorf("%w on %s", ErrRaiseCap, Streets[h.Street])
		}
		h.bet(seat, toCall+h.increment())
		h.Rounds[h.Street] += "r"
	default:
		return fmt.Errorf("%w %v", agent.ErrIllegalAction, a)
	}
	if h.bettingRoundDone() {
		h.NextStreet()
	}
	return nil
}

func (h *Hand) bettingRoundDone() bool {
	r := h.Rounds[h.Street]
	return len(r) >= 2 && r[len(r)-1] == 'c'
}

// NextStreet deals the next board group, or ends the hand after the river.
func (h *Hand) NextStreet() {
	if h.Street == len(Streets)-1 {
		h.finished = true
		return
	}
	switch h.Street {
	case 0:
		h.Board = append(h.Board, h.pop(), h.pop(), h.pop())
	default:
		h.Board = append(h.Board, h.pop())
	}
	h.Street++
	h.Rounds = append(h.Rounds, "")
	h.streetBet = [2]int{}
}

func (h *Hand) Done() bool { return h.finished }

// Showdown reports whether the hand ended without a fold.
func (h *Hand) Showdown() bool {
	return h.finished && !h.Players[0].Folded && !h.Players[1].Folded
}

// Winner returns the winning seat, or NoSeat on a split pot.
func (h *Hand) Winner() Seat {
	if h.Players[0].Folded {
		return Seat1
	}
	if h.Players[1].Folded {
		return Seat0
	}
	s0 := best5of7(append(append([]Card{}, h.Players[0].Hole...), h.Board...))
	s1 := best5of7(append(append([]Card{}, h.Players[1].Hole...), h.Board...))
	switch {
	case better(s0, s1):
		return Seat0
	case better(s1, s0):
		return Seat1
	default:
		return NoSeat
	}
}

// Net returns the chips won (positive) or lost by seat once the hand is done.
func (h *Hand) Net(seat Seat) int {
	if !h.finished {
		return 0
	}
	switch h.Winner() {
	case seat:
		return h.Players[seat.Other()].Committed
	case seat.Other():
		return -h.Players[seat].Committed
	default:
		return (h.Pot()-2*h.Players[seat].Committed) / 2
	}
}

// Snapshot is the state as seen by seat. The other seat's hole cards are
// revealed only at showdown.
func (h *Hand) Snapshot(seat Seat) matchstate.Snapshot {
	s := matchstate.Snapshot{
		Position: int(seat),
		HandID:   h.ID,
		Rounds:   append([]string(nil), h.Rounds...),
	}
	s.HoleCards[seat] = cardsToStr(h.Players[seat].Hole)
	if h.Showdown() {
		s.HoleCards[seat.Other()] = cardsToStr(h.Players[seat.Other()].Hole)
	}
	if len(h.Board) >= 3 {
		s.BoardCards = append(s.BoardCards, cardsToStr(h.Board[:3]))
		for _, c := range h.Board[3:] {
			s.BoardCards = append(s.BoardCards, c.String())
		}
	}
	return s
}

// Message is the wire form of Snapshot(seat).
func (h *Hand) Message(seat Seat) string {
	return matchstate.Encode(h.Snapshot(seat))
}
