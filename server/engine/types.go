package engine

// Seats follow the match-state convention: seat 1 posts the small blind and
// opens the first street, seat 0 posts the big blind and opens later streets.
type Seat int

const (
	Seat0 Seat = 0
	Seat1 Seat = 1
)

func (s Seat) Other() Seat { return 1 - s }

const NoSeat Seat = -1

// Street names, indexed by 0-based street.
var Streets = []string{"preflop", "flop", "turn", "river"}

type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'
