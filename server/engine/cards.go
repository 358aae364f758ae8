package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var ErrBadCard = errors.New("bad card")

func NewDeck(seed int64) []Card {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	var deck []Card
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: "cdhs"[s]})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

func (c Card) String() string {
	ranks := "  23456789TJQKA"
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// ParseCard reads a two-character card such as "Td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w %q", ErrBadCard, s)
	}
	rank := strings.IndexByte("23456789TJQKA", s[0])
	if rank < 0 {
		return Card{}, fmt.Errorf("%w %q: rank", ErrBadCard, s)
	}
	switch s[1] {
	case 'c', 'd', 'h', 's':
	default:
		return Card{}, fmt.Errorf("%w %q: suit", ErrBadCard, s)
	}
	return Card{Rank: rank + 2, Suit: s[1]}, nil
}

// ParseCards accepts space separated cards ("Ah Kh") as well as runs of
// concatenated cards ("AhKh").
func ParseCards(tokens ...string) ([]Card, error) {
	var out []Card
	for _, tok := range tokens {
		for _, field := range strings.Fields(tok) {
			if len(field)%2 != 0 {
				return nil, fmt.Errorf("%w %q", ErrBadCard, field)
			}
			for i := 0; i < len(field); i += 2 {
				c, err := ParseCard(field[i : i+2])
				if err != nil {
					return nil, err
				}
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func cardsToStr(cs []Card) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return strings.Join(out, " ")
}
