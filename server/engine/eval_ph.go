package engine

import (
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

// handRank is a library score; larger is stronger.
type handRank struct{ score int16 }

func better(a, b handRank) bool { return a.score > b.score }

var phSuits = [4]poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade}

// toPH converts c for the evaluator, which counts aces as rank 1.
func toPH(c Card) poker.Card {
	s := phSuits[0]
	if i := strings.IndexByte("cdhs", c.Suit); i >= 0 {
		s = phSuits[i]
	}
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = 1
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

func best5of7(cards []Card) handRank {
	n := len(cards)
	pcs := make([]poker.Card, n)
	for i, c := range cards {
		pcs[i] = toPH(c)
	}
	switch n {
	case 7:
		var a7 [7]poker.Card
		copy(a7[:], pcs)
		return handRank{score: poker.Eval7(&a7)}
	case 5:
		var a5 [5]poker.Card
		copy(a5[:], pcs)
		return handRank{score: poker.Eval5(&a5)}
	default:
		// 6 cards: choose best 5.
		return handRank{score: bestOfFiveSubsets(pcs)}
	}
}

func bestOfFiveSubsets(pcs []poker.Card) int16 {
	n := len(pcs)
	best := int16(-32768)
	choose := [5]int{}
	var five [5]poker.Card
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == 5 {
			for i := 0; i < 5; i++ {
				five[i] = pcs[choose[i]]
			}
			score := poker.Eval5(&five)
			if score > best {
				best = score
			}
			return
		}
		for i := start; i <= n-(5-k); i++ {
			choose[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
	return best
}

// Compare orders the best hands in a and b: 1 when a is stronger, -1 when
// b is, 0 on a tie.
func Compare(a, b []Card) int {
	ra, rb := best5of7(a), best5of7(b)
	switch {
	case better(ra, rb):
		return 1
	case better(rb, ra):
		return -1
	}
	return 0
}

// Ranker is the hand-strength oracle used by the optional feature slot.
// It ranks the best five-card hand out of five to seven cards, shifted so
// the worst possible hand ranks 0 and a royal flush ranks MaxRank.
type Ranker struct{}

var (
	rankFloor = mustScore("7c 5d 4h 3s 2c")
	rankCeil  = mustScore("As Ks Qs Js Ts")
)

func mustScore(hand string) int16 {
	cs, err := ParseCards(hand)
	if err != nil {
		panic(err)
	}
	return best5of7(cs).score
}

func (Ranker) MaxRank() int { return int(rankCeil) - int(rankFloor) }

func (Ranker) Rank(cards []string) (int, error) {
	cs, err := ParseCards(cards...)
	if err != nil {
		return 0, err
	}
	if len(cs) < 5 || len(cs) > 7 {
		return 0, fmt.Errorf("rank needs 5 to 7 cards, got %d", len(cs))
	}
	return int(best5of7(cs).score) - int(rankFloor), nil
}

// Describe names the best five-card hand in 5 to 7 cards, e.g. "AA-KK-3"
// or "K straight". It returns "" for any other count.
func Describe(cards []Card) string {
	pcs := make([]poker.Card, len(cards))
	for i, c := range cards {
		pcs[i] = toPH(c)
	}
	if len(pcs) == 6 {
		// the library takes 3, 5 or 7 cards
		var best [5]poker.Card
		top := int16(-32768)
		for skip := range pcs {
			var five [5]poker.Card
			k := 0
			for i, c := range pcs {
				if i != skip {
					five[k] = c
					k++
				}
			}
			if s := poker.Eval5(&five); s > top {
				top, best = s, five
			}
		}
		pcs = best[:]
	}
	if len(pcs) < 5 || len(pcs) > 7 {
		return ""
	}
	d, err := poker.Describe(pcs)
	if err != nil {
		return ""
	}
	return d
}
