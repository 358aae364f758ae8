package main

import (
	"math"
	"math/rand"
	"sort"

	"sbb-poker/server/engine"
	"sbb-poker/server/opponent"
)

// SeatStats accumulates results of one side over some hands.
type SeatStats struct {
	Hands    int
	Wins     int
	Ties     int
	NetChips int
}

// SBPer100 is the win rate in small bets per hundred hands.
func (s *SeatStats) SBPer100(smallBet int) float64 {
	if s.Hands == 0 || smallBet <= 0 {
		return 0
	}
	return (float64(s.NetChips) / float64(smallBet)) / (float64(s.Hands) / 100.0)
}

// SideStats splits a side's results by the seat it sat in.
type SideStats struct {
	Overall SeatStats
	Seat0   SeatStats
	Seat1   SeatStats
	Actions opponent.Tally
}

func (m *SideStats) seatBucket(seat engine.Seat) *SeatStats {
	if seat == engine.Seat1 {
		return &m.Seat1
	}
	return &m.Seat0
}

// addHand records one finished hand played from seat.
func (m *SideStats) addHand(seat engine.Seat, h *engine.Hand) {
	net := h.Net(seat)
	for _, b := range []*SeatStats{&m.Overall, m.seatBucket(seat)} {
		b.Hands++
		b.NetChips += net
		switch h.Winner() {
		case seat:
			b.Wins++
		case engine.NoSeat:
			b.Ties++
		}
	}
}

// WilsonCI95 for the pair win rate, counting ties as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of vals, resampling B times from rng.
func BootstrapCI95(rng *rand.Rand, vals []float64, B int) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rng.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
