package main

import "math"

const (
	g2Scale = 173.7178 // 1500-scale points per mu unit
	pi2     = math.Pi * math.Pi
	g2Tau   = 0.5 // volatility constraint
)

// Glicko2 is a second rating of a duel side, on the 1500 scale, reported
// next to Elo. One mirrored pair is one rating period against one opponent.
type Glicko2 struct {
	Rating     float64
	RD         float64
	Volatility float64
	Periods    int
}

func NewGlicko2() *Glicko2 {
	return &Glicko2{Rating: 1500, RD: 350, Volatility: 0.06}
}

func (p *Glicko2) muPhi() (mu, phi float64) {
	return (p.Rating - 1500.0) / g2Scale, p.RD / g2Scale
}

func (p *Glicko2) setMuPhi(mu, phi float64) {
	p.Rating, p.RD = mu*g2Scale+1500.0, phi*g2Scale
}

func g(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*phi*phi/pi2) }

// UpdatePair rates one period in which p scored s in [0,1] against opp.
// opp must hold its rating from before the period.
func (p *Glicko2) UpdatePair(opp Glicko2, s float64) {
	mu, phi := p.muPhi()
	muO, phiO := opp.muPhi()
	gO := g(phiO)
	e := 1.0 / (1.0 + math.Exp(-gO*(mu-muO)))

	v := 1.0 / (gO * gO * e * (1.0 - e))
	delta := v * gO * (s - e)

	sigma := p.Volatility
	if math.Abs(delta) >= 1e-12 {
		sigma = newVolatility(delta, phi, v, sigma)
	}

	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	p.setMuPhi(mu+phiNew*phiNew*gO*(s-e), phiNew)
	p.Volatility = sigma
	p.Periods++
}

// newVolatility solves the volatility equation with the Illinois variant of
// regula falsi.
func newVolatility(delta, phi, v, sigma float64) float64 {
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*d*d) - (x-a)/(g2Tau*g2Tau)
	}

	lo := a
	var hi float64
	if delta*delta > phi*phi+v {
		hi = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k) < 0 && k < 1e6 {
			k *= 2
		}
		hi = a - k
	}
	fLo, fHi := f(lo), f(hi)
	for i := 0; i < 60 && math.Abs(hi-lo) > 1e-6; i++ {
		c := lo + (lo-hi)*fLo/(fHi-fLo)
		fC := f(c)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fHi < 0 {
			lo, fLo = hi, fHi
		} else {
			fLo /= 2
		}
		hi, fHi = c, fC
	}
	return math.Exp(lo / 2)
}

// ScoreFromMargin maps a pair margin in big bets to a score in [0,1].
// k controls steepness.
func ScoreFromMargin(chipsA, bigBet int, k float64) float64 {
	if bigBet <= 0 {
		return 0.5
	}
	m := float64(chipsA) / float64(bigBet)
	return 0.5 + 0.5*math.Tanh(k*m)
}
