package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"sbb-poker/server/engine"
	"sbb-poker/server/judge"
	"sbb-poker/server/opponent"
	"sbb-poker/server/policy"
	"sbb-poker/server/session"
)

// DuelConfig describes one duel between policies A and B.
type DuelConfig struct {
	A, B     policy.Kind
	Seeds    int
	SeedBase uint64
	Dealer   engine.Config
	EloA     float64
	EloB     float64
	EloK     float64
	// Session builds the session template of a side.
	Session func(kind policy.Kind, seed int64) (session.Config, error)
}

// SideResult is how one side fared.
type SideResult struct {
	Label    string                   `json:"label"`
	Policy   string                   `json:"policy"`
	Stats    SideStats                `json:"stats"`
	SBPer100 float64                  `json:"sb_per_100"`
	EloStart float64                  `json:"elo_start"`
	Elo      float64                  `json:"elo"`
	Glicko   Glicko2                  `json:"glicko"`
	River    judge.Record             `json:"river"`
	Metrics  opponent.BehaviorMetrics `json:"metrics"`
	Belief   *opponent.Belief         `json:"belief,omitempty"`
	Style    string                   `json:"style,omitempty"`
}

// DuelResult is a finished duel.
type DuelResult struct {
	A, B      SideResult
	Pairs     int
	PairWinsA int
	PairTies  int
	WinLo     float64
	WinHi     float64
	MarginLo  float64
	MarginHi  float64
	SeedBase  uint64
	Started   time.Time
	Stopped   bool // ended early on cancellation
}

// runDuel plays dc.Seeds mirrored pairs: both hands of a pair use the same
// deck with the sides swapped. Cancelling ctx stops after the current pair.
func runDuel(ctx context.Context, dc DuelConfig, log zerolog.Logger) (*DuelResult, error) {
	sm := newSeedStream(dc.SeedBase)
	log = log.With().Stringer("a", dc.A).Stringer("b", dc.B).Logger()

	sides := [2]*session.Session{}
	for i, kind := range []policy.Kind{dc.A, dc.B} {
		sc, err := dc.Session(kind, int64(sm.next()))
		if err != nil {
			return nil, err
		}
		label := string(rune('A' + i))
		s, err := session.New("duel-"+label, sc, nil, log)
		if err != nil {
			return nil, err
		}
		sides[i] = s
	}
	a, b := sides[0], sides[1]

	res := &DuelResult{SeedBase: dc.SeedBase, Started: time.Now().UTC()}
	res.A = SideResult{Label: "A", Policy: a.Policy().Name(), EloStart: dc.EloA}
	res.B = SideResult{Label: "B", Policy: b.Policy().Name(), EloStart: dc.EloB}

	elo := NewElo(dc.EloA, dc.EloB, dc.EloK)
	gA, gB := NewGlicko2(), NewGlicko2()
	var margins []float64

	log.Info().Uint64("seed_base", dc.SeedBase).Int("pairs", dc.Seeds).Msg("duel start")
	for i := 0; i < dc.Seeds; i++ {
		if ctx.Err() != nil {
			log.Warn().Int("pair", i).Msg("stop requested, ending duel")
			res.Stopped = true
			break
		}
		seed := int64(sm.next())

		// A posts the small blind first, then the big blind on the same deck
		h1 := engine.NewHand(2*i+1, dc.Dealer, engine.NewDeck(seed))
		if err := playHand(ctx, h1, [2]*session.Session{engine.Seat0: b, engine.Seat1: a},
			[2]*judge.Record{engine.Seat0: &res.B.River, engine.Seat1: &res.A.River}); err != nil {
			return nil, err
		}
		h2 := engine.NewHand(2*i+2, dc.Dealer, engine.NewDeck(seed))
		if err := playHand(ctx, h2, [2]*session.Session{engine.Seat0: a, engine.Seat1: b},
			[2]*judge.Record{engine.Seat0: &res.A.River, engine.Seat1: &res.B.River}); err != nil {
			return nil, err
		}
		res.A.Stats.addHand(engine.Seat1, h1)
		res.A.Stats.addHand(engine.Seat0, h2)
		res.B.Stats.addHand(engine.Seat0, h1)
		res.B.Stats.addHand(engine.Seat1, h2)

		pair := Pair{
			ChipsA: h1.Net(engine.Seat1) + h2.Net(engine.Seat0),
			Pots:   h1.Pot() + h2.Pot(),
			BigBet: dc.Dealer.BigBet,
		}
		dA := elo.Update(pair)

		s := pair.Score()
		oldA, oldB := *gA, *gB
		gA.UpdatePair(oldB, s)
		gB.UpdatePair(oldA, 1-s)

		res.Pairs++
		switch {
		case pair.ChipsA > 0:
			res.PairWinsA++
		case pair.ChipsA == 0:
			res.PairTies++
		}
		margins = append(margins, pair.Margin())

		log.Debug().Int("pair", i+1).Int64("seed", seed).Int("chips_a", pair.ChipsA).Int("pots", pair.Pots).
			Float64("elo_a", elo.A).Float64("elo_delta", dA).Msg("pair done")
	}

	res.WinLo, res.WinHi = WilsonCI95(res.PairWinsA, res.PairTies, res.Pairs)
	res.MarginLo, res.MarginHi = BootstrapCI95(rand.New(rand.NewSource(int64(dc.SeedBase))), margins, 1000)

	for _, side := range []struct {
		r *SideResult
		s *session.Session
		g *Glicko2
		e float64
	}{{&res.A, a, gA, elo.A}, {&res.B, b, gB, elo.B}} {
		side.r.Elo = side.e
		side.r.Glicko = *side.g
		side.r.Stats.Actions = side.s.Tally()
		side.r.Metrics = side.s.Metrics()
		side.r.SBPer100 = side.r.Stats.Overall.SBPer100(dc.Dealer.SmallBet)
		if c := side.s.Classifier(); c != nil {
			bel := c.Belief()
			side.r.Belief = &bel
			side.r.Style = bel.MostLikely().String()
		}
	}

	log.Info().Int("pairs", res.Pairs).Int("net_a", res.A.Stats.Overall.NetChips).
		Float64("elo_a", res.A.Elo).Float64("elo_b", res.B.Elo).Msg("duel done")
	return res, nil
}

// playHand deals h to completion, then shows both seats the final state so
// they see the last opponent actions of the hand. River decisions are graded
// into river when the seat's record is not nil.
func playHand(ctx context.Context, h *engine.Hand, seats [2]*session.Session, river [2]*judge.Record) error {
	for !h.Done() {
		seat := h.ToAct()
		d, err := seats[seat].Decide(ctx, h.Message(seat))
		if err != nil {
			return fmt.Errorf("hand %d seat %d: %w", h.ID, seat, err)
		}
		if rec := river[seat]; rec != nil && h.Street == len(engine.Streets)-1 {
			v, err := judge.River(h.Players[seat].Hole, h.Board, h.Pot(), h.ToCall(seat), h.Cfg.BigBet, d.Action)
			if err != nil {
				return fmt.Errorf("hand %d seat %d: %w", h.ID, seat, err)
			}
			rec.Add(v)
		}
		if err := h.Apply(d.Action); err != nil {
			return fmt.Errorf("hand %d seat %d: %w", h.ID, seat, err)
		}
	}
	for seat, s := range seats {
		if _, err := s.Observe(h.Message(engine.Seat(seat))); err != nil {
			return fmt.Errorf("hand %d seat %d: %w", h.ID, seat, err)
		}
	}
	return nil
}

func printDuel(w io.Writer, r *DuelResult) {
	fmt.Fprintf(w, "\nRESULTS → seed base %d, %d mirrored pairs", r.SeedBase, r.Pairs)
	if r.Stopped {
		fmt.Fprint(w, " (stopped early)")
	}
	fmt.Fprintln(w)
	for _, s := range []SideResult{r.A, r.B} {
		fmt.Fprintf(w, "  %s %-16s net:%+6d  sb/100:%+8.2f  wins:%d ties:%d  | seat0 %d/%+d  seat1 %d/%+d\n",
			s.Label, s.Policy, s.Stats.Overall.NetChips, s.SBPer100, s.Stats.Overall.Wins, s.Stats.Overall.Ties,
			s.Stats.Seat0.Hands, s.Stats.Seat0.NetChips, s.Stats.Seat1.Hands, s.Stats.Seat1.NetChips)
		t := s.Stats.Actions
		fmt.Fprintf(w, "    actions fold:%d call:%d raise:%d  AF:%.2f  tight/loose:%.2f  bluffing:%.2f\n",
			t.Folds, t.Calls, t.Raises, s.Metrics.Aggressiveness, s.Metrics.TightLoose, s.Metrics.Bluffing)
		fmt.Fprintf(w, "    river %s\n", s.River)
		if s.Belief != nil {
			fmt.Fprintf(w, "    belief tp:%.3f ta:%.3f lp:%.3f la:%.3f → %s\n",
				s.Belief[opponent.TightPassive], s.Belief[opponent.TightAggressive],
				s.Belief[opponent.LoosePassive], s.Belief[opponent.LooseAggressive], s.Style)
		}
	}
	fmt.Fprintf(w, "Elo     → A:%.1f (%+.1f) | B:%.1f (%+.1f)\n",
		r.A.Elo, r.A.Elo-r.A.EloStart, r.B.Elo, r.B.Elo-r.B.EloStart)
	fmt.Fprintf(w, "Glicko2 → A:%.1f RD=%.0f | B:%.1f RD=%.0f\n",
		r.A.Glicko.Rating, r.A.Glicko.RD, r.B.Glicko.Rating, r.B.Glicko.RD)
	fmt.Fprintf(w, "CI (Wilson)    → A pair win-prob 95%% CI=[%.3f, %.3f]\n", r.WinLo, r.WinHi)
	fmt.Fprintf(w, "CI (bootstrap) → A margin per pair (big bets) 95%% CI=[%.3f, %.3f]\n", r.MarginLo, r.MarginHi)
}
