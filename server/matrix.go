package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sbb-poker/server/policy"
	"sbb-poker/server/store"
)

type matchup struct{ A, B policy.Kind }

// matchups lists every unordered pair of the lineup in lineup order.
func matchups(lineup []policy.Kind) []matchup {
	var out []matchup
	for i := 0; i < len(lineup); i++ {
		for j := i + 1; j < len(lineup); j++ {
			out = append(out, matchup{lineup[i], lineup[j]})
		}
	}
	return out
}

// runDuelMatrix plays every pair of the lineup, up to parallel duels at a
// time, all on the same seed base. Each duel starts from template's ratings.
// Results come back in matchup order.
func runDuelMatrix(ctx context.Context, template DuelConfig, lineup []policy.Kind, parallel int, log zerolog.Logger) ([]*DuelResult, error) {
	pairs := matchups(lineup)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("duel-matrix needs at least two policies, got %d", len(lineup))
	}
	results := make([]*DuelResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, m := range pairs {
		i, m := i, m
		g.Go(func() error {
			dc := template
			dc.A, dc.B = m.A, m.B
			r, err := runDuel(gctx, dc, log)
			if err != nil {
				return fmt.Errorf("%v vs %v: %w", m.A, m.B, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printMatrix(w io.Writer, results []*DuelResult) {
	fmt.Fprintln(w, "\nMATRIX → sb/100 of A against B")
	for _, r := range results {
		fmt.Fprintf(w, "  %-16s vs %-16s  %+8.2f  pair-win CI=[%.3f, %.3f]\n",
			r.A.Policy, r.B.Policy, r.A.SBPer100, r.WinLo, r.WinHi)
	}
}

// persistDuel stores a finished duel and the sides' new ratings.
func persistDuel(ctx context.Context, db *store.DB, dc DuelConfig, r *DuelResult) (int64, error) {
	rec := store.DuelRecord{
		SmallBet: dc.Dealer.SmallBet,
		BigBet:   dc.Dealer.BigBet,
		Seeds:    r.Pairs,
		SeedBase: int64(r.SeedBase),
		EloStart: dc.EloA,
		EloK:     dc.EloK,
		Started:  r.Started,
	}
	for _, side := range []struct {
		src *SideResult
		dst *store.Participant
	}{{&r.A, &rec.A}, {&r.B, &rec.B}} {
		id, err := db.UpsertPolicy(ctx, side.src.Policy)
		if err != nil {
			return 0, err
		}
		t := side.src.Stats.Actions
		*side.dst = store.Participant{
			Label:    side.src.Label,
			PolicyID: id,
			Hands:    side.src.Stats.Overall.Hands,
			Wins:     side.src.Stats.Overall.Wins,
			NetChips: side.src.Stats.Overall.NetChips,
			SBPer100: side.src.SBPer100,
			EloStart: side.src.EloStart,
			EloEnd:   side.src.Elo,
			Folds:    t.Folds,
			Calls:    t.Calls,
			Raises:   t.Raises,
			Metrics:  side.src.Metrics,
			Belief:   side.src.Belief,
			River:    side.src.River,
		}
	}
	return db.InsertDuel(ctx, rec)
}
