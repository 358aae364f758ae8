package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbb-poker/server/policy"
)

func TestMatchups(t *testing.T) {
	lineup := []policy.Kind{policy.KindRandom, policy.KindTightPassive, policy.KindBayesian, policy.KindAlwaysCall}
	ms := matchups(lineup)
	require.Len(t, ms, 6)
	assert.Equal(t, matchup{policy.KindRandom, policy.KindTightPassive}, ms[0])
	assert.Equal(t, matchup{policy.KindBayesian, policy.KindAlwaysCall}, ms[5])

	assert.Empty(t, matchups(lineup[:1]))
}

func TestDuelMatrix(t *testing.T) {
	lineup := []policy.Kind{policy.KindLooseAggressive, policy.KindTightPassive, policy.KindBayesian}
	template := testDuel(0, 0, 5)

	results, err := runDuelMatrix(context.Background(), template, lineup, 2, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := [][2]string{
		{"loose_aggressive", "tight_passive"},
		{"loose_aggressive", "bayesian"},
		{"tight_passive", "bayesian"},
	}
	for i, r := range results {
		assert.Equal(t, want[i][0], r.A.Policy)
		assert.Equal(t, want[i][1], r.B.Policy)
		assert.Equal(t, 5, r.Pairs)
		assert.Equal(t, template.EloA, r.A.EloStart)
		assert.Equal(t, template.SeedBase, r.SeedBase)
	}

	// matrix duels are the same duels as running them alone
	solo := template
	solo.A, solo.B = policy.KindTightPassive, policy.KindBayesian
	r, err := runDuel(context.Background(), solo, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, r.A.Stats, results[2].A.Stats)

	var buf bytes.Buffer
	printMatrix(&buf, results)
	assert.Contains(t, buf.String(), "tight_passive")
}

func TestDuelMatrixNeedsTwoPolicies(t *testing.T) {
	_, err := runDuelMatrix(context.Background(), testDuel(0, 0, 1), []policy.Kind{policy.KindRandom}, 1, zerolog.Nop())
	assert.Error(t, err)
}
