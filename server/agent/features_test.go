package agent

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbb-poker/server/matchstate"
)

var testStakes = Stakes{SmallBet: 10, BigBet: 20}

func decode(t *testing.T, msg string) *matchstate.Snapshot {
	t.Helper()
	s, err := matchstate.Decode(msg)
	require.NoError(t, err)
	return s
}

func TestFeaturesFirstStreetRaise(t *testing.T) {
	s := decode(t, "MATCHSTATE:0:1:r:Ah Kh|Qc Jc/2c 3c 4c")
	x := Extractor{Stakes: testStakes}

	in := x.Features(s)
	require.Len(t, in, 4)
	assert.Equal(t, 20.0, in[InputPot], "small bet start plus one small-bet raise")
	assert.Equal(t, 10.0, in[InputBet])
	assert.InDelta(t, 10.0/30.0, in[InputPotOdds], 1e-12)
	assert.Equal(t, 1.0, in[InputBettingPosition])
	assert.Equal(t, []Action{Call, Raise}, ValidActions(s))
}

func TestFeaturesFacingNoBet(t *testing.T) {
	// the opening raise was called: nothing outstanding on the current street
	s := decode(t, "MATCHSTATE:1:1:rc/:Ah Kh|Qc Jc/2c 3c 4c/")
	x := Extractor{Stakes: testStakes}

	in := x.Features(s)
	assert.Equal(t, 20.0, in[InputPot])
	assert.Equal(t, 0.0, in[InputBet])
	assert.Equal(t, 0.0, in[InputPotOdds])
	assert.Equal(t, 1.0, in[InputBettingPosition], "position passes through after the first street")
}

func TestPotUsesBigBetFromTurn(t *testing.T) {
	x := Extractor{Stakes: testStakes}
	s := &matchstate.Snapshot{Rounds: []string{"rrc", "rc", "rrc", "r"}}
	// 10 + 2*10 + 1*10 + 2*20 + 1*20
	assert.Equal(t, 100.0, x.Pot(s))
	assert.Equal(t, 20.0, x.Bet(s))

	s = &matchstate.Snapshot{Rounds: []string{"rc", "cr"}}
	assert.Equal(t, 10.0, x.Bet(s), "flop raise costs a small bet")

	s = &matchstate.Snapshot{Rounds: []string{"rc", "cc", "rc"}}
	assert.Equal(t, 0.0, x.Bet(s))
}

func TestBettingPosition(t *testing.T) {
	cases := []struct {
		rounds   []string
		position int
		want     float64
	}{
		{[]string{""}, 0, 1},
		{[]string{"c"}, 1, 0},
		{[]string{"cc", ""}, 0, 0},
		{[]string{"cc", "c"}, 1, 1},
	}
	for _, tc := range cases {
		s := &matchstate.Snapshot{Position: tc.position, Rounds: tc.rounds}
		assert.Equal(t, tc.want, BettingPosition(s), "rounds=%v", tc.rounds)
	}
}

func TestValidActionsRaiseCap(t *testing.T) {
	cases := []struct {
		rounds []string
		want   []Action
	}{
		{[]string{""}, []Action{Call, Raise}},
		{[]string{"rr"}, []Action{Call, Raise}},
		{[]string{"rrr"}, []Action{Call}},
		{[]string{"crrr"}, []Action{Call}},
		{[]string{"rc", "rrr"}, []Action{Call, Raise}},
		{[]string{"rc", "rrrr"}, []Action{Call}},
		{[]string{"rrrc", "rrrr", "r"}, []Action{Call, Raise}},
	}
	for _, tc := range cases {
		s := &matchstate.Snapshot{Rounds: tc.rounds}
		got := ValidActions(s)
		assert.Equal(t, tc.want, got, "rounds=%v", tc.rounds)
		assert.Contains(t, got, Call)
		assert.NotContains(t, got, Fold)
	}
}

func TestPotOddsBounded(t *testing.T) {
	x := Extractor{Stakes: testStakes}
	codes := []string{"", "r", "c", "rr", "rc", "crr", "rrr", "crrr"}
	for _, a := range codes {
		for _, b := range codes {
			for streets := 1; streets <= 4; streets++ {
				rounds := make([]string, streets)
				for i := range rounds {
					rounds[i] = a
				}
				rounds[streets-1] = b
				in := x.Features(&matchstate.Snapshot{Rounds: rounds})
				assert.GreaterOrEqual(t, in[InputPotOdds], 0.0)
				assert.LessOrEqual(t, in[InputPotOdds], 1.0)
				assert.GreaterOrEqual(t, in[InputPot], testStakes.SmallBet)
			}
		}
	}
}

type fakeRanker struct {
	seen []string
	err  error
}

func (f *fakeRanker) Rank(cards []string) (int, error) {
	f.seen = cards
	if f.err != nil {
		return 0, f.err
	}
	return 250, nil
}

func (f *fakeRanker) MaxRank() int { return 1000 }

func TestHandStrengthSlotIsAppended(t *testing.T) {
	r := &fakeRanker{}
	x := Extractor{Stakes: testStakes, Oracle: r}
	s := decode(t, "MATCHSTATE:1:1:rc/:Ah Kh|Qc Jc/2c 3c 4c/")

	in := x.Features(s)
	require.Len(t, in, 5)
	assert.Equal(t, 0.25, in[InputHandStrength])
	assert.Equal(t, "Qc Jc 2c 3c 4c", strings.Join(r.seen, " "))
	assert.Equal(t, HandStrengthInput, x.Names()[InputHandStrength])

	r.err = errors.New("too few cards")
	in = x.Features(s)
	assert.Equal(t, 0.0, in[InputHandStrength])
}

func TestParseActions(t *testing.T) {
	got, err := ParseActions("fcr")
	require.NoError(t, err)
	assert.Equal(t, []Action{Fold, Call, Raise}, got)

	_, err = ParseActions("cx")
	require.ErrorIs(t, err, ErrUnknownAction)

	for _, a := range []Action{Fold, Call, Raise} {
		back, err := ParseAction(a.Code())
		require.NoError(t, err)
		assert.Equal(t, a, back)
	}
}

func TestCheckLegal(t *testing.T) {
	require.NoError(t, CheckLegal([]Action{Call, Raise}, Raise))
	require.ErrorIs(t, CheckLegal([]Action{Call}, Raise), ErrIllegalAction)
	require.ErrorIs(t, CheckLegal([]Action{Call, Raise}, Fold), ErrIllegalAction)
}
