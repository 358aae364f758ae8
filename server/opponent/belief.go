package opponent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"sbb-poker/server/agent"
)

// Belief is a probability distribution over the styles.
type Belief [NumStyles]float64

func Uniform() Belief {
	var b Belief
	for i := range b {
		b[i] = 1.0 / NumStyles
	}
	return b
}

func (b Belief) Sum() float64 {
	s := 0.0
	for _, p := range b {
		s += p
	}
	return s
}

// MostLikely is the argmax; ties go to the style declared first.
func (b Belief) MostLikely() Style {
	best := Style(0)
	for i := 1; i < NumStyles; i++ {
		if b[i] > b[best] {
			best = Style(i)
		}
	}
	return best
}

func (b Belief) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumStyles)
	for i, p := range b {
		m[styleNames[i]] = p
	}
	return json.Marshal(m)
}

func (b *Belief) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Belief
	for k, v := range m {
		s, err := ParseStyle(k)
		if err != nil {
			return err
		}
		out[s] = v
	}
	*b = out
	return nil
}

func (b Belief) MarshalZerologObject(e *zerolog.Event) {
	for i, p := range b {
		e.Float64(styleNames[i], p)
	}
}

// Likelihoods holds P(action | style), indexed by style then by action.
type Likelihoods [NumStyles][3]float64

var ErrBadTable = errors.New("bad likelihood table")

var (
	// PaperTable comes from published observations of human play.
	PaperTable = Likelihoods{
		TightPassive:    {0.87, 0.07, 0.06},
		TightAggressive: {0.73, 0.02, 0.25},
		LoosePassive:    {0.6, 0.29, 0.11},
		LooseAggressive: {0.36, 0.05, 0.59},
	}
	// ThreeBetTable was measured against the presets with a three-raise cap.
	ThreeBetTable = Likelihoods{
		TightPassive:    {0.38, 0.55, 0.07},
		TightAggressive: {0.4, 0.37, 0.23},
		LoosePassive:    {0.05, 0.75, 0.2},
		LooseAggressive: {0.05, 0.46, 0.49},
	}
	// FourBetTable was measured with the four-raise cap the dealer uses.
	FourBetTable = Likelihoods{
		TightPassive:    {0.355, 0.559, 0.086},
		TightAggressive: {0.373, 0.357, 0.270},
		LoosePassive:    {0.047, 0.728, 0.225},
		LooseAggressive: {0.053, 0.43, 0.517},
	}
)

var tables = map[string]Likelihoods{
	"paper":     PaperTable,
	"three_bet": ThreeBetTable,
	"four_bet":  FourBetTable,
}

// ParseTable maps a configuration name onto a built-in table.
func ParseTable(name string) (Likelihoods, error) {
	t, ok := tables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Likelihoods{}, fmt.Errorf("%w: unknown table %q", ErrBadTable, name)
	}
	return t, nil
}

// Validate rejects negative or non-finite entries.
func (l Likelihoods) Validate() error {
	for s, row := range l {
		for a, p := range row {
			if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("%w: P(%v|%v) = %v", ErrBadTable, agent.Action(a), Style(s), p)
			}
		}
	}
	return nil
}
