package opponent

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"sbb-poker/server/agent"
	"sbb-poker/server/policy"
)

var ErrDegenerateBelief = errors.New("belief collapsed to zero")

// DegenerateMode picks what Update does when every style has zero
// probability after an observation.
type DegenerateMode int

const (
	// DegenerateReset restarts from the uniform prior and carries on.
	DegenerateReset DegenerateMode = iota
	// DegenerateStrict fails the update and keeps the previous belief.
	DegenerateStrict
)

type Option func(*Classifier)

func WithTable(t Likelihoods) Option            { return func(c *Classifier) { c.table = t } }
func WithBalanced(b bool) Option                { return func(c *Classifier) { c.balanced = b } }
func WithDegenerateMode(m DegenerateMode) Option { return func(c *Classifier) { c.mode = m } }
func WithLogger(l zerolog.Logger) Option        { return func(c *Classifier) { c.log = l } }

// Classifier keeps a running belief over the opponent's style and plays
// the anti-player of the most likely one. It is not safe for concurrent use.
type Classifier struct {
	table    Likelihoods
	balanced bool
	mode     DegenerateMode
	log      zerolog.Logger

	anti    [NumStyles]*policy.RuleBased
	belief  Belief
	history []agent.Action
	tally   Tally
}

// NewClassifier defaults to the four-bet table and balanced anti-players.
func NewClassifier(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		table:    FourBetTable,
		balanced: true,
		mode:     DegenerateReset,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.table.Validate(); err != nil {
		return nil, err
	}
	for _, s := range Styles {
		c.anti[s] = AntiPlayer(s, c.balanced)
	}
	c.belief = Uniform()
	return c, nil
}

func (c *Classifier) Name() string { return policy.KindBayesian.String() }

// Initialize leaves the belief alone; the anti-players are deterministic.
func (c *Classifier) Initialize(seed int64) {
	for _, p := range c.anti {
		p.Initialize(seed)
	}
}

// Reset forgets everything observed so far.
func (c *Classifier) Reset() {
	c.belief = Uniform()
	c.history = nil
	c.tally = Tally{}
}

func (c *Classifier) Belief() Belief { return c.belief }

func (c *Classifier) History() []agent.Action {
	return append([]agent.Action(nil), c.history...)
}

func (c *Classifier) Metrics() BehaviorMetrics { return c.tally.Metrics() }

// NewHand marks a hand boundary for the behavior tally.
func (c *Classifier) NewHand() { c.tally.NewHand() }

// AntiPlayerFor exposes the player dispatched to when s is most likely.
func (c *Classifier) AntiPlayerFor(s Style) *policy.RuleBased { return c.anti[s] }

// Update folds the observed actions into the belief one at a time, in
// order. In strict mode a collapse aborts the whole call and the belief is
// left as it was.
func (c *Classifier) Update(actions []agent.Action) error {
	next := c.belief
	for i, a := range actions {
		if a < agent.Fold || a > agent.Raise {
			return fmt.Errorf("%w %d", agent.ErrUnknownAction, int(a))
		}
		post, ok := c.posterior(next, a)
		if !ok {
			if c.mode == DegenerateStrict {
				return fmt.Errorf("%w after %v (observation %d of %d)", ErrDegenerateBelief, a, i+1, len(actions))
			}
			c.log.Warn().Stringer("action", a).Object("belief", next).Msg("belief collapsed, restarting from uniform")
			if post, ok = c.posterior(Uniform(), a); !ok {
				post = Uniform()
			}
		}
		next = post
	}
	c.belief = next
	c.history = append(c.history, actions...)
	if len(actions) > 0 {
		c.log.Debug().Int("observed", len(actions)).Object("belief", c.belief).Msg("belief updated")
	}
	return nil
}

func (c *Classifier) posterior(prior Belief, a agent.Action) (Belief, bool) {
	var post Belief
	total := 0.0
	for s := range post {
		post[s] = c.table[s][a] * prior[s]
		total += post[s]
	}
	if total <= 0 {
		return prior, false
	}
	for s := range post {
		post[s] /= total
	}
	return post, true
}

// Dispatch asks the anti-player of the most likely style for an action and
// fails with agent.ErrIllegalAction if it is not in valid.
func (c *Classifier) Dispatch(pointID int64, features []float64, valid []agent.Action, training bool) (agent.Action, error) {
	style := c.belief.MostLikely()
	a := c.anti[style].Execute(pointID, features, valid, training)
	if err := agent.CheckLegal(valid, a); err != nil {
		return a, fmt.Errorf("%s anti-player: %w", style, err)
	}
	c.tally.Record(features, a)
	c.log.Debug().Int64("point", pointID).Stringer("style", style).Stringer("action", a).Msg("dispatch")
	return a, nil
}

// Execute is Dispatch for the Policy interface. An illegal action here is a
// broken anti-player, so it panics.
func (c *Classifier) Execute(pointID int64, features []float64, valid []agent.Action, training bool) agent.Action {
	a, err := c.Dispatch(pointID, features, valid, training)
	if err != nil {
		panic(err)
	}
	return a
}
