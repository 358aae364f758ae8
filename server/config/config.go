// Package config loads settings from flags, SBB_* environment variables and
// an optional .env file, in that order of precedence.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sbb-poker/server/agent"
	"sbb-poker/server/engine"
	"sbb-poker/server/opponent"
	"sbb-poker/server/policy"
	"sbb-poker/server/session"
)

const EnvPrefix = "SBB"

// Config holds every setting of the server and the duel tools.
type Config struct {
	// Stakes
	SmallBet float64 `mapstructure:"small_bet"`
	BigBet   float64 `mapstructure:"big_bet"`

	// Policies
	Policy          string   `mapstructure:"policy"`
	LikelihoodTable string   `mapstructure:"likelihood_table"`
	Balanced        bool     `mapstructure:"balanced"`
	StrictBelief    bool     `mapstructure:"strict_belief"`
	HandStrength    bool     `mapstructure:"hand_strength"`
	Policies        []string `mapstructure:"policies"`

	// Storage
	DatabaseURL string `mapstructure:"database_url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	// HTTP
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Duels
	DuelSeeds      int     `mapstructure:"duel_seeds"`
	DeckSeed       int64   `mapstructure:"deck_seed"`
	EloStart       float64 `mapstructure:"elo_start"`
	EloK           float64 `mapstructure:"elo_k"`
	MatrixParallel int     `mapstructure:"matrix_parallel"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns a config in the units the rule-based thresholds are set
// in: with a 1/2 game the pot feature runs from 1 to 24, across every
// style's thresholds.
func Default() *Config {
	return &Config{
		SmallBet:        1,
		BigBet:          2,
		Policy:          policy.KindBayesian.String(),
		LikelihoodTable: "four_bet",
		Balanced:        true,
		Policies: []string{
			"bayesian", "loose_aggressive", "loose_passive",
			"tight_aggressive", "tight_passive", "random",
		},
		AutoMigrate:     true,
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
		DuelSeeds:       50,
		EloStart:        1500,
		EloK:            24,
		MatrixParallel:  4,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.SmallBet <= 0 || c.BigBet <= 0 {
		return fmt.Errorf("small_bet and big_bet must be positive")
	}
	if c.BigBet < c.SmallBet {
		return fmt.Errorf("big_bet (%v) must not be below small_bet (%v)", c.BigBet, c.SmallBet)
	}
	if c.SmallBet != math.Trunc(c.SmallBet) || c.BigBet != math.Trunc(c.BigBet) {
		return fmt.Errorf("small_bet (%v) and big_bet (%v) must be whole numbers", c.SmallBet, c.BigBet)
	}
	if _, err := policy.ParseKind(c.Policy); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	for _, name := range c.Policies {
		if _, err := policy.ParseKind(name); err != nil {
			return fmt.Errorf("policies: %w", err)
		}
	}
	if _, err := opponent.ParseTable(c.LikelihoodTable); err != nil {
		return fmt.Errorf("likelihood_table: %w", err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DuelSeeds <= 0 {
		return fmt.Errorf("duel_seeds must be positive")
	}
	if c.MatrixParallel <= 0 {
		return fmt.Errorf("matrix_parallel must be positive")
	}
	if c.EloK <= 0 {
		return fmt.Errorf("elo_k must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// RegisterFlags defines the persistent flags and binds each one to its
// viper key.
func RegisterFlags(fs *pflag.FlagSet, v *viper.Viper) {
	d := Default()
	fs.Float64("small-bet", d.SmallBet, "Small bet (first two streets)")
	fs.Float64("big-bet", d.BigBet, "Big bet (last two streets)")
	fs.String("policy", d.Policy, "Default policy for new sessions")
	fs.String("likelihood-table", d.LikelihoodTable, "Classifier table (paper, three_bet, four_bet)")
	fs.Bool("balanced", d.Balanced, "Use the balanced anti-players")
	fs.Bool("strict-belief", d.StrictBelief, "Fail updates that zero the belief instead of resetting it")
	fs.Bool("hand-strength", d.HandStrength, "Append the hand-strength feature")
	fs.StringSlice("policies", d.Policies, "Lineup for duel-matrix")
	fs.String("database-url", d.DatabaseURL, "Postgres DSN; empty disables storage")
	fs.Bool("auto-migrate", d.AutoMigrate, "Apply the schema on startup")
	fs.Int("port", d.Port, "HTTP port")
	fs.Duration("shutdown-timeout", d.ShutdownTimeout, "Graceful shutdown timeout")
	fs.Int("duel-seeds", d.DuelSeeds, "Mirrored hand pairs per duel")
	fs.Int64("deck-seed", d.DeckSeed, "Base deck seed; 0 draws one from crypto/rand")
	fs.Float64("elo-start", d.EloStart, "Starting Elo rating")
	fs.Float64("elo-k", d.EloK, "Elo K factor")
	fs.Int("matrix-parallel", d.MatrixParallel, "Concurrent duels in duel-matrix")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "Log format (console, json)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

// Load resolves the config from v, which sees bound flags and SBB_* env.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := Default()
	cfg.Policies = nil // lists are replaced, not merged
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Stakes() agent.Stakes {
	return agent.Stakes{SmallBet: c.SmallBet, BigBet: c.BigBet}
}

// DealerChips is the number of dealer chips per stake unit. The small blind
// is half a small bet, so the dealer counts in halves.
const DealerChips = 2

// DealerStakes converts the stakes to dealer chips. Validate guarantees
// the conversion is exact.
func (c *Config) DealerStakes() engine.Config {
	return engine.Config{SmallBet: int(c.SmallBet * DealerChips), BigBet: int(c.BigBet * DealerChips)}
}

// ClassifierOptions builds the classifier settings; log receives the
// degenerate-belief warnings.
func (c *Config) ClassifierOptions(log zerolog.Logger) ([]opponent.Option, error) {
	table, err := opponent.ParseTable(c.LikelihoodTable)
	if err != nil {
		return nil, err
	}
	mode := opponent.DegenerateReset
	if c.StrictBelief {
		mode = opponent.DegenerateStrict
	}
	return []opponent.Option{
		opponent.WithTable(table),
		opponent.WithBalanced(c.Balanced),
		opponent.WithDegenerateMode(mode),
		opponent.WithLogger(log),
	}, nil
}

// Session returns the session template for kind.
func (c *Config) Session(kind policy.Kind, seed int64, log zerolog.Logger) (session.Config, error) {
	opts, err := c.ClassifierOptions(log)
	if err != nil {
		return session.Config{}, err
	}
	sc := session.Config{
		Stakes:     c.Stakes(),
		Policy:     kind,
		Seed:       seed,
		Classifier: opts,
	}
	if c.HandStrength {
		sc.Oracle = engine.Ranker{}
	}
	return sc, nil
}
