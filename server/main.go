package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sbb-poker/server/config"
	"sbb-poker/server/logx"
	"sbb-poker/server/policy"
	"sbb-poker/server/session"
	"sbb-poker/server/store"
)

var (
	v   = viper.New()
	cfg *config.Config
	lg  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sbb",
	Short: "Adaptive limit hold'em opponents",
	Long: `Decision core for heads-up limit hold'em: decodes match-state messages,
extracts features and answers with rule-based or style-classifying policies.

Settings come from flags, SBB_* environment variables and .env.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(v); err != nil {
			return err
		}
		lg, err = logx.New(cfg.LogLevel, cfg.LogFormat)
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx, cfg.AutoMigrate)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		api, err := NewServer(cfg, db, lg)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.Port),
			Handler:      Router(api),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		lg.Info().Int("port", cfg.Port).Bool("storage", db != nil).Msg("listening")

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		lg.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

var duelCmd = &cobra.Command{
	Use:   "duel <policy-a> <policy-b>",
	Short: "Play two policies against each other in mirrored pairs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := policy.ParseKind(args[0])
		if err != nil {
			return err
		}
		b, err := policy.ParseKind(args[1])
		if err != nil {
			return err
		}
		db := openOptionalDB(ctx)
		if db != nil {
			defer db.Close()
		}

		dc := duelTemplate()
		dc.A, dc.B = a, b
		if db != nil {
			dc.EloA, dc.EloB = storedElo(ctx, db, a), storedElo(ctx, db, b)
		}
		res, err := runDuel(ctx, dc, lg)
		if err != nil {
			return err
		}
		printDuel(cmd.OutOrStdout(), res)
		if db != nil {
			if id, err := persistDuel(context.Background(), db, dc, res); err != nil {
				lg.Warn().Err(err).Msg("persist duel failed")
			} else {
				lg.Info().Int64("duel", id).Msg("duel persisted")
			}
		}
		return nil
	},
}

var duelMatrixCmd = &cobra.Command{
	Use:   "duel-matrix",
	Short: "Play every pair of the configured lineup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lineup := make([]policy.Kind, 0, len(cfg.Policies))
		for _, name := range cfg.Policies {
			k, err := policy.ParseKind(name)
			if err != nil {
				return err
			}
			lineup = append(lineup, k)
		}
		db := openOptionalDB(ctx)
		if db != nil {
			defer db.Close()
		}

		dc := duelTemplate()
		results, err := runDuelMatrix(ctx, dc, lineup, cfg.MatrixParallel, lg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range results {
			printDuel(out, r)
		}
		printMatrix(out, results)

		if db != nil {
			for _, r := range results {
				if _, err := persistDuel(context.Background(), db, dc, r); err != nil {
					lg.Warn().Err(err).Str("a", r.A.Policy).Str("b", r.B.Policy).Msg("persist duel failed")
				}
			}
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <message>",
	Short: "Decode a match-state message and print its features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := describeMessage(cfg, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("database_url is required")
		}
		db, err := openDB(cmd.Context(), true)
		if err != nil {
			return err
		}
		db.Close()
		lg.Info().Msg("migrated")
		return nil
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags(), v)
	rootCmd.AddCommand(serveCmd, duelCmd, duelMatrixCmd, decodeCmd, migrateCmd)
}

// duelTemplate is the duel setup shared by duel and duel-matrix.
func duelTemplate() DuelConfig {
	return DuelConfig{
		Seeds:    cfg.DuelSeeds,
		SeedBase: baseSeed(cfg.DeckSeed),
		Dealer:   cfg.DealerStakes(),
		EloA:     cfg.EloStart,
		EloB:     cfg.EloStart,
		EloK:     cfg.EloK,
		Session: func(kind policy.Kind, seed int64) (session.Config, error) {
			return cfg.Session(kind, seed, lg)
		},
	}
}

// openDB connects when database_url is set and returns nil otherwise.
func openDB(ctx context.Context, migrate bool) (*store.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if migrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// openOptionalDB is openDB for the duel tools, which run without storage
// when it is unreachable.
func openOptionalDB(ctx context.Context) *store.DB {
	db, err := openDB(ctx, cfg.AutoMigrate)
	if err != nil {
		lg.Warn().Err(err).Msg("storage disabled for this run")
		return nil
	}
	return db
}

// storedElo seeds a side from its career rating, falling back to elo_start.
func storedElo(ctx context.Context, db *store.DB, k policy.Kind) float64 {
	id, err := db.UpsertPolicy(ctx, k.String())
	if err == nil {
		var elo float64
		if elo, _, _, err = db.GetOrInitRating(ctx, id, cfg.EloStart); err == nil {
			return elo
		}
	}
	lg.Warn().Err(err).Stringer("policy", k).Msg("read rating failed")
	return cfg.EloStart
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
