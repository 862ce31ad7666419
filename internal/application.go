package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/config"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rl/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rl/internal/usecase"
)

type (
	ConfigLoader  func(path string) *config.Config
	LoggerFactory func(conf *config.Config) *slog.Logger
)

// App carries what every command needs once flags are parsed.
type App struct {
	loadConfig ConfigLoader
	newLogger  LoggerFactory

	configPath string
	episodes   int
	seed       uint64

	conf   *config.Config
	logger *slog.Logger
	seeds  uint64
}

// NewRootCommand builds the command tree.
func NewRootCommand(loadConfig ConfigLoader, newLogger LoggerFactory) *cobra.Command {
	app := &App{loadConfig: loadConfig, newLogger: newLogger}

	root := &cobra.Command{
		Use:           "tictactoe-rl",
		Short:         "Reinforcement learning agents for tic-tac-toe and grid worlds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to the config file")
	root.PersistentFlags().IntVarP(&app.episodes, "episodes", "e", 0, "Number of episodes, overrides the config")
	root.PersistentFlags().Uint64Var(&app.seed, "seed", 0, "Random seed, overrides the config")

	root.AddCommand(
		app.TrainCommand(),
		app.TrainProfilesCommand(),
		app.EvaluateCommand(),
		app.PlayCommand(),
		app.GridWorldCommand(),
		app.ActorCriticCommand(),
	)

	return root
}

func (that *App) init(cmd *cobra.Command) {
	that.conf = that.loadConfig(that.configPath)

	flags := cmd.Flags()
	if flags.Changed("episodes") {
		that.conf.Training.Episodes = that.episodes
	}
	if flags.Changed("seed") {
		that.conf.Seed = that.seed
	}

	that.logger = that.newLogger(that.conf)
	that.seeds = that.conf.Seed
}

// source hands out a new seeded source for each component, so runs with one seed repeat.
func (that *App) source() rand.Source {
	that.seeds++
	return rand.NewSource(that.seeds)
}

func (that *App) rewards() entity.Rewards {
	r := that.conf.Rewards
	return entity.Rewards{Play: r.Play, Win: r.Win, Loss: r.Loss, Draw: r.Draw}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func (that *App) signalContext() (context.Context, context.CancelFunc) {
	log := that.logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx, cancel
}

// redis connects when enabled in the config. The returned close func is always safe to call.
func (that *App) redis(ctx context.Context) (*redis.Client, func(), error) {
	if !that.conf.Redis.Enabled {
		return nil, func() {}, nil
	}

	client, err := storage.NewRedis(ctx, that.conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return client, func() {
		if err := client.Close(); err != nil {
			that.logger.Error("could not close redis storage", "error", err)
		}
	}, nil
}

// outcomes opens the outcome store when a SQLite path is configured.
func (that *App) outcomes(ctx context.Context) (repository.OutcomeRepository, func(), error) {
	if that.conf.SQLiteStoragePath == "" {
		return nil, func() {}, nil
	}

	st, err := storage.NewSQLiteStorage(that.conf.SQLiteStoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
	}

	if err = st.Init(ctx); err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
	}

	return repository.NewOutcomeRepository(st.Connection), func() {
		if err := st.Close(); err != nil {
			that.logger.Error("could not close sqlite storage", "error", err)
		}
	}, nil
}

// trainerOptions records outcomes under runID when a store is available.
func trainerOptions(outcomes repository.OutcomeRepository, runID string, opts ...usecase.TrainerOption) []usecase.TrainerOption {
	if outcomes != nil {
		opts = append(opts, usecase.WithOutcomes(outcomes, runID))
	}

	return opts
}

func printStats(cmd *cobra.Command, stats entity.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "episodes: %d, X wins: %d, O wins: %d, draws: %d, distinct games: %d\n",
		stats.Episodes, stats.XWins, stats.OWins, stats.Draws, stats.DistinctGames)
}
