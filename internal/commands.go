package application

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/gridworld"
	"github.com/rocketscienceinc/tictactoe-rl/internal/nn"
	"github.com/rocketscienceinc/tictactoe-rl/internal/policy"
	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
	"github.com/rocketscienceinc/tictactoe-rl/internal/replay"
	"github.com/rocketscienceinc/tictactoe-rl/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
	"github.com/rocketscienceinc/tictactoe-rl/internal/usecase"
)

func runID(name string) string {
	return name + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

func (that *App) temporalDifference(singleAgent bool, numActions int) *policy.TemporalDifference {
	learning := that.conf.Learning

	return policy.NewTemporalDifference(that.logger, qvalue.NewStore(numActions), policy.TemporalDifferenceConfig{
		LearningRate:      learning.LearningRate,
		LearningRateDecay: learning.LearningRateDecay,
		Gamma:             learning.Gamma,
		SingleAgent:       singleAgent,
	}, that.source())
}

func (that *App) explorer(name string, td *policy.TemporalDifference) (rl.Explorer, error) {
	exploration := that.conf.Exploration

	switch name {
	case "random":
		return policy.NewRandomExplorer(that.source()), nil
	case "prefer-new":
		return policy.NewPreferNewExplorer(that.source()), nil
	case "softmax":
		return policy.NewSoftmaxExplorer(td, exploration.Temperature, that.source()), nil
	case "informed":
		return policy.NewInformedExplorer(td, exploration.InformedRatio, that.source()), nil
	default:
		return nil, fmt.Errorf("unknown explorer %q", name)
	}
}

func (that *App) epsilonGreedy(p rl.Policy, explorer rl.Explorer, epsilon float64) *policy.EpsilonGreedy {
	exploration := that.conf.Exploration

	return policy.NewEpsilonGreedy(p, explorer, policy.EpsilonGreedyConfig{
		Epsilon: epsilon,
		Decay:   exploration.Decay,
		Minimum: exploration.Minimum,
	}, that.source())
}

// loadQValues fills td from redis when asked, otherwise from the Q value file.
func (that *App) loadQValues(cmd *cobra.Command, td *policy.TemporalDifference, fromRedis bool) error {
	if !fromRedis {
		return td.Load(that.conf.QValuesFile)
	}

	client, closeRedis, err := that.redis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRedis()
	if client == nil {
		return errors.New("redis is not enabled in the config")
	}

	mirror := usecase.NewQValueSync(that.logger, repository.NewQValueRepository(client), that.conf.Redis.Table)
	store, err := mirror.Pull(cmd.Context(), entity.NumActions)
	if err != nil {
		return err
	}
	td.Replace(store)

	return nil
}

// saveQValues writes the table to the Q value file and mirrors it to redis when enabled.
func (that *App) saveQValues(cmd *cobra.Command, td *policy.TemporalDifference) error {
	if err := td.Save(that.conf.QValuesFile); err != nil {
		return err
	}

	client, closeRedis, err := that.redis(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRedis()
	if client == nil {
		return nil
	}

	mirror := usecase.NewQValueSync(that.logger, repository.NewQValueRepository(client), that.conf.Redis.Table)
	return mirror.Push(cmd.Context(), td.Store())
}

func (that *App) TrainCommand() *cobra.Command {
	var (
		explorerName string
		resume       bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn Q values by self play",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := that.signalContext()
			defer cancel()

			td := that.temporalDifference(false, entity.NumActions)
			if resume {
				if err := td.Load(that.conf.QValuesFile); err != nil {
					return err
				}
			}

			explorer, err := that.explorer(explorerName, td)
			if err != nil {
				return err
			}
			self := usecase.Agent{
				Name:     "self",
				Selector: that.epsilonGreedy(td, explorer, that.conf.Exploration.Epsilon),
				Learner:  td,
			}

			outcomes, closeOutcomes, err := that.outcomes(ctx)
			if err != nil {
				return err
			}
			defer closeOutcomes()

			trainer := usecase.NewTrainer(that.logger, entity.NewGame(that.rewards()), that.source(),
				trainerOptions(outcomes, runID("train"),
					usecase.WithRandomStart(), usecase.WithLogEvery(that.conf.Training.LogEvery))...)

			stats, err := trainer.Run(ctx, self, self, that.conf.Training.Episodes)
			if err != nil {
				return err
			}
			printStats(cmd, stats)
			fmt.Fprintf(cmd.OutOrStdout(), "learned states: %d\n", td.Store().Len())

			return that.saveQValues(cmd, td)
		},
	}

	cmd.Flags().StringVar(&explorerName, "explorer", "informed", "Exploration: random, prefer-new, softmax or informed")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the Q value file")

	return cmd
}

func (that *App) TrainProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train-profiles <file>",
		Short: "Learn Q values from recorded games, one profile per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := that.signalContext()
			defer cancel()

			profiles, err := readProfiles(args[0])
			if err != nil {
				return err
			}

			td := that.temporalDifference(false, entity.NumActions)
			trainer := usecase.NewTrainer(that.logger, entity.NewGame(that.rewards()), that.source(),
				usecase.WithLogEvery(that.conf.Training.LogEvery))

			n, err := trainer.TrainFromProfiles(ctx, td, profiles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profiles: %d, learned states: %d\n", n, td.Store().Len())

			return that.saveQValues(cmd, td)
		},
	}
}

func readProfiles(path string) ([]entity.Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles: %w", err)
	}
	defer file.Close()

	var profiles []entity.Profile
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		profile, err := entity.ParseProfile(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		profiles = append(profiles, profile)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	return profiles, nil
}

func (that *App) EvaluateCommand() *cobra.Command {
	var fromRedis bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Play the learned policy as X against a random O",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := that.signalContext()
			defer cancel()

			td := that.temporalDifference(false, entity.NumActions)
			if err := that.loadQValues(cmd, td, fromRedis); err != nil {
				return err
			}

			informed := that.epsilonGreedy(td, policy.NewRandomExplorer(that.source()), 1)
			informed.ExplorationOff()

			outcomes, closeOutcomes, err := that.outcomes(ctx)
			if err != nil {
				return err
			}
			defer closeOutcomes()

			id := runID("evaluate")
			trainer := usecase.NewTrainer(that.logger, entity.NewGame(that.rewards()), that.source(),
				trainerOptions(outcomes, id, usecase.WithLogEvery(that.conf.Training.LogEvery))...)

			stats, err := trainer.Run(ctx,
				usecase.Agent{Name: "informed", Selector: informed},
				usecase.Agent{Name: "random", Selector: policy.NewRandomExplorer(that.source())},
				that.conf.Training.Episodes)
			if err != nil {
				return err
			}
			printStats(cmd, stats)

			if outcomes != nil {
				stored, err := outcomes.Stats(ctx, id)
				if err != nil {
					return err
				}
				that.logger.Info("outcomes stored", "run_id", id, "episodes", stored.Episodes)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&fromRedis, "from-redis", false, "Load the Q values from redis instead of the file")

	return cmd
}

func (that *App) PlayCommand() *cobra.Command {
	var humanFirst, fromRedis bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play against the learned policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			td := that.temporalDifference(false, entity.NumActions)
			if err := that.loadQValues(cmd, td, fromRedis); err != nil {
				return err
			}

			greedy := that.epsilonGreedy(td, policy.NewRandomExplorer(that.source()), 1)
			greedy.ExplorationOff()

			out := cmd.OutOrStdout()
			session := usecase.NewInteractive(that.logger, out, that.rewards(), that.source())

			_, err := session.Play(
				usecase.Agent{Name: "human", Selector: policy.NewHuman(cmd.InOrStdin(), out)},
				usecase.Agent{Name: "machine", Selector: greedy},
				humanFirst)
			if errors.Is(err, apperror.ErrNoInput) {
				fmt.Fprintln(out, "Game abandoned.")
				return nil
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&humanFirst, "human-first", false, "Let the human play X and move first")
	cmd.Flags().BoolVar(&fromRedis, "from-redis", false, "Load the Q values from redis instead of the file")

	return cmd
}

func (that *App) GridWorldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gridworld",
		Short: "Learn to walk a grid world to its goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := that.signalContext()
			defer cancel()

			gridConf := that.conf.GridWorld
			cells, err := gridConf.Cells(gridworld.Step, gridworld.Free, gridworld.Fire, gridworld.Goal, gridworld.Blocked)
			if err != nil {
				return err
			}
			respawn, err := gridworld.ParseRespawn(gridConf.Respawn)
			if err != nil {
				return err
			}

			start := gridworld.Position{Row: gridConf.StartRow, Col: gridConf.StartCol}
			grid, err := gridworld.New(cells, start, respawn, that.source())
			if err != nil {
				return err
			}

			td := that.temporalDifference(true, gridworld.NumActions)
			walker := usecase.Agent{
				Name:     "walker",
				Selector: that.epsilonGreedy(td, policy.NewRandomExplorer(that.source()), that.conf.Exploration.Epsilon),
				Learner:  td,
			}

			trainer := usecase.NewGridTrainer(that.logger, grid, that.conf.Training.MaxSteps, that.conf.Training.LogEvery)
			stats, err := trainer.Run(ctx, walker, that.conf.Training.Episodes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "episodes: %d, reached goal: %d, average steps: %.2f\n",
				stats.Episodes, stats.Reached, stats.AverageSteps())

			route, err := trainer.Route(td, start)
			fmt.Fprintf(out, "greedy route: %v\n%s", route, grid)
			if errors.Is(err, usecase.ErrNoRoute) {
				that.logger.Warn("greedy route does not reach the goal", "error", err)
				return nil
			}

			return err
		},
	}
}

func (that *App) ActorCriticCommand() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "actor-critic",
		Short: "Train a neural actor critic as X against a random O",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := that.signalContext()
			defer cancel()

			ac, err := that.actorCritic()
			if err != nil {
				return err
			}
			if resume {
				if err = ac.Load(that.conf.ModelFile); err != nil {
					return err
				}
			}

			acConf := that.conf.ActorCritic
			selector := that.epsilonGreedy(ac, policy.NewRandomExplorer(that.source()), acConf.Epsilon)
			learner := usecase.Agent{Name: "actor-critic", Selector: selector, Learner: ac}
			random := usecase.Agent{Name: "random", Selector: policy.NewRandomExplorer(that.source())}

			trainer := usecase.NewTrainer(that.logger, entity.NewGame(that.rewards()), that.source(),
				usecase.WithRandomStart(), usecase.WithLogEvery(that.conf.Training.LogEvery))

			stats, err := trainer.Run(ctx, learner, random, that.conf.Training.Episodes)
			if err != nil {
				return err
			}
			printStats(cmd, stats)
			fmt.Fprintf(cmd.OutOrStdout(), "critic loss: %.6f\n", ac.LastLoss())

			if err = ac.Save(that.conf.ModelFile); err != nil {
				return err
			}

			// Greedy play with learning off shows what the actor has picked up.
			ac.SetTraining(false)
			selector.ExplorationOff()
			evaluation := usecase.NewTrainer(that.logger, entity.NewGame(that.rewards()), that.source())
			stats, err = evaluation.Run(ctx, usecase.Agent{Name: "actor", Selector: selector}, random,
				max(that.conf.Training.Episodes/10, 1))
			if err != nil {
				return err
			}
			printStats(cmd, stats)

			return nil
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the model file")

	return cmd
}

func (that *App) actorCritic() (*policy.ActorCritic, error) {
	acConf := that.conf.ActorCritic

	sizes := append([]int{entity.NumActions}, acConf.HiddenLayers...)
	sizes = append(sizes, entity.NumActions)

	actor, err := nn.New(sizes, nn.WithLearningRate(acConf.OptimizerRate), nn.WithSource(that.source()))
	if err != nil {
		return nil, err
	}
	critic, err := nn.New(sizes, nn.WithLearningRate(acConf.OptimizerRate), nn.WithSource(that.source()))
	if err != nil {
		return nil, err
	}

	memory, err := replay.New(acConf.MemorySize, that.source())
	if err != nil {
		return nil, err
	}

	return policy.NewActorCritic(that.logger, actor, critic, memory, policy.ActorCriticConfig{
		MinMemories:       acConf.MinMemories,
		BatchSize:         acConf.BatchSize,
		TrainEvery:        acConf.TrainEvery,
		UpdateEvery:       acConf.UpdateEvery,
		Epochs:            acConf.Epochs,
		LearningRate:      acConf.LearningRate,
		LearningRateDecay: acConf.LearningRateDecay,
		Gamma:             acConf.Gamma,
	})
}
