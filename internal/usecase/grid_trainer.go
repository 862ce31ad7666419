package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/gridworld"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var ErrNoRoute = errors.New("greedy route does not reach the goal")

type GridStats struct {
	Episodes     int
	Reached      int
	TotalSteps   int
	TotalRewards float64
}

func (that GridStats) AverageSteps() float64 {
	if that.Episodes == 0 {
		return 0
	}

	return float64(that.TotalSteps) / float64(that.Episodes)
}

// GridTrainer runs single-agent episodes on a grid world.
type GridTrainer struct {
	logger   *slog.Logger
	grid     *gridworld.Grid
	maxSteps int
	logEvery int
}

func NewGridTrainer(logger *slog.Logger, grid *gridworld.Grid, maxSteps, logEvery int) *GridTrainer {
	return &GridTrainer{
		logger:   logger.With("component", "grid_trainer"),
		grid:     grid,
		maxSteps: maxSteps,
		logEvery: logEvery,
	}
}

func (that *GridTrainer) Run(ctx context.Context, agent Agent, episodes int) (GridStats, error) {
	log := that.logger.With("method", "Run", "agent", agent.Name)

	var stats GridStats
	for episode := 1; episode <= episodes; episode++ {
		if err := ctx.Err(); err != nil {
			log.Info("training interrupted", "episode", episode-1)
			break
		}

		steps, reward, reached, err := that.episode(agent)
		if err != nil {
			return stats, fmt.Errorf("episode %d: %w", episode, err)
		}

		stats.Episodes++
		stats.TotalSteps += steps
		stats.TotalRewards += reward
		if reached {
			stats.Reached++
		}

		if that.logEvery > 0 && episode%that.logEvery == 0 {
			log.Info("training progress", "episode", episode, "reached", stats.Reached,
				"average_steps", stats.AverageSteps())
		}
	}

	return stats, nil
}

func (that *GridTrainer) episode(agent Agent) (int, float64, bool, error) {
	that.grid.Reset()

	var total float64
	steps := 0
	for !that.grid.IsTerminal() && (that.maxSteps <= 0 || steps < that.maxSteps) {
		state := that.grid.State()

		action, err := agent.Selector.SelectAction(state)
		if err != nil {
			return steps, total, false, fmt.Errorf("failed to select action: %w", err)
		}

		reward, err := that.grid.Execute(action)
		if err != nil {
			return steps, total, false, fmt.Errorf("failed to execute %d: %w", action, err)
		}
		steps++
		total += reward

		err = agent.learn(rl.Transition{
			State:     state,
			NextState: that.grid.State(),
			Action:    action,
			Reward:    reward,
			Done:      that.grid.IsTerminal(),
		})
		if err != nil {
			return steps, total, false, fmt.Errorf("failed to learn: %w", err)
		}
	}

	reached := that.grid.IsTerminal()
	if !reached && agent.Learner != nil {
		forget(agent.Learner)
	}
	notifyEpisodeComplete(agent)

	return steps, total, reached, nil
}

// Route follows the greedy policy from start and returns the visited positions, start included.
func (that *GridTrainer) Route(greedy rl.Greedy, start gridworld.Position) ([]gridworld.Position, error) {
	if err := that.grid.ResetTo(start); err != nil {
		return nil, err
	}

	route := []gridworld.Position{start}
	for !that.grid.IsTerminal() {
		if that.maxSteps > 0 && len(route) > that.maxSteps {
			return route, ErrNoRoute
		}

		action, err := greedy.GreedyAction(that.grid.State())
		if errors.Is(err, apperror.ErrUnableToPredict) {
			return route, fmt.Errorf("%w: %w", ErrNoRoute, err)
		}
		if err != nil {
			return route, err
		}

		if _, err = that.grid.Execute(action); err != nil {
			return route, err
		}
		route = append(route, that.grid.Position())
	}

	return route, nil
}
