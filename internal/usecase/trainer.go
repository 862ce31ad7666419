package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

// EpisodeResult describes one finished game.
type EpisodeResult struct {
	Winner  entity.Mark
	Profile entity.Profile
}

type MoveHook func(board entity.Board, move entity.Move)

// Trainer plays tic-tac-toe episodes between two agents and feeds every move back to them.
type Trainer struct {
	logger   *slog.Logger
	game     *entity.Game
	rng      *rand.Rand
	outcomes outcomeRepo

	runID       string
	randomStart bool
	logEvery    int
	onMove      MoveHook
}

type TrainerOption func(*Trainer)

// WithRandomStart lets a coin flip choose the opening player of each episode.
func WithRandomStart() TrainerOption {
	return func(t *Trainer) {
		t.randomStart = true
	}
}

func WithLogEvery(n int) TrainerOption {
	return func(t *Trainer) {
		t.logEvery = n
	}
}

// WithOutcomes records every episode of the run under runID.
func WithOutcomes(repo outcomeRepo, runID string) TrainerOption {
	return func(t *Trainer) {
		t.outcomes = repo
		t.runID = runID
	}
}

func WithMoveHook(hook MoveHook) TrainerOption {
	return func(t *Trainer) {
		t.onMove = hook
	}
}

func NewTrainer(logger *slog.Logger, game *entity.Game, src rand.Source, opts ...TrainerOption) *Trainer {
	trainer := &Trainer{
		logger: logger.With("component", "trainer"),
		game:   game,
		rng:    rand.New(src),
	}
	for _, opt := range opts {
		opt(trainer)
	}

	return trainer
}

// Run plays episodes between x and o and returns the tally. It stops early when ctx is done.
func (that *Trainer) Run(ctx context.Context, x, o Agent, episodes int) (entity.Stats, error) {
	log := that.logger.With("method", "Run", "x", x.Name, "o", o.Name)

	var stats entity.Stats
	games := make(map[string]struct{})
	records := make([]entity.EpisodeRecord, 0, that.flushSize())

	for episode := 1; episode <= episodes; episode++ {
		if err := ctx.Err(); err != nil {
			log.Info("training interrupted", "episode", episode-1)
			break
		}

		result, err := that.PlayEpisode(x, o, that.opener())
		if err != nil {
			return stats, fmt.Errorf("episode %d: %w", episode, err)
		}

		tally(&stats, games, result)

		if that.outcomes != nil {
			records = append(records, entity.EpisodeRecord{
				RunID:    that.runID,
				Episode:  episode,
				Winner:   result.Winner,
				Profile:  result.Profile,
				PlayedAt: time.Now(),
			})
			if len(records) >= that.flushSize() {
				if err = that.flush(ctx, records); err != nil {
					return stats, err
				}
				records = records[:0]
			}
		}

		if that.logEvery > 0 && episode%that.logEvery == 0 {
			log.Info("training progress", "episode", episode, "x_wins", stats.XWins, "o_wins", stats.OWins,
				"draws", stats.Draws, "distinct_games", stats.DistinctGames)
		}
	}

	if err := that.flush(ctx, records); err != nil {
		return stats, err
	}

	return stats, nil
}

// PlayEpisode plays one game. Each mover learns from its move right away; when the game ends the
// opponent, if it learns separately, is paid the other side of the final outcome.
func (that *Trainer) PlayEpisode(x, o Agent, first entity.Mark) (EpisodeResult, error) {
	that.game.Reset()

	agents := map[entity.Mark]Agent{entity.PlayerX: x, entity.PlayerO: o}
	lastMoves := make(map[entity.Mark]rl.Transition, 2)
	profile := make(entity.Profile, 0, entity.NumActions)

	player := first
	for !that.game.IsTerminal() {
		agent := agents[player]
		state := that.game.StateFor(player)

		action, err := agent.Selector.SelectAction(state)
		if err != nil {
			return EpisodeResult{}, fmt.Errorf("%s failed to select action: %w", agent.Name, err)
		}

		outcome, err := that.game.Apply(action, player)
		if err != nil {
			return EpisodeResult{}, fmt.Errorf("%s failed to play %d: %w", agent.Name, action, err)
		}

		move := entity.Move{Player: player, Action: action}
		profile = append(profile, move)
		if that.onMove != nil {
			that.onMove(that.game.Board, move)
		}

		done := that.game.IsTerminal()
		transition := rl.Transition{
			State:     state,
			NextState: that.game.StateFor(player.Other()),
			Action:    action,
			Reward:    outcome.Actor,
			Done:      done,
		}
		if err = agent.learn(transition); err != nil {
			return EpisodeResult{}, fmt.Errorf("%s failed to learn: %w", agent.Name, err)
		}
		lastMoves[player] = transition

		if done {
			if err = that.settleOpponent(agents, lastMoves, player, outcome); err != nil {
				return EpisodeResult{}, err
			}
		}

		player = player.Other()
	}

	notifyEpisodeComplete(x, o)

	return EpisodeResult{Winner: that.game.Winner, Profile: profile}, nil
}

func (that *Trainer) settleOpponent(
	agents map[entity.Mark]Agent,
	lastMoves map[entity.Mark]rl.Transition,
	mover entity.Mark,
	outcome entity.Outcome,
) error {
	opponent := agents[mover.Other()]
	if opponent.Learner == nil || opponent.Learner == agents[mover].Learner {
		return nil
	}

	last, ok := lastMoves[mover.Other()]
	if !ok {
		return nil
	}

	last.NextState = that.game.StateFor(mover.Other())
	last.Reward = outcome.Other
	last.Done = true

	if err := opponent.learn(last); err != nil {
		return fmt.Errorf("%s failed to learn final outcome: %w", opponent.Name, err)
	}

	return nil
}

func (that *Trainer) opener() entity.Mark {
	if that.randomStart && that.rng.Intn(2) == 1 {
		return entity.PlayerO
	}

	return entity.PlayerX
}

func (that *Trainer) flushSize() int {
	if that.logEvery > 0 {
		return that.logEvery
	}

	return 1000
}

func (that *Trainer) flush(ctx context.Context, records []entity.EpisodeRecord) error {
	if that.outcomes == nil || len(records) == 0 {
		return nil
	}

	// ctx may already be cancelled by a signal; the tail of the run is still recorded.
	if err := that.outcomes.Save(context.WithoutCancel(ctx), records...); err != nil {
		that.logger.Error("failed to save outcomes", "method", "flush", "error", err)
		return fmt.Errorf("failed to save outcomes: %w", err)
	}

	return nil
}

func tally(stats *entity.Stats, games map[string]struct{}, result EpisodeResult) {
	stats.Episodes++
	switch result.Winner {
	case entity.PlayerX:
		stats.XWins++
	case entity.PlayerO:
		stats.OWins++
	default:
		stats.Draws++
	}

	games[result.Profile.String()] = struct{}{}
	stats.DistinctGames = len(games)
}

// TrainFromProfiles replays recorded games move by move through learner.
func (that *Trainer) TrainFromProfiles(ctx context.Context, learner rl.Learner, profiles []entity.Profile) (int, error) {
	log := that.logger.With("method", "TrainFromProfiles")

	for i, profile := range profiles {
		if err := ctx.Err(); err != nil {
			log.Info("training interrupted", "profiles", i)
			return i, nil
		}

		if err := that.replay(learner, profile); err != nil {
			return i, fmt.Errorf("profile %d (%s): %w", i+1, profile, err)
		}

		if that.logEvery > 0 && (i+1)%that.logEvery == 0 {
			log.Info("training progress", "profiles", i+1)
		}
	}

	if observer, ok := learner.(rl.EpisodeObserver); ok {
		observer.EpisodeComplete()
	}

	return len(profiles), nil
}

func (that *Trainer) replay(learner rl.Learner, profile entity.Profile) error {
	that.game.Reset()

	for _, move := range profile {
		state := that.game.StateFor(move.Player)

		outcome, err := that.game.Apply(move.Action, move.Player)
		if err != nil {
			return fmt.Errorf("failed to play %d: %w", move.Action+1, err)
		}

		err = learner.Update(rl.Transition{
			State:     state,
			NextState: that.game.StateFor(move.Player.Other()),
			Action:    move.Action,
			Reward:    outcome.Actor,
			Done:      that.game.IsTerminal(),
		})
		if err != nil {
			return fmt.Errorf("failed to learn: %w", err)
		}
	}

	if !that.game.IsTerminal() {
		forget(learner)
	}

	return nil
}
