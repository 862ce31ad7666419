package policy

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/nn"
	"github.com/rocketscienceinc/tictactoe-rl/internal/replay"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var _ rl.Policy = (*ActorCritic)(nil)

type ActorCriticConfig struct {
	MinMemories int
	BatchSize   int
	// TrainEvery is the number of updates between critic fits.
	TrainEvery int
	// UpdateEvery is the number of episodes between actor syncs.
	UpdateEvery       int
	Epochs            int
	LearningRate      float64
	LearningRateDecay float64
	Gamma             float64
}

func DefaultActorCriticConfig() ActorCriticConfig {
	return ActorCriticConfig{
		MinMemories:       100,
		BatchSize:         32,
		TrainEvery:        50,
		UpdateEvery:       5,
		Epochs:            1,
		LearningRate:      1,
		LearningRateDecay: 0.02,
		Gamma:             0.8,
	}
}

// ActorCritic learns Q values with a critic network fitted from replay memory. The actor network
// answers greedy queries and periodically copies the critic.
type ActorCritic struct {
	logger *slog.Logger
	actor  *nn.Network
	critic *nn.Network
	memory *replay.Memory
	config ActorCriticConfig

	training    bool
	invocations int
	episodes    int
	trained     bool
	lastLoss    float64
}

func NewActorCritic(
	logger *slog.Logger,
	actor, critic *nn.Network,
	memory *replay.Memory,
	config ActorCriticConfig,
) (*ActorCritic, error) {
	if err := actor.CloneWeightsFrom(critic); err != nil {
		return nil, fmt.Errorf("actor and critic differ: %w", err)
	}
	if config.TrainEvery <= 0 {
		config.TrainEvery = 1
	}
	if config.UpdateEvery <= 0 {
		config.UpdateEvery = 1
	}
	if config.Epochs <= 0 {
		config.Epochs = 1
	}

	return &ActorCritic{
		logger:   logger.With("component", "actor_critic"),
		actor:    actor,
		critic:   critic,
		memory:   memory,
		config:   config,
		training: true,
		lastLoss: math.NaN(),
	}, nil
}

// SetTraining turns fitting of the critic on or off. Transitions are still remembered.
func (that *ActorCritic) SetTraining(training bool) {
	that.training = training
}

func (that *ActorCritic) Episodes() int {
	return that.episodes
}

// LastLoss is the critic loss after the latest fit, NaN before any.
func (that *ActorCritic) LastLoss() float64 {
	return that.lastLoss
}

func (that *ActorCritic) LearningRate() float64 {
	return that.config.LearningRate / (1 + float64(that.episodes)*that.config.LearningRateDecay)
}

// GreedyAction returns the legal action with the highest actor prediction.
func (that *ActorCritic) GreedyAction(state rl.State) (int, error) {
	legal := state.LegalActions()
	if len(legal) == 0 {
		return 0, fmt.Errorf("%w: %s", apperror.ErrNoLegalActions, state.Key())
	}

	q, err := that.actor.Predict(state.Vector())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperror.ErrUnableToPredict, err)
	}

	action, best := -1, math.Inf(-1)
	for _, a := range legal {
		if a >= 0 && a < len(q) && q[a] > best {
			action, best = a, q[a]
		}
	}

	if !rl.Contains(legal, action) {
		return 0, fmt.Errorf("%w: %d for %s", apperror.ErrIllegalActionPrediction, action, state.Key())
	}

	return action, nil
}

func (that *ActorCritic) Update(transition rl.Transition) error {
	if transition.State == nil {
		return fmt.Errorf("%w: missing state", apperror.ErrInvalidTransition)
	}
	if transition.Action < 0 || transition.Action >= that.critic.OutputSize() {
		return fmt.Errorf("%w: action %d out of range", apperror.ErrInvalidTransition, transition.Action)
	}

	if transition.Done {
		that.episodes++
	}
	that.memory.Append(transition)

	return that.train()
}

func (that *ActorCritic) train() error {
	if !that.training {
		return nil
	}

	that.invocations++
	if that.memory.Len() <= that.config.MinMemories {
		return nil
	}

	if that.invocations%that.config.TrainEvery == 0 {
		if err := that.trainCritic(); err != nil {
			return err
		}
		that.invocations = 0
		that.trained = true
	}

	if that.episodes%that.config.UpdateEvery == 0 && that.trained {
		if err := that.actor.CloneWeightsFrom(that.critic); err != nil {
			return fmt.Errorf("failed to update actor: %w", err)
		}
		that.trained = false
		that.logger.Debug("actor updated from critic", "episodes", that.episodes)
	}

	return nil
}

func (that *ActorCritic) trainCritic() error {
	x, y, err := that.batch()
	if err != nil {
		return err
	}

	loss, err := that.critic.Train(x, y, that.config.Epochs)
	if err != nil {
		return fmt.Errorf("failed to train critic: %w", err)
	}
	that.lastLoss = loss

	that.logger.Debug("critic trained", "loss", loss, "episodes", that.episodes)
	return nil
}

// batch builds training targets from a random sample of memories.
func (that *ActorCritic) batch() (*mat.Dense, *mat.Dense, error) {
	samples := that.memory.Sample(that.config.BatchSize)
	lr := that.LearningRate()

	x := mat.NewDense(len(samples), that.critic.InputSize(), nil)
	y := mat.NewDense(len(samples), that.critic.OutputSize(), nil)

	for i, sample := range samples {
		q, err := that.actor.Predict(sample.State.Vector())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to predict current state: %w", err)
		}

		next, err := that.nextValue(sample)
		if err != nil {
			return nil, nil, err
		}

		q[sample.Action] = q[sample.Action]*(1-lr) + lr*(sample.Reward+next)

		x.SetRow(i, sample.State.Vector())
		y.SetRow(i, q)
	}

	return x, y, nil
}

// nextValue is the discounted best legal actor value of the next state, zero at the end of an episode.
func (that *ActorCritic) nextValue(sample rl.Transition) (float64, error) {
	if sample.Done || sample.NextState == nil {
		return 0, nil
	}

	legal := sample.NextState.LegalActions()
	if len(legal) == 0 {
		return 0, nil
	}

	q, err := that.actor.Predict(sample.NextState.Vector())
	if err != nil {
		return 0, fmt.Errorf("failed to predict next state: %w", err)
	}

	best := math.Inf(-1)
	for _, a := range legal {
		best = math.Max(best, q[a])
	}

	return that.config.Gamma * best, nil
}

// Save writes the critic network.
func (that *ActorCritic) Save(path string) error {
	if err := that.critic.SaveFile(path); err != nil {
		that.logger.Error("failed to save model", "method", "Save", "path", path, "error", err)
		return fmt.Errorf("failed to save model: %w", err)
	}

	return nil
}

// Load restores the critic and copies it into the actor.
func (that *ActorCritic) Load(path string) error {
	log := that.logger.With("method", "Load")

	critic, err := nn.LoadFile(path)
	if err != nil {
		log.Error("failed to load model", "path", path, "error", err)
		return fmt.Errorf("failed to load model: %w", err)
	}

	if err := that.critic.CloneWeightsFrom(critic); err != nil {
		log.Error("loaded model does not fit", "path", path, "error", err)
		return fmt.Errorf("failed to load model: %w", err)
	}

	if err := that.actor.CloneWeightsFrom(that.critic); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}

	return nil
}
