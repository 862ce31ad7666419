// Package policy holds the action selection and learning strategies used by agents.
package policy

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var _ rl.Policy = (*TemporalDifference)(nil)

type TemporalDifferenceConfig struct {
	LearningRate      float64
	LearningRateDecay float64
	Gamma             float64
	// SingleAgent backs up the best value of the next state instead of subtracting the
	// opponent's best outcome.
	SingleAgent bool
}

func DefaultTemporalDifferenceConfig() TemporalDifferenceConfig {
	return TemporalDifferenceConfig{
		LearningRate:      0.05,
		LearningRateDecay: 0.001,
		Gamma:             0.8,
	}
}

type stateAction struct {
	key    string
	action int
}

// TemporalDifference is a tabular Q value learner. In the default adversarial mode both players
// feed their moves into the same instance, one after the other.
type TemporalDifference struct {
	logger *slog.Logger
	store  *qvalue.Store
	config TemporalDifferenceConfig
	rng    *rand.Rand

	prev *stateAction
}

func NewTemporalDifference(
	logger *slog.Logger,
	store *qvalue.Store,
	config TemporalDifferenceConfig,
	src rand.Source,
) *TemporalDifference {
	return &TemporalDifference{
		logger: logger.With("component", "temporal_difference"),
		store:  store,
		config: config,
		rng:    rand.New(src),
	}
}

func (that *TemporalDifference) Store() *qvalue.Store {
	return that.store
}

// Values returns the learned values for state, if any.
func (that *TemporalDifference) Values(state rl.State) ([]float64, bool) {
	return that.store.Get(state.Key())
}

// LearningRate decays with the number of states learned so far.
func (that *TemporalDifference) LearningRate() float64 {
	n := float64(that.store.Len())
	return that.config.LearningRate / (1 + n*that.config.LearningRateDecay)
}

// GreedyAction picks the legal action with the highest learned value, breaking ties at random.
func (that *TemporalDifference) GreedyAction(state rl.State) (int, error) {
	values, ok := that.store.Get(state.Key())
	if !ok {
		return 0, fmt.Errorf("%w: %s not learned", apperror.ErrUnableToPredict, state.Key())
	}

	best := math.Inf(-1)
	candidates := make([]int, 0, len(values))
	for _, action := range state.LegalActions() {
		if action < 0 || action >= len(values) || math.IsNaN(values[action]) {
			continue
		}

		switch v := values[action]; {
		case v > best:
			best = v
			candidates = append(candidates[:0], action)
		case v == best:
			candidates = append(candidates, action)
		}
	}

	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: %s has no valued legal action", apperror.ErrUnableToPredict, state.Key())
	}

	return candidates[that.rng.Intn(len(candidates))], nil
}

func (that *TemporalDifference) Update(transition rl.Transition) error {
	if transition.State == nil {
		return fmt.Errorf("%w: missing state", apperror.ErrInvalidTransition)
	}
	if transition.Action < 0 || transition.Action >= that.store.NumActions() {
		return fmt.Errorf("%w: action %d out of range", apperror.ErrInvalidTransition, transition.Action)
	}

	lr := that.LearningRate()
	key := transition.State.Key()

	values := that.store.Ensure(key)
	values[transition.Action] = lr*qvalue.ZeroIfNaN(values[transition.Action]) + (1-lr)*transition.Reward

	if that.prev != nil {
		prev := that.store.Ensure(that.prev.key)
		if that.config.SingleAgent {
			prev[that.prev.action] = qvalue.ZeroIfNaN(prev[that.prev.action]) + that.config.Gamma*qvalue.Max(values)
		} else {
			prev[that.prev.action] = qvalue.ZeroIfNaN(prev[that.prev.action]) - that.config.Gamma*qvalue.BestOutcome(values)
		}
	}

	if transition.Done {
		that.prev = nil
	} else {
		that.prev = &stateAction{key: key, action: transition.Action}
	}

	return nil
}

// Forget clears the pending backup, e.g. when an episode is abandoned.
func (that *TemporalDifference) Forget() {
	that.prev = nil
}

func (that *TemporalDifference) Save(path string) error {
	log := that.logger.With("method", "Save")

	if err := qvalue.SaveFile(path, that.store); err != nil {
		log.Error("failed to save q values", "path", path, "error", err)
		return fmt.Errorf("failed to save q values: %w", err)
	}

	log.Info("q values saved", "path", path, "states", that.store.Len())
	return nil
}

// Load replaces the learned values with the contents of path.
func (that *TemporalDifference) Load(path string) error {
	log := that.logger.With("method", "Load")

	store, err := qvalue.LoadFile(path, that.store.NumActions())
	if err != nil {
		log.Error("failed to load q values", "path", path, "error", err)
		return fmt.Errorf("failed to load q values: %w", err)
	}

	that.store = store
	that.prev = nil

	log.Info("q values loaded", "path", path, "states", store.Len())
	return nil
}

// Replace swaps in an externally loaded table.
func (that *TemporalDifference) Replace(store *qvalue.Store) {
	that.store = store
	that.prev = nil
}
