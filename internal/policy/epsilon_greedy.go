package policy

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var (
	_ rl.Selector        = (*EpsilonGreedy)(nil)
	_ rl.Learner         = (*EpsilonGreedy)(nil)
	_ rl.EpisodeObserver = (*EpsilonGreedy)(nil)
)

type EpsilonGreedyConfig struct {
	// Epsilon is the probability of taking the greedy action.
	Epsilon float64
	// Decay shrinks the exploration share after every episode. Zero keeps epsilon fixed.
	Decay   float64
	Minimum float64
}

// EpsilonGreedy delegates to the greedy policy with probability epsilon and to the explorer otherwise.
type EpsilonGreedy struct {
	policy   rl.Policy
	explorer rl.Explorer
	config   EpsilonGreedyConfig
	rng      *rand.Rand

	epsilon   float64
	exploring bool
}

// NewEpsilonGreedy wraps policy. explorer may be nil, in which case the policy is always asked.
func NewEpsilonGreedy(policy rl.Policy, explorer rl.Explorer, config EpsilonGreedyConfig, src rand.Source) *EpsilonGreedy {
	return &EpsilonGreedy{
		policy:    policy,
		explorer:  explorer,
		config:    config,
		rng:       rand.New(src),
		epsilon:   clamp(config.Epsilon, config.Minimum, 1),
		exploring: true,
	}
}

func (that *EpsilonGreedy) Epsilon() float64 {
	return that.epsilon
}

// ExplorationOff makes every selection greedy, falling back to the explorer only when nothing is learned.
func (that *EpsilonGreedy) ExplorationOff() {
	that.exploring = false
}

func (that *EpsilonGreedy) ExplorationOn() {
	that.exploring = true
}

func (that *EpsilonGreedy) SelectAction(state rl.State) (int, error) {
	if that.explorer == nil || !that.exploring || that.rng.Float64() < that.epsilon {
		action, err := that.policy.GreedyAction(state)
		if err == nil {
			return action, nil
		}
		if !errors.Is(err, apperror.ErrUnableToPredict) || that.explorer == nil {
			return 0, err
		}
	}

	return that.explorer.ExploreAction(state)
}

func (that *EpsilonGreedy) Update(transition rl.Transition) error {
	return that.policy.Update(transition)
}

func (that *EpsilonGreedy) EpisodeComplete() {
	if that.config.Decay > 0 {
		explore := (1 - that.epsilon) * that.config.Decay
		that.epsilon = clamp(1-explore, that.config.Minimum, 1)
	}

	if observer, ok := that.policy.(rl.EpisodeObserver); ok {
		observer.EpisodeComplete()
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
