package policy_test

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/policy"
	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTD(config policy.TemporalDifferenceConfig) *policy.TemporalDifference {
	return policy.NewTemporalDifference(discardLogger(), qvalue.NewStore(entity.NumActions), config, rand.NewSource(1))
}

func stateOf(player entity.Mark, board entity.Board) entity.State {
	return entity.State{Player: player, Board: board}
}

func TestTemporalDifference_GreedyAction(t *testing.T) {
	t.Run("unknown state cannot be predicted", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())

		// When:
		_, err := td.GreedyAction(stateOf(entity.PlayerX, entity.Board{}))

		// Then:
		require.ErrorIs(t, err, apperror.ErrUnableToPredict)
	})

	t.Run("state with only unset legal values cannot be predicted", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		state := stateOf(entity.PlayerX, entity.Board{entity.PlayerO})
		values := qvalue.Unset(entity.NumActions)
		values[0] = 50
		td.Store().Set(state.Key(), values)

		// When:
		_, err := td.GreedyAction(state)

		// Then:
		require.ErrorIs(t, err, apperror.ErrUnableToPredict)
	})

	t.Run("never picks an occupied cell", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		board := entity.Board{entity.PlayerX, entity.PlayerO, entity.Empty, entity.Empty, entity.PlayerX}
		state := stateOf(entity.PlayerO, board)
		td.Store().Set(state.Key(), []float64{1000, 900, 1, 2, 800, math.NaN(), 3, -5, 0})

		for i := 0; i < 50; i++ {
			// When:
			action, err := td.GreedyAction(state)

			// Then:
			require.NoError(t, err)
			assert.Equal(t, 6, action)
		}
	})

	t.Run("breaks ties at random", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		state := stateOf(entity.PlayerX, entity.Board{})
		values := qvalue.Unset(entity.NumActions)
		values[2], values[7] = 10, 10
		td.Store().Set(state.Key(), values)

		// When:
		seen := map[int]int{}
		for i := 0; i < 200; i++ {
			action, err := td.GreedyAction(state)
			require.NoError(t, err)
			seen[action]++
		}

		// Then:
		assert.Len(t, seen, 2)
		assert.Positive(t, seen[2])
		assert.Positive(t, seen[7])
	})
}

func TestTemporalDifference_Update(t *testing.T) {
	cfg := policy.DefaultTemporalDifferenceConfig()
	first := stateOf(entity.PlayerX, entity.Board{})
	second := stateOf(entity.PlayerO, entity.Board{4: entity.PlayerX})

	t.Run("blends the reward into the visited action", func(t *testing.T) {
		// Given:
		td := newTD(cfg)

		// When:
		require.NoError(t, td.Update(rl.Transition{State: first, Action: 4, Reward: 100}))

		// Then:
		values, ok := td.Values(first)
		require.True(t, ok)
		assert.InDelta(t, (1-cfg.LearningRate)*100, values[4], 1e-12)
		assert.True(t, math.IsNaN(values[0]))
	})

	t.Run("adversarial mode subtracts the opponent's best outcome", func(t *testing.T) {
		// Given:
		td := newTD(cfg)
		require.NoError(t, td.Update(rl.Transition{State: first, Action: 4, Reward: 100}))
		lr := cfg.LearningRate / (1 + cfg.LearningRateDecay)

		// When:
		require.NoError(t, td.Update(rl.Transition{State: second, Action: 0, Reward: 100}))

		// Then:
		opponent, _ := td.Values(second)
		assert.InDelta(t, (1-lr)*100, opponent[0], 1e-12)

		own, _ := td.Values(first)
		assert.InDelta(t, (1-cfg.LearningRate)*100-cfg.Gamma*opponent[0], own[4], 1e-12)
	})

	t.Run("single agent mode adds the best next value", func(t *testing.T) {
		// Given:
		single := cfg
		single.SingleAgent = true
		td := newTD(single)
		require.NoError(t, td.Update(rl.Transition{State: first, Action: 4, Reward: 1}))

		// When:
		require.NoError(t, td.Update(rl.Transition{State: second, Action: 0, Reward: 2}))

		// Then:
		next, _ := td.Values(second)
		own, _ := td.Values(first)
		assert.InDelta(t, (1-cfg.LearningRate)*1+cfg.Gamma*next[0], own[4], 1e-12)
	})

	t.Run("terminal transition stops the backup chain", func(t *testing.T) {
		// Given:
		td := newTD(cfg)
		require.NoError(t, td.Update(rl.Transition{State: first, Action: 4, Reward: 100, Done: true}))
		before, _ := td.Values(first)
		want := before[4]

		// When:
		require.NoError(t, td.Update(rl.Transition{State: second, Action: 0, Reward: 100}))

		// Then:
		after, _ := td.Values(first)
		assert.InDelta(t, want, after[4], 1e-12)
	})

	t.Run("learning rate decays with learned states", func(t *testing.T) {
		// Given:
		td := newTD(cfg)
		start := td.LearningRate()

		// When:
		require.NoError(t, td.Update(rl.Transition{State: first, Action: 4}))

		// Then:
		assert.InDelta(t, cfg.LearningRate, start, 1e-12)
		assert.Less(t, td.LearningRate(), start)
	})

	t.Run("rejects a transition without state", func(t *testing.T) {
		// When:
		err := newTD(cfg).Update(rl.Transition{Action: 1})

		// Then:
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("rejects an out of range action", func(t *testing.T) {
		// When:
		err := newTD(cfg).Update(rl.Transition{State: first, Action: entity.NumActions})

		// Then:
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})
}

func TestTemporalDifference_Persistence(t *testing.T) {
	t.Run("saves and loads q values", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		state := stateOf(entity.PlayerX, entity.Board{})
		require.NoError(t, td.Update(rl.Transition{State: state, Action: 4, Reward: 200}))
		path := filepath.Join(t.TempDir(), "qvalues.txt")

		// When:
		require.NoError(t, td.Save(path))
		restored := newTD(policy.DefaultTemporalDifferenceConfig())
		require.NoError(t, restored.Load(path))

		// Then:
		want, _ := td.Values(state)
		got, ok := restored.Values(state)
		require.True(t, ok)
		assert.InDelta(t, want[4], got[4], 1e-12)
		assert.True(t, math.IsNaN(got[0]))
	})

	t.Run("load of a missing file fails", func(t *testing.T) {
		// When:
		err := newTD(policy.DefaultTemporalDifferenceConfig()).Load(filepath.Join(t.TempDir(), "missing.txt"))

		// Then:
		require.Error(t, err)
	})
}
