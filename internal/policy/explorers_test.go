package policy_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/policy"
	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
)

var crowded = entity.Board{
	entity.PlayerX, entity.PlayerO, entity.Empty,
	entity.PlayerO, entity.PlayerX, entity.Empty,
	entity.Empty, entity.Empty, entity.Empty,
}

func TestRandomExplorer(t *testing.T) {
	t.Run("only picks legal actions", func(t *testing.T) {
		// Given:
		explorer := policy.NewRandomExplorer(rand.NewSource(3))
		state := stateOf(entity.PlayerX, crowded)

		for i := 0; i < 100; i++ {
			// When:
			action, err := explorer.ExploreAction(state)

			// Then:
			require.NoError(t, err)
			assert.Contains(t, state.LegalActions(), action)
		}
	})

	t.Run("fails without legal actions", func(t *testing.T) {
		// Given:
		full := entity.Board{1, -1, 1, 1, -1, -1, -1, 1, 1}

		// When:
		_, err := policy.NewRandomExplorer(rand.NewSource(3)).ExploreAction(stateOf(entity.PlayerX, full))

		// Then:
		require.ErrorIs(t, err, apperror.ErrNoLegalActions)
	})
}

func TestPreferNewExplorer(t *testing.T) {
	t.Run("tries every legal action before repeating", func(t *testing.T) {
		// Given:
		explorer := policy.NewPreferNewExplorer(rand.NewSource(5))
		state := stateOf(entity.PlayerO, crowded)
		legal := state.LegalActions()

		// When:
		seen := map[int]struct{}{}
		for range legal {
			action, err := explorer.ExploreAction(state)
			require.NoError(t, err)
			seen[action] = struct{}{}
		}

		// Then:
		assert.Len(t, seen, len(legal))

		action, err := explorer.ExploreAction(state)
		require.NoError(t, err)
		assert.Contains(t, legal, action)
	})
}

func TestSoftmaxExplorer(t *testing.T) {
	t.Run("strongly prefers the best learned action", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		state := stateOf(entity.PlayerX, crowded)
		values := qvalue.Unset(entity.NumActions)
		values[8] = 100
		values[0] = 1000
		td.Store().Set(state.Key(), values)
		explorer := policy.NewSoftmaxExplorer(td, 1, rand.NewSource(9))

		for i := 0; i < 50; i++ {
			// When:
			action, err := explorer.ExploreAction(state)

			// Then:
			require.NoError(t, err)
			assert.Equal(t, 8, action)
		}
	})

	t.Run("draws every legal action for an unknown state", func(t *testing.T) {
		// Given:
		td := newTD(policy.DefaultTemporalDifferenceConfig())
		state := stateOf(entity.PlayerX, crowded)
		explorer := policy.NewSoftmaxExplorer(td, 1, rand.NewSource(9))

		// When:
		seen := map[int]struct{}{}
		for i := 0; i < 300; i++ {
			action, err := explorer.ExploreAction(state)
			require.NoError(t, err)
			seen[action] = struct{}{}
		}

		// Then:
		assert.Len(t, seen, len(state.LegalActions()))
	})
}

func TestInformedExplorer(t *testing.T) {
	t.Run("ratio one follows the greedy policy", func(t *testing.T) {
		// Given:
		state := stateOf(entity.PlayerX, crowded)
		explorer := policy.NewInformedExplorer(learnedTD(state, 6), 1, rand.NewSource(2))

		// When:
		action, err := explorer.SelectAction(state)

		// Then:
		require.NoError(t, err)
		assert.Equal(t, 6, action)
	})

	t.Run("unknown state falls back to a random legal move", func(t *testing.T) {
		// Given:
		state := stateOf(entity.PlayerX, crowded)
		explorer := policy.NewInformedExplorer(newTD(policy.DefaultTemporalDifferenceConfig()), 1, rand.NewSource(2))

		// When:
		action, err := explorer.SelectAction(state)

		// Then:
		require.NoError(t, err)
		assert.Contains(t, state.LegalActions(), action)
	})
}

func TestHuman(t *testing.T) {
	t.Run("reprompts until a legal move is entered", func(t *testing.T) {
		// Given:
		var out bytes.Buffer
		human := policy.NewHuman(strings.NewReader("abc\n1\n10\n3\n"), &out)

		// When:
		action, err := human.SelectAction(stateOf(entity.PlayerX, crowded))

		// Then:
		require.NoError(t, err)
		assert.Equal(t, 2, action)
		assert.Equal(t, 3, strings.Count(out.String(), "Invalid move"))
		assert.Contains(t, out.String(), "[3,6,7,8,9]")
	})

	t.Run("end of input is reported", func(t *testing.T) {
		// Given:
		human := policy.NewHuman(strings.NewReader(""), &bytes.Buffer{})

		// When:
		_, err := human.SelectAction(stateOf(entity.PlayerX, crowded))

		// Then:
		require.ErrorIs(t, err, apperror.ErrNoInput)
	})
}
