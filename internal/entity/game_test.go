package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
)

func TestGame_Apply(t *testing.T) {
	t.Run("Successful move", func(t *testing.T) {
		// Given: a new game
		game := NewGame(DefaultRewards())

		// When: player X plays the center
		outcome, err := game.Apply(4, PlayerX)
		require.NoError(t, err)

		// Then: the cell is taken and the move pays the play reward
		assert.Equal(t, PlayerX, game.Board[4])
		assert.Equal(t, PlayerX, game.LastPlayer)
		assert.Equal(t, Outcome{Actor: 0, Other: 0, Result: ResultPlay}, outcome)
		assert.False(t, game.IsTerminal())
	})

	t.Run("Either player may open", func(t *testing.T) {
		// Given: a new game
		game := NewGame(DefaultRewards())

		// When: player O moves first
		_, err := game.Apply(0, PlayerO)

		// Then: the move is accepted
		require.NoError(t, err)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where cell 0 is taken by X
		game := NewGame(DefaultRewards())
		_, err := game.Apply(0, PlayerX)
		require.NoError(t, err)

		// When: O plays the same cell
		_, err = game.Apply(0, PlayerO)

		// Then: ErrCellOccupied is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, Board{PlayerX}, game.Board)
	})

	t.Run("Error on consecutive plays", func(t *testing.T) {
		// Given: X has just moved
		game := NewGame(DefaultRewards())
		_, err := game.Apply(0, PlayerX)
		require.NoError(t, err)

		// When: X tries to move again
		_, err = game.Apply(1, PlayerX)

		// Then: ErrNotYourTurn is returned
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, Empty, game.Board[1])
	})

	t.Run("Error on move after game finished", func(t *testing.T) {
		// Given: X has completed the top row
		game := NewGame(DefaultRewards())
		for _, move := range []Move{{PlayerX, 0}, {PlayerO, 3}, {PlayerX, 1}, {PlayerO, 4}, {PlayerX, 2}} {
			_, err := game.Apply(move.Action, move.Player)
			require.NoError(t, err)
		}

		// When: O tries to move
		_, err := game.Apply(5, PlayerO)

		// Then: ErrGameFinished is returned
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Invalid cell", func(t *testing.T) {
		game := NewGame(DefaultRewards())

		_, err := game.Apply(9, PlayerX)
		require.ErrorIs(t, err, ErrInvalidCell)

		_, err = game.Apply(-1, PlayerX)
		require.ErrorIs(t, err, ErrInvalidCell)
	})

	t.Run("Invalid player", func(t *testing.T) {
		game := NewGame(DefaultRewards())

		_, err := game.Apply(0, Empty)

		require.ErrorIs(t, err, ErrInvalidPlayer)
	})

	t.Run("Winning move pays win and loss", func(t *testing.T) {
		// Given: X one move away from the diagonal
		game := NewGame(DefaultRewards())
		for _, move := range []Move{{PlayerX, 0}, {PlayerO, 1}, {PlayerX, 4}, {PlayerO, 2}} {
			_, err := game.Apply(move.Action, move.Player)
			require.NoError(t, err)
		}

		// When: X completes the diagonal
		outcome, err := game.Apply(8, PlayerX)
		require.NoError(t, err)

		// Then: the game is over with X as winner
		assert.Equal(t, Outcome{Actor: 100, Other: -200, Result: ResultWin}, outcome)
		assert.True(t, game.IsTerminal())
		assert.Equal(t, PlayerX, game.Winner)
		assert.Equal(t, StatusFinished, game.Status)
	})

	t.Run("Filling the board without a line is a draw for both", func(t *testing.T) {
		// Given: a game heading for a draw
		// X O X
		// X O O
		// O X X
		game := NewGame(DefaultRewards())
		moves := []Move{
			{PlayerX, 0}, {PlayerO, 1}, {PlayerX, 2}, {PlayerO, 4}, {PlayerX, 3},
			{PlayerO, 5}, {PlayerX, 7}, {PlayerO, 6},
		}
		for _, move := range moves {
			_, err := game.Apply(move.Action, move.Player)
			require.NoError(t, err)
		}

		// When: X fills the last cell
		outcome, err := game.Apply(8, PlayerX)
		require.NoError(t, err)

		// Then: terminal with the draw reward for both players
		assert.Equal(t, Outcome{Actor: 200, Other: 200, Result: ResultDraw}, outcome)
		assert.True(t, game.IsTerminal())
		assert.True(t, game.IsDraw())
		assert.Equal(t, Empty, game.Winner)
	})
}

func TestGame_Reset(t *testing.T) {
	// Given: a game in progress
	game := NewGame(DefaultRewards())
	_, err := game.Apply(4, PlayerX)
	require.NoError(t, err)

	// When: it is reset
	game.Reset()

	// Then: the board is empty and anyone may start
	assert.Equal(t, Board{}, game.Board)
	assert.Equal(t, Empty, game.LastPlayer)
	assert.Equal(t, StatusOngoing, game.Status)
	assert.Len(t, game.LegalActions(), NumActions)
}

func TestBoard_IsTerminal(t *testing.T) {
	// Every one of the 3^9 cell assignments is checked against an explicit line scan.
	lineOwned := func(b Board) bool {
		for r := 0; r < 3; r++ {
			if b[r*3] != Empty && b[r*3] == b[r*3+1] && b[r*3+1] == b[r*3+2] {
				return true
			}
		}
		for c := 0; c < 3; c++ {
			if b[c] != Empty && b[c] == b[c+3] && b[c+3] == b[c+6] {
				return true
			}
		}
		if b[4] != Empty && ((b[0] == b[4] && b[4] == b[8]) || (b[2] == b[4] && b[4] == b[6])) {
			return true
		}
		return false
	}

	values := [3]Mark{Empty, PlayerX, PlayerO}
	total := 1
	for i := 0; i < NumActions; i++ {
		total *= 3
	}

	for n := 0; n < total; n++ {
		var board Board
		rest := n
		empty := false
		for i := range board {
			board[i] = values[rest%3]
			rest /= 3
			if board[i] == Empty {
				empty = true
			}
		}

		expected := lineOwned(board) || !empty
		require.Equal(t, expected, board.IsTerminal(), "board %v", board)
		if expected {
			require.Empty(t, board.LegalActions())
		}
	}
}

func TestBoard_LegalActions(t *testing.T) {
	board := Board{PlayerX, Empty, PlayerO, Empty, PlayerX}

	assert.Equal(t, []int{1, 3, 5, 6, 7, 8}, board.LegalActions())
}
