package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	NumActions = 9
)

const (
	ResultPlay = "play"
	ResultWin  = "win"
	ResultDraw = "draw"
)

var (
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrInvalidPlayer = errors.New("invalid player")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Rewards paid out by the game for each kind of move.
type Rewards struct {
	Play float64
	Win  float64
	Loss float64
	Draw float64
}

func DefaultRewards() Rewards {
	return Rewards{Play: 0, Win: 100, Loss: -200, Draw: 200}
}

// Outcome is the reward pair of a move: for the player that moved and for its opponent.
type Outcome struct {
	Actor  float64
	Other  float64
	Result string
}

// Board holds the cells in row-major order; cell index i is the action i.
type Board [NumActions]Mark

// Winner returns the mark owning a full row, column or diagonal, or Empty.
func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that Board) Full() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that Board) IsTerminal() bool {
	return that.Winner() != Empty || that.Full()
}

// LegalActions lists the empty cells, or nothing once the board is terminal.
func (that Board) LegalActions() []int {
	if that.IsTerminal() {
		return nil
	}

	actions := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == Empty {
			actions = append(actions, i)
		}
	}

	return actions
}

func (that Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			sb.WriteString("[" + that[row*3+col].String() + "]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Game is the Tic-Tac-Toe environment.
type Game struct {
	Board      Board
	Status     string
	Winner     Mark
	LastPlayer Mark

	rewards Rewards
}

func NewGame(rewards Rewards) *Game {
	game := &Game{rewards: rewards}
	game.Reset()

	return game
}

// Reset returns the game to an empty board where either player may move first.
func (that *Game) Reset() {
	that.Board = Board{}
	that.Status = StatusOngoing
	that.Winner = Empty
	that.LastPlayer = Empty
}

func (that *Game) Rewards() Rewards {
	return that.rewards
}

// Apply plays action on behalf of player and returns the rewards earned by the move.
func (that *Game) Apply(action int, player Mark) (Outcome, error) {
	if !player.IsPlayer() {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}

	if that.IsTerminal() {
		return Outcome{}, apperror.ErrGameFinished
	}

	if action < 0 || action >= len(that.Board) {
		return Outcome{}, fmt.Errorf("%w: cell %d", ErrInvalidCell, action)
	}

	if that.Board[action] != Empty {
		return Outcome{}, apperror.ErrCellOccupied
	}

	if that.LastPlayer == player {
		return Outcome{}, apperror.ErrNotYourTurn
	}

	that.Board[action] = player
	that.LastPlayer = player

	return that.updateGameState(), nil
}

func (that *Game) updateGameState() Outcome {
	if winner := that.Board.Winner(); winner != Empty {
		that.Winner = winner
		that.Status = StatusFinished

		return Outcome{Actor: that.rewards.Win, Other: that.rewards.Loss, Result: ResultWin}
	}

	if that.Board.Full() {
		that.Status = StatusFinished

		return Outcome{Actor: that.rewards.Draw, Other: that.rewards.Draw, Result: ResultDraw}
	}

	return Outcome{Actor: that.rewards.Play, Other: 0, Result: ResultPlay}
}

func (that *Game) IsTerminal() bool {
	return that.Status == StatusFinished || that.Board.IsTerminal()
}

func (that *Game) IsDraw() bool {
	return that.IsTerminal() && that.Board.Winner() == Empty
}

func (that *Game) LegalActions() []int {
	return that.Board.LegalActions()
}

// StateFor is the game state from the perspective of player about to act.
func (that *Game) StateFor(player Mark) State {
	return State{Player: player, Board: that.Board}
}
