package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var ErrInvalidStateKey = errors.New("invalid state key")

var _ rl.State = State{}

// State is the board as seen by the player about to act.
type State struct {
	Player Mark
	Board  Board
}

// Key is the player followed by every cell as an integer, e.g. "1" + "000010000".
// The tokens "0", "1" and "-1" are prefix free, so keys never collide.
func (that State) Key() string {
	var sb strings.Builder
	sb.Grow(2 * (len(that.Board) + 1))
	sb.WriteString(strconv.Itoa(int(that.Player)))
	for _, cell := range that.Board {
		sb.WriteString(strconv.Itoa(int(cell)))
	}

	return sb.String()
}

// Vector encodes the board relative to the acting player: own cells +1, opponent cells -1.
func (that State) Vector() []float64 {
	vector := make([]float64, len(that.Board))
	for i, cell := range that.Board {
		vector[i] = float64(cell) * float64(that.Player)
	}

	return vector
}

func (that State) LegalActions() []int {
	return that.Board.LegalActions()
}

// ParseStateKey inverts State.Key.
func ParseStateKey(key string) (State, error) {
	tokens, err := tokenizeKey(key)
	if err != nil {
		return State{}, err
	}

	if len(tokens) != NumActions+1 {
		return State{}, fmt.Errorf("%w: %q has %d cells", ErrInvalidStateKey, key, len(tokens)-1)
	}

	player := Mark(tokens[0])
	if !player.IsPlayer() {
		return State{}, fmt.Errorf("%w: %q has no player", ErrInvalidStateKey, key)
	}

	var board Board
	for i, token := range tokens[1:] {
		board[i] = Mark(token)
	}

	return State{Player: player, Board: board}, nil
}

func tokenizeKey(key string) ([]int8, error) {
	tokens := make([]int8, 0, NumActions+1)
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '0':
			tokens = append(tokens, 0)
		case '1':
			tokens = append(tokens, 1)
		case '-':
			if i+1 >= len(key) || key[i+1] != '1' {
				return nil, fmt.Errorf("%w: %q at %d", ErrInvalidStateKey, key, i)
			}
			tokens = append(tokens, -1)
			i++
		default:
			return nil, fmt.Errorf("%w: %q at %d", ErrInvalidStateKey, key, i)
		}
	}

	return tokens, nil
}
