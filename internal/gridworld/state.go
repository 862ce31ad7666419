package gridworld

import (
	"strconv"

	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var _ rl.State = State{}

// State is the agent position; the map itself is fixed.
type State struct {
	Position
	actions []int
}

func (that State) Key() string {
	return strconv.Itoa(that.Row) + "," + strconv.Itoa(that.Col)
}

func (that State) Vector() []float64 {
	return []float64{float64(that.Row), float64(that.Col)}
}

func (that State) LegalActions() []int {
	return that.actions
}
