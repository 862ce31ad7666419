// Package gridworld is a single-agent environment: a fixed map of rewards an agent walks across
// until it reaches a goal cell.
package gridworld

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

// Cell rewards.
const (
	Free    = 0.0
	Step    = -0.2
	Fire    = -1.0
	Goal    = 1.0
	Blocked = -1.1
)

const (
	North = iota
	South
	East
	West

	NumActions = 4
)

type Respawn int

const (
	RespawnDefault Respawn = iota
	RespawnRandom
	RespawnCorner
	RespawnEdge
)

var (
	ErrEpisodeOver    = errors.New("episode already complete, agent is on a goal cell")
	ErrBlockedAction  = errors.New("action is blocked or leaves the grid")
	ErrInvalidGrid    = errors.New("invalid grid")
	ErrInvalidRespawn = errors.New("invalid respawn mode")

	offsets = [NumActions]Position{
		North: {Row: -1},
		South: {Row: 1},
		East:  {Col: 1},
		West:  {Col: -1},
	}
)

func ParseRespawn(s string) (Respawn, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return RespawnDefault, nil
	case "random":
		return RespawnRandom, nil
	case "corner":
		return RespawnCorner, nil
	case "edge":
		return RespawnEdge, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRespawn, s)
	}
}

type Position struct {
	Row int
	Col int
}

func (that Position) Move(action int) Position {
	offset := offsets[action]
	return Position{Row: that.Row + offset.Row, Col: that.Col + offset.Col}
}

// Grid holds the reward map and the agent position. The map never changes after construction.
type Grid struct {
	cells   [][]float64
	rows    int
	cols    int
	start   Position
	current Position
	respawn Respawn
	rng     *rand.Rand
}

func New(cells [][]float64, start Position, respawn Respawn, src rand.Source) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrInvalidGrid)
	}

	rows, cols := len(cells), len(cells[0])
	copied := make([][]float64, rows)
	for r, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, r, len(row), cols)
		}
		copied[r] = append([]float64(nil), row...)
	}

	grid := &Grid{
		cells:   copied,
		rows:    rows,
		cols:    cols,
		start:   start,
		current: start,
		respawn: respawn,
		rng:     rand.New(src),
	}

	if !grid.inside(start) || grid.blocked(start) {
		return nil, fmt.Errorf("%w: start %v is outside or blocked", ErrInvalidGrid, start)
	}

	return grid, nil
}

func (that *Grid) Shape() (int, int) {
	return that.rows, that.cols
}

func (that *Grid) Position() Position {
	return that.current
}

// Reward is the reward paid for entering pos.
func (that *Grid) Reward(pos Position) float64 {
	return that.cells[pos.Row][pos.Col]
}

func (that *Grid) IsTerminal() bool {
	return that.terminal(that.current)
}

func (that *Grid) State() State {
	return State{Position: that.current, actions: that.AllowedActions(that.current)}
}

// AllowedActions lists the moves from pos that stay on the grid and avoid blocked cells.
// Nothing is allowed from a goal cell.
func (that *Grid) AllowedActions(pos Position) []int {
	if that.terminal(pos) {
		return nil
	}

	actions := make([]int, 0, NumActions)
	for action := 0; action < NumActions; action++ {
		next := pos.Move(action)
		if that.inside(next) && !that.blocked(next) {
			actions = append(actions, action)
		}
	}

	return actions
}

// Execute moves the agent and returns the reward of the cell it lands on.
func (that *Grid) Execute(action int) (float64, error) {
	if that.IsTerminal() {
		return 0, ErrEpisodeOver
	}

	allowed := false
	for _, a := range that.AllowedActions(that.current) {
		if a == action {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, fmt.Errorf("%w: action %d at %v", ErrBlockedAction, action, that.current)
	}

	that.current = that.current.Move(action)

	return that.Reward(that.current), nil
}

// Reset moves the agent to a spawn point chosen by the respawn mode.
func (that *Grid) Reset() {
	candidates := that.spawnPoints()
	if len(candidates) == 0 {
		that.current = that.start
		return
	}

	that.current = candidates[that.rng.Intn(len(candidates))]
}

func (that *Grid) ResetTo(pos Position) error {
	if !that.inside(pos) || that.blocked(pos) {
		return fmt.Errorf("%w: %v is outside or blocked", ErrInvalidGrid, pos)
	}

	that.current = pos
	return nil
}

func (that *Grid) spawnPoints() []Position {
	var points []Position

	switch that.respawn {
	case RespawnRandom:
		for r := 0; r < that.rows; r++ {
			for c := 0; c < that.cols; c++ {
				points = append(points, Position{Row: r, Col: c})
			}
		}
	case RespawnCorner:
		points = []Position{
			{Row: 0, Col: 0},
			{Row: 0, Col: that.cols - 1},
			{Row: that.rows - 1, Col: 0},
			{Row: that.rows - 1, Col: that.cols - 1},
		}
	case RespawnEdge:
		for r := 0; r < that.rows; r++ {
			for c := 0; c < that.cols; c++ {
				if r == 0 || c == 0 || r == that.rows-1 || c == that.cols-1 {
					points = append(points, Position{Row: r, Col: c})
				}
			}
		}
	default:
		return []Position{that.start}
	}

	usable := points[:0]
	for _, p := range points {
		if !that.blocked(p) && !that.terminal(p) {
			usable = append(usable, p)
		}
	}

	return usable
}

func (that *Grid) inside(pos Position) bool {
	return pos.Row >= 0 && pos.Row < that.rows && pos.Col >= 0 && pos.Col < that.cols
}

func (that *Grid) blocked(pos Position) bool {
	return that.cells[pos.Row][pos.Col] == Blocked
}

func (that *Grid) terminal(pos Position) bool {
	return that.cells[pos.Row][pos.Col] == Goal
}

// String draws the map with the agent as "A".
func (that *Grid) String() string {
	var sb strings.Builder
	for r := 0; r < that.rows; r++ {
		for c := 0; c < that.cols; c++ {
			sb.WriteString("[" + that.symbol(Position{Row: r, Col: c}) + "]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (that *Grid) symbol(pos Position) string {
	if pos == that.current {
		return "A"
	}

	switch that.Reward(pos) {
	case Goal:
		return "G"
	case Fire:
		return "F"
	case Blocked:
		return "#"
	case Step:
		return "."
	default:
		return " "
	}
}
