package entity

import "fmt"

// Mark is the value held by a board cell and the identity of a player.
type Mark int8

const (
	Empty   Mark = 0
	PlayerX Mark = 1
	PlayerO Mark = -1
)

// Other returns the opponent of the mark.
func (that Mark) Other() Mark {
	if that == PlayerO {
		return PlayerX
	}
	return PlayerO
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func (that Mark) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return " "
	}
}

// ParseMark accepts the numeric ("1", "-1") or letter ("X", "O") form of a player.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "1", "X", "x":
		return PlayerX, nil
	case "-1", "O", "o":
		return PlayerO, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
}
