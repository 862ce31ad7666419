package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidProfile = errors.New("invalid game profile")

// Move is a single play inside a game profile.
type Move struct {
	Player Mark
	Action int
}

// Profile is the sequence of moves of one game. Its text form is "<player>:<action>~" per move with
// actions numbered 1..9, e.g. "1:5~-1:1~".
type Profile []Move

func (that Profile) String() string {
	var sb strings.Builder
	for _, move := range that {
		sb.WriteString(strconv.Itoa(int(move.Player)))
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(move.Action + 1))
		sb.WriteString("~")
	}

	return sb.String()
}

// Board replays the profile onto an empty board.
func (that Profile) Board() (Board, error) {
	game := NewGame(DefaultRewards())
	for i, move := range that {
		if _, err := game.Apply(move.Action, move.Player); err != nil {
			return Board{}, fmt.Errorf("%w: move %d: %w", ErrInvalidProfile, i, err)
		}
	}

	return game.Board, nil
}

func ParseProfile(s string) (Profile, error) {
	s = strings.TrimSpace(s)
	profile := make(Profile, 0, NumActions)

	for _, item := range strings.Split(s, "~") {
		if item == "" {
			continue
		}

		player, action, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProfile, item)
		}

		mark, err := ParseMark(player)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
		}

		number, err := strconv.Atoi(action)
		if err != nil || number < 1 || number > NumActions {
			return nil, fmt.Errorf("%w: action %q", ErrInvalidProfile, action)
		}

		profile = append(profile, Move{Player: mark, Action: number - 1})
	}

	return profile, nil
}
