package policy

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var _ rl.Selector = (*Human)(nil)

// Human reads moves numbered from 1 from a line based input until a legal one is given.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (that *Human) SelectAction(state rl.State) (int, error) {
	legal := state.LegalActions()
	if len(legal) == 0 {
		return 0, apperror.ErrNoLegalActions
	}

	for {
		fmt.Fprintf(that.out, "Enter move %s: ", describe(legal))

		if !that.in.Scan() {
			if err := that.in.Err(); err != nil {
				return 0, fmt.Errorf("failed to read move: %w", err)
			}
			return 0, apperror.ErrNoInput
		}

		move, err := strconv.Atoi(strings.TrimSpace(that.in.Text()))
		if err != nil || !rl.Contains(legal, move-1) {
			fmt.Fprintln(that.out, "Invalid move, try again.")
			continue
		}

		return move - 1, nil
	}
}

func describe(actions []int) string {
	labels := make([]string, len(actions))
	for i, action := range actions {
		labels[i] = strconv.Itoa(action + 1)
	}

	return "[" + strings.Join(labels, ",") + "]"
}
