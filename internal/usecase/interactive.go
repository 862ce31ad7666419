package usecase

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

// Interactive plays a single game against a person, drawing the board after every move.
type Interactive struct {
	logger  *slog.Logger
	out     io.Writer
	rewards entity.Rewards
	src     rand.Source
}

func NewInteractive(logger *slog.Logger, out io.Writer, rewards entity.Rewards, src rand.Source) *Interactive {
	return &Interactive{
		logger:  logger.With("component", "interactive"),
		out:     out,
		rewards: rewards,
		src:     src,
	}
}

func (that *Interactive) Play(human, machine Agent, humanFirst bool) (EpisodeResult, error) {
	hook := func(board entity.Board, move entity.Move) {
		fmt.Fprintf(that.out, "%s plays %d\n%s\n", move.Player, move.Action+1, board)
	}
	trainer := NewTrainer(that.logger, entity.NewGame(that.rewards), that.src, WithMoveHook(hook))

	x, o := machine, human
	if humanFirst {
		x, o = human, machine
	}

	result, err := trainer.PlayEpisode(x, o, entity.PlayerX)
	if err != nil {
		return result, err
	}

	switch result.Winner {
	case entity.Empty:
		fmt.Fprintln(that.out, "Draw.")
	default:
		fmt.Fprintf(that.out, "%s wins.\n", result.Winner)
	}

	return result, nil
}
