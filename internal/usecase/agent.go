package usecase

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

type qValueRepo interface {
	Save(ctx context.Context, table string, store *qvalue.Store) error
	Load(ctx context.Context, table string, numActions int) (*qvalue.Store, error)
}

type outcomeRepo interface {
	Save(ctx context.Context, records ...entity.EpisodeRecord) error
	Stats(ctx context.Context, runID string) (entity.Stats, error)
}

// Agent is one participant of an episode. Learner is nil for agents that only play.
type Agent struct {
	Name     string
	Selector rl.Selector
	Learner  rl.Learner
}

func (that Agent) learn(transition rl.Transition) error {
	if that.Learner == nil {
		return nil
	}

	return that.Learner.Update(transition)
}

// forgetter drops a pending backup that an unfinished episode left behind.
type forgetter interface {
	Forget()
}

func forget(learner rl.Learner) {
	if f, ok := learner.(forgetter); ok {
		f.Forget()
	}
}

// notifyEpisodeComplete tells every distinct observer among the agents' selectors and learners
// that the episode ended.
func notifyEpisodeComplete(agents ...Agent) {
	seen := make(map[rl.EpisodeObserver]struct{})
	for _, agent := range agents {
		for _, part := range []any{agent.Selector, agent.Learner} {
			observer, ok := part.(rl.EpisodeObserver)
			if !ok {
				continue
			}
			if _, done := seen[observer]; done {
				continue
			}
			seen[observer] = struct{}{}
			observer.EpisodeComplete()
		}
	}
}
