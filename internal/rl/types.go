// Package rl holds the contracts shared by environments, policies and the episode loop.
package rl

// State is an environment configuration as seen by the acting agent.
type State interface {
	// Key is the canonical, collision-free lookup key of the state.
	Key() string
	// Vector is the numeric encoding fed to function approximators.
	Vector() []float64
	// LegalActions lists the actions that may be taken from the state.
	LegalActions() []int
}

// Transition is a single observed step. It is also the replay memory entry.
type Transition struct {
	State     State
	NextState State
	Action    int
	Reward    float64
	Done      bool
}

type Greedy interface {
	GreedyAction(state State) (int, error)
}

type Learner interface {
	Update(transition Transition) error
}

// Policy selects greedy actions and learns from transitions.
type Policy interface {
	Greedy
	Learner
}

// Explorer picks an action when the policy is not exploiting.
type Explorer interface {
	ExploreAction(state State) (int, error)
}

// Selector is anything that can choose the next action for an agent.
type Selector interface {
	SelectAction(state State) (int, error)
}

// EpisodeObserver is notified when an episode finishes.
type EpisodeObserver interface {
	EpisodeComplete()
}

// Contains reports whether action is in actions.
func Contains(actions []int, action int) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}

	return false
}
