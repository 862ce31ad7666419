package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

// ValueSource exposes learned action values for a state.
type ValueSource interface {
	Values(state rl.State) ([]float64, bool)
}

// RandomExplorer picks uniformly among the legal actions.
type RandomExplorer struct {
	rng *rand.Rand
}

func NewRandomExplorer(src rand.Source) *RandomExplorer {
	return &RandomExplorer{rng: rand.New(src)}
}

func (that *RandomExplorer) ExploreAction(state rl.State) (int, error) {
	return pick(that.rng, state.LegalActions())
}

// SelectAction lets a random explorer play on its own.
func (that *RandomExplorer) SelectAction(state rl.State) (int, error) {
	return that.ExploreAction(state)
}

// PreferNewExplorer picks among the legal actions it has not yet tried from the state, then uniformly.
type PreferNewExplorer struct {
	rng   *rand.Rand
	tried map[string]map[int]struct{}
}

func NewPreferNewExplorer(src rand.Source) *PreferNewExplorer {
	return &PreferNewExplorer{
		rng:   rand.New(src),
		tried: make(map[string]map[int]struct{}),
	}
}

func (that *PreferNewExplorer) ExploreAction(state rl.State) (int, error) {
	legal := state.LegalActions()
	key := state.Key()

	tried := that.tried[key]
	if tried == nil {
		tried = make(map[int]struct{})
		that.tried[key] = tried
	}

	untried := make([]int, 0, len(legal))
	for _, action := range legal {
		if _, ok := tried[action]; !ok {
			untried = append(untried, action)
		}
	}
	if len(untried) == 0 {
		untried = legal
	}

	action, err := pick(that.rng, untried)
	if err != nil {
		return 0, err
	}
	tried[action] = struct{}{}

	return action, nil
}

// SoftmaxExplorer draws legal actions with weight exp(q/temperature). Unset values count as zero.
type SoftmaxExplorer struct {
	values      ValueSource
	temperature float64
	src         rand.Source
}

func NewSoftmaxExplorer(values ValueSource, temperature float64, src rand.Source) *SoftmaxExplorer {
	if temperature <= 0 {
		temperature = 1
	}

	return &SoftmaxExplorer{values: values, temperature: temperature, src: src}
}

func (that *SoftmaxExplorer) ExploreAction(state rl.State) (int, error) {
	legal := state.LegalActions()
	if len(legal) == 0 {
		return 0, fmt.Errorf("%w: %s", apperror.ErrNoLegalActions, state.Key())
	}

	learned, _ := that.values.Values(state)
	scores := make([]float64, len(legal))
	top := math.Inf(-1)
	for i, action := range legal {
		if action < len(learned) && !math.IsNaN(learned[action]) {
			scores[i] = learned[action] / that.temperature
		}
		top = math.Max(top, scores[i])
	}

	// Shifted by the top score so large values do not overflow.
	weights := make([]float64, len(legal))
	for i, score := range scores {
		weights[i] = math.Exp(score - top)
	}

	idx, ok := sampleuv.NewWeighted(weights, that.src).Take()
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperror.ErrNoLegalActions, state.Key())
	}

	return legal[idx], nil
}

// InformedExplorer asks the greedy policy with probability ratio and moves at random otherwise.
type InformedExplorer struct {
	greedy rl.Greedy
	random *RandomExplorer
	ratio  float64
	rng    *rand.Rand
}

func NewInformedExplorer(greedy rl.Greedy, ratio float64, src rand.Source) *InformedExplorer {
	return &InformedExplorer{
		greedy: greedy,
		random: NewRandomExplorer(src),
		ratio:  ratio,
		rng:    rand.New(src),
	}
}

func (that *InformedExplorer) ExploreAction(state rl.State) (int, error) {
	if that.rng.Float64() < that.ratio {
		if action, err := that.greedy.GreedyAction(state); err == nil {
			return action, nil
		}
	}

	return that.random.ExploreAction(state)
}

func (that *InformedExplorer) SelectAction(state rl.State) (int, error) {
	return that.ExploreAction(state)
}

func pick(rng *rand.Rand, actions []int) (int, error) {
	if len(actions) == 0 {
		return 0, apperror.ErrNoLegalActions
	}

	return actions[rng.Intn(len(actions))], nil
}
