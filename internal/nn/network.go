// Package nn wraps a go-deep regression network: ReLU hidden layers, linear output, mean squared
// error, Adam.
package nn

import (
	"errors"
	"fmt"
	"math"

	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const defaultLearningRate = 0.001

var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrInvalidLayers = errors.New("network needs an input and an output layer")
)

// Network maps an input vector to one output per unit of the last layer.
type Network struct {
	sizes        []int
	neural       *deep.Neural
	learningRate float64
	rng          *rand.Rand
}

type Option func(*Network)

func WithLearningRate(lr float64) Option {
	return func(n *Network) {
		if lr > 0 {
			n.learningRate = lr
		}
	}
}

// WithSource seeds the initial weights.
func WithSource(src rand.Source) Option {
	return func(n *Network) {
		if src != nil {
			n.rng = rand.New(src)
		}
	}
}

// New builds a network with the given layer sizes, e.g. 9, 50, 100, 9.
func New(sizes []int, opts ...Option) (*Network, error) {
	if err := validLayers(sizes); err != nil {
		return nil, err
	}

	n := &Network{
		sizes:        append([]int(nil), sizes...),
		learningRate: defaultLearningRate,
		rng:          rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(n)
	}

	limit := math.Sqrt(6 / float64(sizes[0]+sizes[1]))
	n.neural = deep.NewNeural(&deep.Config{
		Inputs:     sizes[0],
		Layout:     n.sizes[1:],
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeRegression,
		Loss:       deep.LossMeanSquared,
		Weight: func() float64 {
			return (n.rng.Float64()*2 - 1) * limit
		},
		Bias: true,
	})

	return n, nil
}

func validLayers(sizes []int) error {
	if len(sizes) < 2 {
		return fmt.Errorf("%w: got %d layers", ErrInvalidLayers, len(sizes))
	}
	for _, size := range sizes {
		if size <= 0 {
			return fmt.Errorf("%w: layer size %d", ErrInvalidLayers, size)
		}
	}

	return nil
}

func (that *Network) Sizes() []int {
	return append([]int(nil), that.sizes...)
}

func (that *Network) InputSize() int {
	return that.sizes[0]
}

func (that *Network) OutputSize() int {
	return that.sizes[len(that.sizes)-1]
}

// Predict runs a single input vector through the network.
func (that *Network) Predict(x []float64) ([]float64, error) {
	if len(x) != that.InputSize() {
		return nil, fmt.Errorf("%w: input has %d values, want %d", ErrShapeMismatch, len(x), that.InputSize())
	}

	return that.neural.Predict(x), nil
}

// Train fits the network to y for the given number of epochs, one Adam step per shuffled row, and
// returns the loss over the whole set afterwards.
func (that *Network) Train(x, y *mat.Dense, epochs int) (float64, error) {
	if err := that.checkSet(x, y); err != nil {
		return 0, err
	}
	if epochs <= 0 {
		epochs = 1
	}

	trainer := training.NewTrainer(training.NewAdam(that.learningRate, 0, 0, 0), 0)
	trainer.Train(that.neural, examples(x, y), nil, epochs)

	return that.Evaluate(x, y)
}

// Evaluate returns the mean squared error of the predictions for x against y.
func (that *Network) Evaluate(x, y *mat.Dense) (float64, error) {
	if err := that.checkSet(x, y); err != nil {
		return 0, err
	}

	rows, _ := x.Dims()
	if rows == 0 {
		return 0, nil
	}

	predictions := make([][]float64, rows)
	responses := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		predictions[i] = that.neural.Predict(x.RawRowView(i))
		responses[i] = y.RawRowView(i)
	}

	return deep.GetLoss(deep.LossMeanSquared).F(predictions, responses), nil
}

// CloneWeightsFrom copies the trainable parameters of other, which must have the same layout.
func (that *Network) CloneWeightsFrom(other *Network) error {
	if !sameLayout(that.sizes, other.sizes) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, that.sizes, other.sizes)
	}

	that.neural.ApplyWeights(other.neural.Weights())

	return nil
}

func sameLayout(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func (that *Network) checkSet(x, y *mat.Dense) error {
	xr, xc := x.Dims()
	yr, yc := y.Dims()

	switch {
	case xc != that.InputSize():
		return fmt.Errorf("%w: x has %d columns, want %d", ErrShapeMismatch, xc, that.InputSize())
	case yc != that.OutputSize():
		return fmt.Errorf("%w: y has %d columns, want %d", ErrShapeMismatch, yc, that.OutputSize())
	case xr != yr:
		return fmt.Errorf("%w: x has %d rows, y has %d", ErrShapeMismatch, xr, yr)
	}

	return nil
}

func examples(x, y *mat.Dense) training.Examples {
	rows, _ := x.Dims()

	set := make(training.Examples, rows)
	for i := 0; i < rows; i++ {
		set[i] = training.Example{
			Input:    mat.Row(nil, i, x),
			Response: mat.Row(nil, i, y),
		}
	}

	return set
}
