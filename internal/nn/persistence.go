package nn

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	deep "github.com/patrikeh/go-deep"
)

type snapshot struct {
	LearningRate float64
	Network      *deep.Dump
}

// Save writes the layer layout and weights as JSON. Optimizer state is not kept.
func (that *Network) Save(w io.Writer) error {
	snap := snapshot{
		LearningRate: that.learningRate,
		Network:      that.neural.Dump(),
	}

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}

	return nil
}

// Load reads a network written by Save.
func Load(r io.Reader, opts ...Option) (*Network, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}
	if snap.Network == nil || snap.Network.Config == nil {
		return nil, fmt.Errorf("%w: snapshot has no network", ErrShapeMismatch)
	}

	sizes := append([]int{snap.Network.Config.Inputs}, snap.Network.Config.Layout...)
	opts = append([]Option{WithLearningRate(snap.LearningRate)}, opts...)

	n, err := New(sizes, opts...)
	if err != nil {
		return nil, err
	}

	if err := sameShape(n.neural.Weights(), snap.Network.Weights); err != nil {
		return nil, err
	}
	n.neural.ApplyWeights(snap.Network.Weights)

	return n, nil
}

func sameShape(want, got [][][]float64) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: snapshot has %d layers, want %d", ErrShapeMismatch, len(got), len(want))
	}
	for l := range want {
		if len(want[l]) != len(got[l]) {
			return fmt.Errorf("%w: layer %d has %d units, want %d", ErrShapeMismatch, l, len(got[l]), len(want[l]))
		}
		for u := range want[l] {
			if len(want[l][u]) != len(got[l][u]) {
				return fmt.Errorf("%w: layer %d unit %d has %d weights, want %d",
					ErrShapeMismatch, l, u, len(got[l][u]), len(want[l][u]))
			}
		}
	}

	return nil
}

func (that *Network) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := that.Save(file); err != nil {
		return err
	}

	return file.Sync()
}

func LoadFile(path string, opts ...Option) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Load(file, opts...)
}
