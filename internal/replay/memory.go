// Package replay is a bounded transition buffer sampled to train function approximators.
package replay

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/rocketscienceinc/tictactoe-rl/internal/rl"
)

var ErrInvalidCapacity = errors.New("replay memory capacity must be positive")

// Memory keeps the most recent transitions up to its capacity, evicting the oldest first.
type Memory struct {
	entries  []rl.Transition
	capacity int
	start    int
	size     int
	src      rand.Source
}

// New creates a memory holding at most capacity transitions. A nil src uses the global source.
func New(capacity int, src rand.Source) (*Memory, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	return &Memory{
		entries:  make([]rl.Transition, capacity),
		capacity: capacity,
		src:      src,
	}, nil
}

func (that *Memory) Append(transition rl.Transition) {
	if that.size < that.capacity {
		that.entries[(that.start+that.size)%that.capacity] = transition
		that.size++
		return
	}

	that.entries[that.start] = transition
	that.start = (that.start + 1) % that.capacity
}

func (that *Memory) Len() int {
	return that.size
}

func (that *Memory) Capacity() int {
	return that.capacity
}

// All returns the retained transitions, oldest first.
func (that *Memory) All() []rl.Transition {
	all := make([]rl.Transition, that.size)
	for i := range all {
		all[i] = that.at(i)
	}

	return all
}

// Sample draws up to n distinct transitions uniformly at random.
func (that *Memory) Sample(n int) []rl.Transition {
	if n > that.size {
		n = that.size
	}
	if n <= 0 {
		return nil
	}

	idx := make([]int, n)
	sampleuv.WithoutReplacement(idx, that.size, that.src)

	batch := make([]rl.Transition, n)
	for i, j := range idx {
		batch[i] = that.at(j)
	}

	return batch
}

func (that *Memory) Clear() {
	that.entries = make([]rl.Transition, that.capacity)
	that.start = 0
	that.size = 0
}

func (that *Memory) at(i int) rl.Transition {
	return that.entries[(that.start+i)%that.capacity]
}
