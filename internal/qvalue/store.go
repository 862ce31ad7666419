// Package qvalue keeps per-state action value estimates and their flat text dump.
package qvalue

import (
	"math"
	"sort"
)

// Store maps a state key to one value estimate per action. NaN marks an action never valued.
type Store struct {
	numActions int
	values     map[string][]float64
}

func NewStore(numActions int) *Store {
	return &Store{
		numActions: numActions,
		values:     make(map[string][]float64),
	}
}

func (that *Store) NumActions() int {
	return that.numActions
}

// Get returns the values stored for key. The slice is owned by the store.
func (that *Store) Get(key string) ([]float64, bool) {
	values, ok := that.values[key]
	return values, ok
}

// Ensure returns the values for key, creating an all-unset vector on first visit.
func (that *Store) Ensure(key string) []float64 {
	values, ok := that.values[key]
	if !ok {
		values = Unset(that.numActions)
		that.values[key] = values
	}

	return values
}

// Set replaces the values of key with a copy of values.
func (that *Store) Set(key string, values []float64) {
	stored := Unset(that.numActions)
	copy(stored, values)
	that.values[key] = stored
}

func (that *Store) Len() int {
	return len(that.values)
}

// Keys returns the state keys in lexical order.
func (that *Store) Keys() []string {
	keys := make([]string, 0, len(that.values))
	for key := range that.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// Reset forgets everything learned.
func (that *Store) Reset() {
	that.values = make(map[string][]float64)
}

// Unset returns a vector of n NaN values.
func Unset(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}

func ZeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// BestOutcome is the largest set value when it is a gain, otherwise the smallest one.
// NaN when no value is set.
func BestOutcome(values []float64) float64 {
	best, worst, ok := bounds(values)
	if !ok {
		return math.NaN()
	}

	if best > 0 {
		return best
	}
	return worst
}

// Max is the largest set value, NaN when no value is set.
func Max(values []float64) float64 {
	best, _, ok := bounds(values)
	if !ok {
		return math.NaN()
	}
	return best
}

func bounds(values []float64) (float64, float64, bool) {
	best, worst := math.Inf(-1), math.Inf(1)
	found := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		found = true
		best = math.Max(best, v)
		worst = math.Min(worst, v)
	}

	return best, worst, found
}
