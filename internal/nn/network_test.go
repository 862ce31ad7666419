package nn_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/rocketscienceinc/tictactoe-rl/internal/nn"
)

func newNetwork(t *testing.T, sizes ...int) *nn.Network {
	t.Helper()

	network, err := nn.New(sizes, nn.WithSource(rand.NewSource(7)), nn.WithLearningRate(0.01))
	require.NoError(t, err)

	return network
}

func TestNew(t *testing.T) {
	t.Run("rejects a single layer", func(t *testing.T) {
		// When:
		_, err := nn.New([]int{9})

		// Then:
		require.ErrorIs(t, err, nn.ErrInvalidLayers)
	})

	t.Run("rejects empty layers", func(t *testing.T) {
		// When:
		_, err := nn.New([]int{9, 0, 9})

		// Then:
		require.ErrorIs(t, err, nn.ErrInvalidLayers)
	})

	t.Run("reports its layout", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 9, 50, 100, 9)

		// Then:
		assert.Equal(t, []int{9, 50, 100, 9}, network.Sizes())
		assert.Equal(t, 9, network.InputSize())
		assert.Equal(t, 9, network.OutputSize())
	})
}

func TestPredict(t *testing.T) {
	t.Run("returns one value per output", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 3, 4, 2)

		// When:
		out, err := network.Predict([]float64{1, 0, -1})

		// Then:
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("rejects a wrong input size", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 3, 4, 2)

		// When:
		_, err := network.Predict([]float64{1, 0})

		// Then:
		require.ErrorIs(t, err, nn.ErrShapeMismatch)
	})
}

func TestTrain(t *testing.T) {
	t.Run("reduces loss on a linear target", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 2, 8, 1)
		src := rand.New(rand.NewSource(3))

		const rows = 64
		x := mat.NewDense(rows, 2, nil)
		y := mat.NewDense(rows, 1, nil)
		for i := 0; i < rows; i++ {
			a, b := src.Float64(), src.Float64()
			x.SetRow(i, []float64{a, b})
			y.Set(i, 0, 2*a-b)
		}

		before, err := network.Evaluate(x, y)
		require.NoError(t, err)

		// When:
		after, err := network.Train(x, y, 200)

		// Then:
		require.NoError(t, err)
		assert.Less(t, after, before)
		assert.Less(t, after, 0.05)
	})

	t.Run("rejects mismatched rows", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 2, 1)

		// When:
		_, err := network.Train(mat.NewDense(3, 2, nil), mat.NewDense(2, 1, nil), 1)

		// Then:
		require.ErrorIs(t, err, nn.ErrShapeMismatch)
	})
}

func TestCloneWeightsFrom(t *testing.T) {
	t.Run("copies predictions", func(t *testing.T) {
		// Given:
		source := newNetwork(t, 3, 5, 2)
		target, err := nn.New([]int{3, 5, 2}, nn.WithSource(rand.NewSource(99)))
		require.NoError(t, err)
		input := []float64{0.5, -1, 1}

		// When:
		require.NoError(t, target.CloneWeightsFrom(source))

		// Then:
		want, err := source.Predict(input)
		require.NoError(t, err)
		got, err := target.Predict(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("rejects a different layout", func(t *testing.T) {
		// Given:
		source := newNetwork(t, 3, 5, 2)
		target := newNetwork(t, 3, 4, 2)

		// When:
		err := target.CloneWeightsFrom(source)

		// Then:
		require.ErrorIs(t, err, nn.ErrShapeMismatch)
	})
}

func TestPersistence(t *testing.T) {
	t.Run("restores predictions from a buffer", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 9, 6, 9)
		input := []float64{1, 0, -1, 0, 1, 0, 0, 0, -1}
		var buf bytes.Buffer

		// When:
		require.NoError(t, network.Save(&buf))
		restored, err := nn.Load(&buf)

		// Then:
		require.NoError(t, err)
		want, err := network.Predict(input)
		require.NoError(t, err)
		got, err := restored.Predict(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, network.Sizes(), restored.Sizes())
	})

	t.Run("restores from a file", func(t *testing.T) {
		// Given:
		network := newNetwork(t, 2, 3, 1)
		path := filepath.Join(t.TempDir(), "actor.json")

		// When:
		require.NoError(t, network.SaveFile(path))
		restored, err := nn.LoadFile(path)

		// Then:
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1}, restored.Sizes())
	})

	t.Run("rejects weights that do not fit the layout", func(t *testing.T) {
		// Given:
		blob := `{"LearningRate":0.01,"Network":{"Config":{"Inputs":2,"Layout":[1],"Activation":3,"Mode":2,"Loss":3,"Bias":true},"Weights":[[[0.5]]]}}`

		// When:
		_, err := nn.Load(bytes.NewBufferString(blob))

		// Then:
		require.ErrorIs(t, err, nn.ErrShapeMismatch)
	})

	t.Run("fails on garbage", func(t *testing.T) {
		// When:
		_, err := nn.Load(bytes.NewBufferString("not a network"))

		// Then:
		require.Error(t, err)
	})
}
