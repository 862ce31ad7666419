package application

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rl/internal/config"
)

func testRoot(t *testing.T, yml string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml = strings.ReplaceAll(yml, "$DIR", dir)
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	root := NewRootCommand(config.MustLoad, func(*config.Config) *slog.Logger {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.Execute()
	return out.String(), err
}

const baseConfig = `
q-values-file: $DIR/qvalues.txt
model-file: $DIR/model.json
sqlite-storage-path: $DIR/outcomes.db
training:
  episodes: 50
  log-every: 10
actor-critic:
  hidden-layers: [12]
  min-memories: 10
  train-every: 5
`

func TestTrainAndEvaluate(t *testing.T) {
	t.Run("Train writes q values that evaluate can use", func(t *testing.T) {
		// Given: a config pointing every file at a temp dir
		dir := t.TempDir()
		yml := strings.ReplaceAll(baseConfig, "$DIR", dir)

		// When: training and evaluation run one after the other
		out, err := testRoot(t, yml, "train", "--episodes", "100")
		require.NoError(t, err)
		assert.Contains(t, out, "episodes: 100")
		assert.FileExists(t, filepath.Join(dir, "qvalues.txt"))

		out, err = testRoot(t, yml, "evaluate")

		// Then: the evaluation tallies the configured number of games
		require.NoError(t, err)
		assert.Contains(t, out, "episodes: 50")
	})

	t.Run("Evaluate without learned values fails", func(t *testing.T) {
		// When:
		_, err := testRoot(t, baseConfig, "evaluate")

		// Then:
		require.Error(t, err)
	})

	t.Run("Unknown explorer is rejected", func(t *testing.T) {
		// When:
		_, err := testRoot(t, baseConfig, "train", "--explorer", "psychic")

		// Then:
		require.Error(t, err)
	})
}

func TestTrainProfiles(t *testing.T) {
	t.Run("Learns from a profile file", func(t *testing.T) {
		// Given:
		dir := t.TempDir()
		profiles := filepath.Join(dir, "profiles.txt")
		require.NoError(t, os.WriteFile(profiles, []byte("# x wins\n1:1~-1:4~1:2~-1:5~1:3~\n\n-1:5~1:1~\n"), 0o600))

		// When:
		out, err := testRoot(t, baseConfig, "train-profiles", profiles, "--seed", "7")

		// Then:
		require.NoError(t, err)
		assert.Contains(t, out, "profiles: 2")
	})

	t.Run("Broken profile is reported with its line", func(t *testing.T) {
		// Given:
		dir := t.TempDir()
		profiles := filepath.Join(dir, "profiles.txt")
		require.NoError(t, os.WriteFile(profiles, []byte("1:1~\n1:x~\n"), 0o600))

		// When:
		_, err := testRoot(t, baseConfig, "train-profiles", profiles)

		// Then:
		require.ErrorContains(t, err, "line 2")
	})
}

func TestPlay(t *testing.T) {
	t.Run("No input abandons the game", func(t *testing.T) {
		// Given: learned values from a short training run
		dir := t.TempDir()
		yml := strings.ReplaceAll(baseConfig, "$DIR", dir)
		_, err := testRoot(t, yml, "train")
		require.NoError(t, err)

		// When: the human never answers
		out, err := testRoot(t, yml, "play", "--human-first")

		// Then:
		require.NoError(t, err)
		assert.Contains(t, out, "Game abandoned.")
	})
}

func TestGridWorld(t *testing.T) {
	t.Run("Reports episodes and the route", func(t *testing.T) {
		// When:
		out, err := testRoot(t, baseConfig, "gridworld", "--episodes", "30")

		// Then:
		require.NoError(t, err)
		assert.Contains(t, out, "episodes: 30")
		assert.Contains(t, out, "greedy route:")
	})
}

func TestActorCritic(t *testing.T) {
	t.Run("Trains and saves the model", func(t *testing.T) {
		// Given:
		dir := t.TempDir()
		yml := strings.ReplaceAll(baseConfig, "$DIR", dir)

		// When:
		out, err := testRoot(t, yml, "actor-critic", "--episodes", "40")

		// Then:
		require.NoError(t, err)
		assert.Contains(t, out, "critic loss:")
		assert.FileExists(t, filepath.Join(dir, "model.json"))
	})
}
