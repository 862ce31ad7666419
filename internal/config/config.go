package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Seed              uint64      `yaml:"seed" env:"SEED" env-default:"1"`
	QValuesFile       string      `yaml:"q-values-file" env:"Q_VALUES_FILE" env-default:"qvalues.txt"`
	ModelFile         string      `yaml:"model-file" env:"MODEL_FILE" env-default:"model.json"`
	SQLiteStoragePath string      `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:""`
	Learning          Learning    `yaml:"learning"`
	Exploration       Exploration `yaml:"exploration"`
	Rewards           Rewards     `yaml:"rewards"`
	Training          Training    `yaml:"training"`
	ActorCritic       ActorCritic `yaml:"actor-critic"`
	GridWorld         GridWorld   `yaml:"grid-world"`
	Redis             Redis       `yaml:"redis"`
}

type Learning struct {
	LearningRate      float64 `yaml:"learning-rate" env-default:"0.05"`
	LearningRateDecay float64 `yaml:"learning-rate-decay" env-default:"0.001"`
	Gamma             float64 `yaml:"gamma" env-default:"0.8"`
}

type Exploration struct {
	Epsilon       float64 `yaml:"epsilon" env-default:"0.8"`
	Decay         float64 `yaml:"decay" env-default:"0"`
	Minimum       float64 `yaml:"minimum" env-default:"0"`
	InformedRatio float64 `yaml:"informed-ratio" env-default:"0.2"`
	Temperature   float64 `yaml:"temperature" env-default:"1"`
}

type Rewards struct {
	Play float64 `yaml:"play" env-default:"0"`
	Win  float64 `yaml:"win" env-default:"100"`
	Loss float64 `yaml:"loss" env-default:"-200"`
	Draw float64 `yaml:"draw" env-default:"200"`
}

type Training struct {
	Episodes int `yaml:"episodes" env:"EPISODES" env-default:"10000"`
	LogEvery int `yaml:"log-every" env-default:"1000"`
	MaxSteps int `yaml:"max-steps" env-default:"100"`
}

type ActorCritic struct {
	MemorySize        int     `yaml:"memory-size" env-default:"1000"`
	MinMemories       int     `yaml:"min-memories" env-default:"100"`
	BatchSize         int     `yaml:"batch-size" env-default:"32"`
	TrainEvery        int     `yaml:"train-every" env-default:"50"`
	UpdateEvery       int     `yaml:"update-every" env-default:"5"`
	Epochs            int     `yaml:"epochs" env-default:"1"`
	HiddenLayers      []int   `yaml:"hidden-layers" env-default:"50,100,50"`
	OptimizerRate     float64 `yaml:"optimizer-rate" env-default:"0.001"`
	LearningRate      float64 `yaml:"learning-rate" env-default:"1"`
	LearningRateDecay float64 `yaml:"learning-rate-decay" env-default:"0.02"`
	Gamma             float64 `yaml:"gamma" env-default:"0.8"`
	Epsilon           float64 `yaml:"epsilon" env-default:"0.8"`
}

type GridWorld struct {
	Map      []string `yaml:"map"`
	StartRow int      `yaml:"start-row" env-default:"3"`
	StartCol int      `yaml:"start-col" env-default:"0"`
	Respawn  string   `yaml:"respawn" env-default:"default"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Table   string `yaml:"table" env-default:"tictactoe"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path, or only the environment and defaults when path is empty.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Cells turns the map rows into rewards. Each character is one cell:
// '.' step, ' ' or '_' free, 'F' fire, 'G' goal, '#' blocked.
func (that *GridWorld) Cells(step, free, fire, goal, blocked float64) ([][]float64, error) {
	rows := that.Map
	if len(rows) == 0 {
		rows = DefaultGridMap()
	}

	cells := make([][]float64, len(rows))
	for r, row := range rows {
		for c, ch := range strings.TrimRight(row, "\r") {
			switch ch {
			case '.':
				cells[r] = append(cells[r], step)
			case ' ', '_':
				cells[r] = append(cells[r], free)
			case 'F', 'f':
				cells[r] = append(cells[r], fire)
			case 'G', 'g':
				cells[r] = append(cells[r], goal)
			case '#':
				cells[r] = append(cells[r], blocked)
			default:
				return nil, fmt.Errorf("grid map row %d col %d: unknown cell %q", r, c, ch)
			}
		}
	}

	return cells, nil
}

func DefaultGridMap() []string {
	return []string{
		".FG..",
		".##..",
		".###.",
		".....",
	}
}
