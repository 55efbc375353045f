package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/sokoban-player/internal/logging"
	"github.com/ChuLiYu/sokoban-player/internal/playback"
	"github.com/ChuLiYu/sokoban-player/internal/solver"
	"github.com/ChuLiYu/sokoban-player/internal/watch"
	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// DefaultConfigPath is used when --config is not given
const DefaultConfigPath = "configs/default.yaml"

// Config represents the complete configuration file.
// Maps config file fields through YAML tags.
type Config struct {
	Solver struct {
		Executable       string        `yaml:"executable"`
		SearchDirs       []string      `yaml:"search_dirs" validate:"dive,required"`
		Timeout          time.Duration `yaml:"timeout" validate:"gte=0"`
		DefaultMap       string        `yaml:"default_map"`
		DefaultAlgorithm string        `yaml:"default_algorithm" validate:"required,algorithm"`
		DefaultMemoryMB  int           `yaml:"default_memory_mb" validate:"gt=0"`
		Env              []string      `yaml:"env" validate:"dive,contains=="`
	} `yaml:"solver"`

	Playback struct {
		Interval time.Duration `yaml:"interval" validate:"gt=0"`
	} `yaml:"playback"`

	Watch struct {
		Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
	} `yaml:"watch"`

	Storage struct {
		TracePath   string `yaml:"trace_path"`
		JournalPath string `yaml:"journal_path"`
		SyncJournal bool   `yaml:"sync_journal"`
	} `yaml:"storage"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port" validate:"gte=0,lte=65535"`
	} `yaml:"metrics"`

	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Solver.Executable = solver.DefaultExecutableName()
	cfg.Solver.DefaultMap = "automatic-sokoban-solver-master/box.txt"
	cfg.Solver.DefaultAlgorithm = "astar"
	cfg.Solver.DefaultMemoryMB = 100
	cfg.Playback.Interval = playback.DefaultInterval
	cfg.Watch.Debounce = watch.DefaultDebounce
	cfg.Storage.TracePath = ".sokoban/last_solution.json"
	cfg.Storage.JournalPath = ".sokoban/solves.wal"
	cfg.Metrics.Port = 9090
	cfg.Logging = logging.DefaultConfig()
	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		_, err := types.ParseAlgorithm(fl.Field().String())
		return err == nil
	})
	return v
}

// loadConfig reads path over the defaults. A missing file yields the
// defaults unchanged.
func loadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultRequest builds the request issued when no map is given on the
// command line.
func (c *Config) DefaultRequest() (types.SolveRequest, error) {
	algo, err := types.ParseAlgorithm(c.Solver.DefaultAlgorithm)
	if err != nil {
		return types.SolveRequest{}, err
	}
	return types.SolveRequest{
		MapPath:        c.Solver.DefaultMap,
		Algorithm:      algo,
		MemoryBudgetMB: c.Solver.DefaultMemoryMB,
	}, nil
}
