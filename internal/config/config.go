// Package config loads the build settings for the attack tables.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/hailam/wideboard/internal/attacks"
	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/magic"
)

// Config holds the table build settings.
type Config struct {
	BoardSize   int             `json:"board_size"`
	Sliders     attacks.Sliders `json:"sliders"`
	Seed        uint64          `json:"seed"`
	MaxEntries  int             `json:"max_entries"`
	MaxAttempts int             `json:"max_attempts"`
	Verify      bool            `json:"verify"`
	Workers     int             `json:"workers"`     // 0 = GOMAXPROCS
	StoreDir    string          `json:"store_dir"`   // empty = user cache dir
	UseStore    bool            `json:"use_store"`   // load stored multipliers as hints
}

// Default returns the default configuration: a 16x16 board with the backend
// chosen automatically.
func Default() *Config {
	return &Config{
		BoardSize:   board.StandardSize,
		Sliders:     attacks.SlidersAuto,
		Seed:        0x5eed,
		MaxEntries:  magic.DefaultMaxEntries,
		MaxAttempts: magic.DefaultMaxAttempts,
		Verify:      true,
	}
}

// Load reads a JSON config file. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate checks that every field is in range.
func (c *Config) Validate() error {
	if c.BoardSize < board.MinSize || c.BoardSize > board.MaxSize {
		return fmt.Errorf("board_size %d outside [%d, %d]", c.BoardSize, board.MinSize, board.MaxSize)
	}
	switch c.Sliders {
	case attacks.SlidersAuto, attacks.SlidersMagic, attacks.SlidersRays:
	default:
		return fmt.Errorf("invalid sliders mode %d", int(c.Sliders))
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// Geometry returns the board geometry for BoardSize.
func (c *Config) Geometry() (*board.Geometry, error) {
	return board.New(c.BoardSize)
}

// AttackOptions converts the config to attack table options.
func (c *Config) AttackOptions(log logr.Logger) attacks.Options {
	return attacks.Options{
		Sliders: c.Sliders,
		Magic: magic.Options{
			Seed:        c.Seed,
			MaxEntries:  c.MaxEntries,
			MaxAttempts: c.MaxAttempts,
		},
		Verify:  c.Verify,
		Workers: c.Workers,
		Log:     log,
	}
}
