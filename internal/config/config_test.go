package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/hailam/wideboard/internal/attacks"
	"github.com/hailam/wideboard/internal/magic"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.BoardSize != 16 || cfg.Sliders != attacks.SlidersAuto || !cfg.Verify {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	opts := cfg.AttackOptions(logr.Discard())
	if opts.Magic.MaxEntries != magic.DefaultMaxEntries || opts.Magic.Seed != cfg.Seed || opts.Verify != cfg.Verify {
		t.Errorf("AttackOptions = %+v", opts)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"board_size": 8, "sliders": "magic"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BoardSize != 8 || cfg.Sliders != attacks.SlidersMagic {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.MaxAttempts != magic.DefaultMaxAttempts || !cfg.Verify {
		t.Errorf("defaults lost: %+v", cfg)
	}

	g, err := cfg.Geometry()
	if err != nil || g.Size() != 8 {
		t.Fatalf("Geometry = %v, %v", g, err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Default()
	cfg.BoardSize = 10
	cfg.Sliders = attacks.SlidersRays
	cfg.StoreDir = "/tmp/magics"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sliders": "rays"`) {
		t.Errorf("sliders not written as text:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `{"board_size": `},
		{"small board", `{"board_size": 4}`},
		{"large board", `{"board_size": 17}`},
		{"sliders", `{"sliders": "fancy"}`},
		{"entries", `{"max_entries": -1}`},
		{"attempts", `{"max_attempts": -5}`},
		{"workers", `{"workers": -2}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%s) succeeded", tc.content)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
