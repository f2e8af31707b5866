package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// Store reads and writes a Config at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path is where the settings live.
func (s *Store) Path() string { return s.path }

// Load reads the saved settings. A missing file yields ErrNotFound; a malformed one a
// decode error that is never ErrNotFound. Keys absent from the file keep their defaults.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, ErrNotFound
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", s.path, err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", s.path, err)
	}
	// an explicit empty list selects nothing, which automation treats as every window
	if md.IsDefined("selected_window_titles") && len(cfg.SelectedWindowTitles) == 0 {
		cfg.SelectedWindowTitles = nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", s.path, err)
	}
	return cfg, nil
}

// Save validates cfg and atomically replaces the settings file.
func (s *Store) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("config: write %s: %w", s.path, err)
	}
	return nil
}
