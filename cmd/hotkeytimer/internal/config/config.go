// Package config holds the persisted timer settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

// FileName is the settings file created next to the executable.
const FileName = "timer_config.toml"

// DefaultMatch is the window title fragment automation looks for.
const DefaultMatch = "MapleRoyals"

var (
	// ErrNotFound means no settings have been saved yet. It is not a failure.
	ErrNotFound = errors.New("config: no saved settings")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid settings")
)

// Config is the user's timer setup.
type Config struct {
	TriggerKey          string `toml:"trigger_key"`
	StopKey             string `toml:"stop_key"`
	CountdownSeconds    int    `toml:"countdown_seconds"`
	RandomOffsetSeconds int    `toml:"random_offset_seconds"`
	AutoClickWindows    bool   `toml:"auto_click_windows"`
	// SelectedWindowTitles restricts automation to these titles. Absent means all windows.
	SelectedWindowTitles []string `toml:"selected_window_titles,omitempty"`
}

// Default returns the settings used before the user has configured anything.
func Default() Config {
	return Config{
		TriggerKey:       "pageup",
		StopKey:          "pagedown",
		CountdownSeconds: 130,
	}
}

// Countdown is the base countdown length.
func (c Config) Countdown() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

// Selection converts the persisted titles into a window selection.
func (c Config) Selection() windows.Selection {
	if c.SelectedWindowTitles == nil {
		return windows.All()
	}
	return windows.Subset(c.SelectedWindowTitles...)
}

// WithSelection returns a copy of c restricted to sel.
func (c Config) WithSelection(sel windows.Selection) Config {
	c.SelectedWindowTitles = sel.Titles()
	return c
}

// Validate reports the first rule c breaks, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.TriggerKey) == "":
		return fmt.Errorf("%w: trigger key is empty", ErrInvalid)
	case strings.TrimSpace(c.StopKey) == "":
		return fmt.Errorf("%w: stop key is empty", ErrInvalid)
	case strings.EqualFold(c.TriggerKey, c.StopKey):
		return fmt.Errorf("%w: trigger and stop keys cannot be the same", ErrInvalid)
	case c.CountdownSeconds <= 0:
		return fmt.Errorf("%w: countdown must be positive, got %d", ErrInvalid, c.CountdownSeconds)
	case c.RandomOffsetSeconds < 0:
		return fmt.Errorf("%w: random offset cannot be negative, got %d", ErrInvalid, c.RandomOffsetSeconds)
	case c.RandomOffsetSeconds >= c.CountdownSeconds:
		return fmt.Errorf("%w: random offset (%d) must be less than countdown (%d)", ErrInvalid, c.RandomOffsetSeconds, c.CountdownSeconds)
	}
	return nil
}

// Equal reports whether c and o describe the same settings.
func (c Config) Equal(o Config) bool {
	return c.TriggerKey == o.TriggerKey &&
		c.StopKey == o.StopKey &&
		c.CountdownSeconds == o.CountdownSeconds &&
		c.RandomOffsetSeconds == o.RandomOffsetSeconds &&
		c.AutoClickWindows == o.AutoClickWindows &&
		(c.SelectedWindowTitles == nil) == (o.SelectedWindowTitles == nil) &&
		slices.Equal(c.SelectedWindowTitles, o.SelectedWindowTitles)
}

func (c Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trigger key: %s\n", c.TriggerKey)
	fmt.Fprintf(&sb, "Stop key: %s\n", c.StopKey)
	fmt.Fprintf(&sb, "Countdown: %ds\n", c.CountdownSeconds)
	if c.RandomOffsetSeconds > 0 {
		fmt.Fprintf(&sb, "Random offset: ±%ds\n", c.RandomOffsetSeconds)
	} else {
		sb.WriteString("Random offset: none\n")
	}
	if !c.AutoClickWindows {
		sb.WriteString("Auto-click: disabled")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Auto-click: %s", c.Selection())
	return sb.String()
}

// DefaultPath places the settings file next to the executable, or in the working
// directory when running from a `go run` build cache.
func DefaultPath() string {
	exe, err := os.Executable()
	if err == nil && !isTempBuild(exe) {
		return filepath.Join(filepath.Dir(exe), FileName)
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, FileName)
	}
	return FileName
}

func isTempBuild(exe string) bool {
	tmp := filepath.Clean(os.TempDir())
	return strings.HasPrefix(filepath.Clean(exe), tmp+string(filepath.Separator)) ||
		strings.Contains(exe, "go-build")
}
