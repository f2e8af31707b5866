// Package setup walks the user through choosing keys, countdown and automation targets.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/config"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/keys"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("setup cancelled")

// AllWindows is the answer that selects every matching window.
const AllWindows = "/all"

// Question is one prompt.
type Question struct {
	Title    string
	Help     string
	Default  string
	Validate func(string) error
}

// Prompter asks the user things. Implementations return ErrCancelled on abort.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, title string, def bool) (bool, error)
}

// Wizard runs the interactive flows.
type Wizard struct {
	Prompter Prompter
	Out      io.Writer
	// Windows lists the titles of matching windows that are open right now.
	Windows func(ctx context.Context) ([]string, error)
	Match   string
}

func (w Wizard) out() io.Writer {
	if w.Out == nil {
		return io.Discard
	}
	return w.Out
}

// Run asks for every setting, starting from cur.
func (w Wizard) Run(ctx context.Context, cur config.Config) (config.Config, error) {
	next := cur

	trigger, err := w.Prompter.Ask(ctx, Question{
		Title:    "Trigger key",
		Help:     "Starts or restarts the countdown, e.g. pageup or f5",
		Default:  cur.TriggerKey,
		Validate: ValidateKey,
	})
	if err != nil {
		return cur, err
	}
	next.TriggerKey = keys.Normalize(trigger)

	stop, err := w.Prompter.Ask(ctx, Question{
		Title:   "Stop key",
		Help:    "Cancels the running countdown",
		Default: cur.StopKey,
		Validate: func(s string) error {
			return ValidateKeys(next.TriggerKey, s)
		},
	})
	if err != nil {
		return cur, err
	}
	next.StopKey = keys.Normalize(stop)

	if next, err = w.askTiming(ctx, next); err != nil {
		return cur, err
	}
	if next, err = w.askWindows(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

// AdjustCountdown only changes the countdown and, if it no longer fits, the offset.
func (w Wizard) AdjustCountdown(ctx context.Context, cur config.Config) (config.Config, error) {
	return w.askTiming(ctx, cur)
}

// Reconfigure offers the post-expiry menu.
func (w Wizard) Reconfigure(ctx context.Context, cur config.Config) (config.Config, error) {
	fmt.Fprintln(w.out(), "1) Adjust countdown")
	fmt.Fprintln(w.out(), "2) Full reconfigure")
	fmt.Fprintln(w.out(), "3) Restart now")

	choice, err := w.Prompter.Ask(ctx, Question{
		Title:   "Choice",
		Default: "3",
		Validate: func(s string) error {
			switch strings.TrimSpace(s) {
			case "1", "2", "3":
				return nil
			}
			return errors.New("enter 1, 2 or 3")
		},
	})
	if err != nil {
		return cur, err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return w.AdjustCountdown(ctx, cur)
	case "2":
		return w.Run(ctx, cur)
	}
	return cur, nil
}

func (w Wizard) askTiming(ctx context.Context, cur config.Config) (config.Config, error) {
	next := cur

	cd, err := w.Prompter.Ask(ctx, Question{
		Title:   "Countdown seconds",
		Default: strconv.Itoa(cur.CountdownSeconds),
		Validate: func(s string) error {
			_, err := ParseCountdown(s)
			return err
		},
	})
	if err != nil {
		return cur, err
	}
	next.CountdownSeconds, _ = ParseCountdown(cd)

	offDefault := cur.RandomOffsetSeconds
	if offDefault >= next.CountdownSeconds {
		offDefault = 0
	}
	off, err := w.Prompter.Ask(ctx, Question{
		Title:   "Random offset seconds",
		Help:    fmt.Sprintf("Each countdown varies by up to this much; 0 disables it (must be below %d)", next.CountdownSeconds),
		Default: strconv.Itoa(offDefault),
		Validate: func(s string) error {
			_, err := ParseOffset(s, next.CountdownSeconds)
			return err
		},
	})
	if err != nil {
		return cur, err
	}
	next.RandomOffsetSeconds, _ = ParseOffset(off, next.CountdownSeconds)
	return next, nil
}

func (w Wizard) askWindows(ctx context.Context, cur config.Config) (config.Config, error) {
	next := cur

	var titles []string
	if w.Windows != nil {
		found, err := w.Windows(ctx)
		if err != nil {
			fmt.Fprintf(w.out(), "Window automation unavailable: %v\n", err)
			next.AutoClickWindows = false
			next.SelectedWindowTitles = nil
			return next, nil
		}
		titles = found
	}

	match := w.Match
	if match == "" {
		match = config.DefaultMatch
	}
	if len(titles) == 0 {
		fmt.Fprintf(w.out(), "No %s windows are open right now.\n", match)
	} else {
		fmt.Fprintf(w.out(), "Open %s windows:\n", match)
		for i, t := range titles {
			fmt.Fprintf(w.out(), "  %d. %s\n", i+1, t)
		}
	}

	def := ""
	if cur.AutoClickWindows {
		def = AllWindows
		if cur.SelectedWindowTitles != nil {
			def = indicesOf(cur.SelectedWindowTitles, titles)
			if missing := absent(cur.SelectedWindowTitles, titles); len(missing) > 0 {
				fmt.Fprintf(w.out(), "Saved windows not open right now: %s\n", strings.Join(missing, ", "))
			}
		}
	}
	answer, err := w.Prompter.Ask(ctx, Question{
		Title:   "Auto-click windows on expiry",
		Help:    "Window numbers like 1,3, " + AllWindows + " for every window, or empty to disable",
		Default: def,
		Validate: func(s string) error {
			_, _, err := ParseSelection(s, titles)
			return err
		},
	})
	if err != nil {
		return cur, err
	}

	sel, enabled, _ := ParseSelection(answer, titles)
	next.AutoClickWindows = enabled
	next.SelectedWindowTitles = nil
	if enabled {
		next = next.WithSelection(sel)
	}
	return next, nil
}

// indicesOf renders the 1-based positions of selected in titles. It is empty when none
// of them are open.
func indicesOf(selected, titles []string) string {
	var idx []string
	for _, s := range selected {
		for i, t := range titles {
			if t == s {
				idx = append(idx, strconv.Itoa(i+1))
				break
			}
		}
	}
	return strings.Join(idx, ",")
}

func absent(selected, titles []string) []string {
	var out []string
	for _, s := range selected {
		if !slices.Contains(titles, s) {
			out = append(out, s)
		}
	}
	return out
}

// ValidateKey accepts any supported key name.
func ValidateKey(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("key name is required")
	}
	if !keys.Known(name) {
		return fmt.Errorf("unknown key %q", name)
	}
	if keys.Normalize(name) == keys.Interrupt {
		return fmt.Errorf("%s is reserved for the settings menu", keys.Interrupt)
	}
	return nil
}

// ValidateKeys checks the stop key against the trigger key.
func ValidateKeys(trigger, stop string) error {
	if err := ValidateKey(stop); err != nil {
		return err
	}
	if keys.Normalize(trigger) == keys.Normalize(stop) {
		return errors.New("trigger and stop keys cannot be the same")
	}
	return nil
}

// ParseCountdown reads a positive whole number of seconds.
func ParseCountdown(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number of seconds", s)
	}
	if n <= 0 {
		return 0, errors.New("countdown must be positive")
	}
	return n, nil
}

// ParseOffset reads the random offset; empty means none. It must stay below countdown.
func ParseOffset(s string, countdown int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number of seconds", s)
	}
	if n < 0 {
		return 0, errors.New("offset cannot be negative")
	}
	if n >= countdown {
		return 0, fmt.Errorf("offset must be less than countdown (%d)", countdown)
	}
	return n, nil
}

// ParseSelection interprets the window answer against the listed titles. Empty
// disables automation, AllWindows selects everything, and comma separated 1-based
// indices pick a subset.
func ParseSelection(s string, titles []string) (windows.Selection, bool, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return windows.Selection{}, false, nil
	case strings.EqualFold(s, AllWindows):
		return windows.All(), true, nil
	}

	var picked []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return windows.Selection{}, false, fmt.Errorf("%q is not a window number", part)
		}
		if i < 1 || i > len(titles) {
			return windows.Selection{}, false, fmt.Errorf("window %d is not in the list", i)
		}
		picked = append(picked, titles[i-1])
	}
	if len(picked) == 0 {
		return windows.Selection{}, false, errors.New("no windows selected")
	}
	return windows.Subset(picked...), true, nil
}
