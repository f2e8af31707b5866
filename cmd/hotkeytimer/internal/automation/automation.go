// Package automation clicks through the resolved windows with humanized pacing and
// sends each one the trigger keystroke.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/delay"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/metrics"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

const (
	clickSpread   = 0.3
	minMove       = 0.3
	maxMove       = 0.8
	minReaction   = 0.05
	maxReaction   = 0.15
	defaultSettle = 100 * time.Millisecond
	reasonLimit   = 60
)

var errMinimized = errors.New("window is minimized")

// Input is the pointer and keyboard the sequencer drives.
type Input interface {
	// MoveTo glides the pointer to (x, y) over roughly d.
	MoveTo(ctx context.Context, x, y int, d time.Duration) error
	Click() error
	KeyTap(key string) error
	// Activate focuses (and restores) the window with the given handle.
	Activate(handle int) error
}

// Outcome is what happened to one target.
type Outcome int

const (
	// Clicked means the window was focused by a pointer click.
	Clicked Outcome = iota
	// Activated means clicking failed and the window was focused directly.
	Activated
	// Attempted means neither focus method worked but the keystroke was still sent.
	Attempted
	// Skipped means the target raised an error and was abandoned.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Clicked:
		return "clicked"
	case Activated:
		return "activated"
	case Attempted:
		return "attempted"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result records one target's outcome.
type Result struct {
	Target  windows.Target
	Outcome Outcome
	Reason  string
}

// Summary is the inspectable result of one automation run.
type Summary struct {
	Results  []Result
	NotFound []string
	// Err is set when the window list itself could not be read.
	Err error
}

// Processed counts targets the run visited.
func (s Summary) Processed() int { return len(s.Results) }

// Skipped counts targets abandoned because of an error.
func (s Summary) Skipped() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == Skipped {
			n++
		}
	}
	return n
}

// Succeeded counts targets that received the keystroke.
func (s Summary) Succeeded() int { return s.Processed() - s.Skipped() }

func (s Summary) String() string {
	return fmt.Sprintf("%d processed (%d succeeded, %d skipped)", s.Processed(), s.Succeeded(), s.Skipped())
}

// Options tunes a Sequencer. Zero values pick sensible defaults.
type Options struct {
	Rand   delay.Rand
	Out    io.Writer
	Logger *log.Logger
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
	// Match names the automated application in messages.
	Match string
	// Budget is the total pause, in seconds, spread between targets.
	Budget float64
	Settle time.Duration
}

// Sequencer runs the per-window action loop.
type Sequencer struct {
	src    windows.Source
	in     Input
	rand   delay.Rand
	out    io.Writer
	lg     *log.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	match  string
	budget float64
	settle time.Duration
}

// New builds a Sequencer over src and in.
func New(src windows.Source, in Input, opts Options) *Sequencer {
	s := &Sequencer{
		src:    src,
		in:     in,
		rand:   opts.Rand,
		out:    opts.Out,
		lg:     opts.Logger,
		sleep:  opts.Sleep,
		match:  opts.Match,
		budget: opts.Budget,
		settle: opts.Settle,
	}
	if s.rand == nil {
		s.rand = delay.Default()
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.lg == nil {
		s.lg = log.New(io.Discard)
	}
	if s.sleep == nil {
		s.sleep = Sleep
	}
	if s.match == "" {
		s.match = "matching"
	}
	if s.budget <= 0 {
		s.budget = delay.DefaultTotal
	}
	if s.settle <= 0 {
		s.settle = defaultSettle
	}
	return s
}

// Run resolves the targets selected by sel and focuses each one in random order before
// tapping key. Per-target failures are recorded in the Summary and never stop the run.
func (s *Sequencer) Run(ctx context.Context, sel windows.Selection, key string) Summary {
	var sum Summary

	candidates, err := s.enumerate(ctx)
	if err != nil {
		sum.Err = err
		s.lg.Error("can't enumerate windows", "err", err)
		fmt.Fprintf(s.out, "Auto-click failed: %s\n", truncate(err.Error(), reasonLimit))
		return sum
	}

	res := windows.Resolve(candidates, sel)
	sum.NotFound = res.NotFound
	if len(res.NotFound) > 0 {
		fmt.Fprintf(s.out, "Not running: %s\n", strings.Join(res.NotFound, ", "))
	}
	if len(res.Targets) == 0 {
		fmt.Fprintf(s.out, "No %s windows found.\n", s.match)
		return sum
	}

	targets := append([]windows.Target(nil), res.Targets...)
	s.rand.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})
	plan := delay.NewPlan(s.rand, len(targets), s.budget)

	fmt.Fprintf(s.out, "Found %d %s window(s), clicking in random order...\n", len(targets), s.match)
	s.lg.Info("automation started", "targets", len(targets), "selection", sel.String(), "pacing", plan.Total())

	for i, t := range targets {
		if ctx.Err() != nil {
			s.lg.Warn("automation interrupted by shutdown", "remaining", len(targets)-i)
			break
		}

		r := s.process(ctx, t, key)
		sum.Results = append(sum.Results, r)
		metrics.TargetProcessed(r.Outcome.String())

		if r.Outcome == Skipped {
			fmt.Fprintf(s.out, "  [%d/%d] %s -> skipped: %s\n", i+1, len(targets), t.Title, r.Reason)
		} else {
			fmt.Fprintf(s.out, "  [%d/%d] %s -> %s\n", i+1, len(targets), t.Title, r.Outcome)
		}

		if i < len(targets)-1 {
			if err := s.sleep(ctx, plan[i]); err != nil {
				s.lg.Debug("pause cut short", "err", err)
			}
		}
	}

	fmt.Fprintf(s.out, "Auto-click completed: %s\n", sum)
	s.lg.Info("automation finished", "processed", sum.Processed(), "succeeded", sum.Succeeded(), "skipped", sum.Skipped())
	return sum
}

func (s *Sequencer) enumerate(ctx context.Context) (ws []windows.Window, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enumerate windows: %v", r)
		}
	}()
	return s.src.Windows(ctx)
}

func (s *Sequencer) process(ctx context.Context, t windows.Target, key string) (res Result) {
	res.Target = t
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = Skipped
			res.Reason = truncate(fmt.Sprint(r), reasonLimit)
			s.lg.Warn("PANIC while automating window", "target", t, "panic", r)
		}
	}()

	if err := s.interact(ctx, t); err != nil {
		s.lg.Debug("click failed, activating directly", "target", t, "err", err)
		if aerr := s.in.Activate(t.Handle); aerr != nil {
			s.lg.Warn("can't focus window, sending key anyway", "target", t, "err", aerr)
			res.Outcome = Attempted
		} else {
			res.Outcome = Activated
		}
	} else {
		res.Outcome = Clicked
	}

	if err := s.in.KeyTap(key); err != nil {
		res.Outcome = Skipped
		res.Reason = truncate(err.Error(), reasonLimit)
		s.lg.Warn("can't send key", "target", t, "key", key, "err", err)
	}
	return res
}

// interact moves to a jittered point inside the window, pauses like a person would
// and clicks.
func (s *Sequencer) interact(ctx context.Context, t windows.Target) error {
	if t.Minimized {
		return errMinimized
	}
	rect, err := t.Refresh()
	if err != nil {
		return err
	}

	cx, cy := rect.Center()
	x := cx + int(delay.Uniform(s.rand, -clickSpread, clickSpread)*float64(rect.Width))
	y := cy + int(delay.Uniform(s.rand, -clickSpread, clickSpread)*float64(rect.Height))
	move := delay.Seconds(delay.Uniform(s.rand, minMove, maxMove))

	if err := s.in.MoveTo(ctx, x, y, move); err != nil {
		return fmt.Errorf("move pointer: %w", err)
	}
	if err := s.sleep(ctx, delay.Seconds(delay.Uniform(s.rand, minReaction, maxReaction))); err != nil {
		return err
	}
	if err := s.in.Click(); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return s.sleep(ctx, s.settle)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
