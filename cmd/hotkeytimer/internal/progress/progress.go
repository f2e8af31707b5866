// Package progress renders the live countdown bar while a session runs.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

const (
	// BarWidth is the number of cells in the rendered bar.
	BarWidth = 30
	// Interval is how often the reporter samples the session.
	Interval = 500 * time.Millisecond
)

// Source exposes the active session. ok is false while no session is armed.
type Source interface {
	Active() (start time.Time, total time.Duration, ok bool)
}

// Snapshot is one sample of a running countdown.
type Snapshot struct {
	Elapsed   time.Duration
	Remaining time.Duration
	Fraction  float64
}

// Measure samples a countdown of length total started at start. Fraction never
// decreases as now advances and clamps at 1; Remaining clamps at 0.
func Measure(start, now time.Time, total time.Duration) Snapshot {
	elapsed := max(now.Sub(start), 0)
	if total <= 0 {
		return Snapshot{Elapsed: elapsed, Fraction: 1}
	}
	return Snapshot{
		Elapsed:   elapsed,
		Remaining: max(total-elapsed, 0),
		Fraction:  min(1, float64(elapsed)/float64(total)),
	}
}

// FormatRemaining renders d as zero-padded MM:SS. Minutes are not wrapped at 60.
func FormatRemaining(d time.Duration) string {
	secs := int(max(d, 0) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ColorProfile is the colour support of w: plain ASCII unless w is a terminal, with
// NO_COLOR and CLICOLOR_FORCE honoured.
func ColorProfile(w io.Writer) termenv.Profile {
	return termenv.NewOutput(w).EnvColorProfile()
}

// NewBar returns the bar model used to draw countdowns.
func NewBar(profile termenv.Profile) progress.Model {
	return progress.New(
		progress.WithWidth(BarWidth),
		progress.WithoutPercentage(),
		progress.WithFillCharacters('█', '░'),
		progress.WithSolidFill("#04B575"),
		progress.WithColorProfile(profile),
	)
}

// Line renders one overwriting progress line for snap.
func Line(bar progress.Model, snap Snapshot) string {
	return fmt.Sprintf("\r[%s] %5.1f%% | %s remaining", bar.ViewAs(snap.Fraction), snap.Fraction*100, FormatRemaining(snap.Remaining))
}

// Options configures a Reporter.
type Options struct {
	Out      io.Writer
	Logger   *log.Logger
	Now      func() time.Time
	Interval time.Duration
}

// Reporter is a background loop that redraws the countdown until stopped.
type Reporter struct {
	src      Source
	out      io.Writer
	lg       *log.Logger
	now      func() time.Time
	interval time.Duration
	bar      progress.Model

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches a Reporter over src.
func Start(src Source, opts Options) *Reporter {
	r := &Reporter{
		src:      src,
		out:      opts.Out,
		lg:       opts.Logger,
		now:      opts.Now,
		interval: opts.Interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.lg == nil {
		r.lg = log.New(io.Discard)
	}
	r.bar = NewBar(ColorProfile(r.out))
	if r.now == nil {
		r.now = time.Now
	}
	if r.interval <= 0 {
		r.interval = Interval
	}

	go r.loop()
	return r
}

// Stop asks the loop to exit. It is safe to call more than once.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Wait blocks until the loop has exited or timeout passes, and reports whether it exited.
func (r *Reporter) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-r.done:
		return true
	case <-t.C:
		return false
	}
}

func (r *Reporter) loop() {
	defer close(r.done)

	tick := time.NewTicker(r.interval)
	defer tick.Stop()

	drawn := false
	for {
		select {
		case <-r.stop:
			if drawn {
				fmt.Fprintln(r.out)
			}
			return
		default:
		}

		if r.draw() {
			drawn = true
		}

		select {
		case <-r.stop:
		case <-tick.C:
		}
	}
}

func (r *Reporter) draw() (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.lg.Error("PANIC in progress reporter", "panic", p)
			ok = false
		}
	}()

	start, total, active := r.src.Active()
	if !active {
		return false
	}
	fmt.Fprint(r.out, Line(r.bar, Measure(start, r.now(), total)))
	return true
}
