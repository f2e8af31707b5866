// Package timer owns the single hotkey countdown: arming, cancelling, expiry handling
// and auto-restart.
package timer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/automation"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/config"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/delay"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/metrics"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/progress"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

const (
	// DefaultGrace is how long the user has to interrupt after expiry.
	DefaultGrace = 5 * time.Second
	// DefaultJoin bounds how long arming waits for the old reporter to exit.
	DefaultJoin = time.Second
)

// State is the controller's lifecycle phase.
type State int

const (
	Idle State = iota
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is one armed countdown.
type Session struct {
	ID string
	// Base and Offset are the configured seconds; Applied is the drawn jitter.
	Base      int
	Offset    int
	Applied   int
	Actual    time.Duration
	StartedAt time.Time
}

// Describe renders the countdown the way it is announced, e.g. "133s (130s +3s)".
func (s Session) Describe() string {
	secs := int(s.Actual / time.Second)
	if s.Offset <= 0 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%ds (%ds %+ds)", secs, s.Base, s.Applied)
}

func (s Session) String() string {
	return fmt.Sprintf("%s/%s", s.ID[:min(8, len(s.ID))], s.Actual)
}

// Reporter is a running progress loop.
type Reporter interface {
	Stop()
	Wait(timeout time.Duration) bool
}

// Notifier alerts the user that the countdown finished.
type Notifier interface {
	Notify() error
}

// Automator runs the window automation sequence.
type Automator interface {
	Run(ctx context.Context, sel windows.Selection, key string) automation.Summary
}

// Store persists settings changed during reconfiguration.
type Store interface {
	Save(config.Config) error
	Path() string
}

// Reconfigurer asks the user for new settings after an interrupted expiry. Returning
// cur unchanged restarts with the same settings; an error keeps them too.
type Reconfigurer func(ctx context.Context, cur config.Config) (config.Config, error)

// Options wires a Controller to its collaborators. Zero values get defaults, except
// that a nil Automator means automation is unavailable on this system.
type Options struct {
	Context         context.Context
	Clock           Clock
	Rand            delay.Rand
	Out             io.Writer
	Logger          *log.Logger
	Notifier        Notifier
	Automator       Automator
	Store           Store
	Reconfigure     Reconfigurer
	OnConfigChanged func(config.Config)
	NewReporter     func(src progress.Source) Reporter
	Grace           time.Duration
	Join            time.Duration
}

// Controller is the countdown state machine. All methods are safe for concurrent use.
type Controller struct {
	ctx         context.Context
	clock       Clock
	rand        delay.Rand
	out         io.Writer
	lg          *log.Logger
	notifier    Notifier
	automator   Automator
	store       Store
	reconfigure Reconfigurer
	onChange    func(config.Config)
	newReporter func(src progress.Source) Reporter
	grace       time.Duration
	join        time.Duration

	// mu serializes arm, cancel and expiry transitions.
	mu       sync.Mutex
	cfg      config.Config
	state    State
	timer    Stopper
	reporter Reporter
	// pause is closed when the expired session is retired during the restart pause.
	pause chan struct{}

	// sessMu guards session separately so the reporter can read it while mu is held
	// during the bounded join.
	sessMu  sync.RWMutex
	session *Session

	interrupt chan struct{}
}

// New returns an idle Controller using cfg.
func New(cfg config.Config, opts Options) *Controller {
	c := &Controller{
		ctx:         opts.Context,
		clock:       opts.Clock,
		rand:        opts.Rand,
		out:         opts.Out,
		lg:          opts.Logger,
		notifier:    opts.Notifier,
		automator:   opts.Automator,
		store:       opts.Store,
		reconfigure: opts.Reconfigure,
		onChange:    opts.OnConfigChanged,
		newReporter: opts.NewReporter,
		grace:       opts.Grace,
		join:        opts.Join,
		cfg:         cfg,
		interrupt:   make(chan struct{}, 1),
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	if c.clock == nil {
		c.clock = RealClock()
	}
	if c.rand == nil {
		c.rand = delay.Default()
	}
	if c.out == nil {
		c.out = io.Discard
	}
	if c.lg == nil {
		c.lg = log.New(io.Discard)
	}
	if c.notifier == nil {
		c.notifier = bell{c.out}
	}
	if c.newReporter == nil {
		c.newReporter = func(src progress.Source) Reporter {
			return progress.Start(src, progress.Options{Out: c.out, Logger: c.lg, Now: c.clock.Now})
		}
	}
	if c.grace <= 0 {
		c.grace = DefaultGrace
	}
	if c.join <= 0 {
		c.join = DefaultJoin
	}
	return c
}

type bell struct{ w io.Writer }

func (b bell) Notify() error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

// Config returns the settings the next session will use.
func (c *Controller) Config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// SetConfig replaces the settings. A running session keeps the values it was armed with.
func (c *Controller) SetConfig(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// State reports the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the active session, if any.
func (c *Controller) Current() (Session, bool) {
	c.sessMu.RLock()
	defer c.sessMu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Active implements progress.Source.
func (c *Controller) Active() (time.Time, time.Duration, bool) {
	s, ok := c.Current()
	return s.StartedAt, s.Actual, ok
}

// Status is a point-in-time view for the status command.
type Status struct {
	State     State
	Session   Session
	Remaining time.Duration
}

// Status samples the controller.
func (c *Controller) Status() Status {
	st := Status{State: c.State()}
	if s, ok := c.Current(); ok && st.State == Running {
		st.Session = s
		st.Remaining = progress.Measure(s.StartedAt, c.clock.Now(), s.Actual).Remaining
	}
	return st
}

// Arm starts a new countdown, first retiring any session that is still active.
func (c *Controller) Arm() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armLocked()
}

func (c *Controller) armLocked() Session {
	c.retireLocked()

	cfg := c.cfg
	applied := 0
	if cfg.RandomOffsetSeconds > 0 {
		applied = delay.IntBetween(c.rand, -cfg.RandomOffsetSeconds, cfg.RandomOffsetSeconds)
	}
	s := &Session{
		ID:        uuid.NewString(),
		Base:      cfg.CountdownSeconds,
		Offset:    cfg.RandomOffsetSeconds,
		Applied:   applied,
		Actual:    time.Duration(cfg.CountdownSeconds+applied) * time.Second,
		StartedAt: c.clock.Now(),
	}
	c.setSession(s)
	c.state = Running

	fmt.Fprintf(c.out, "%s Timer started: %s\n", progress.Reset(), s.Describe())
	c.reporter = c.newReporter(c)
	id := s.ID
	c.timer = c.clock.AfterFunc(s.Actual, func() { c.expire(id) })

	metrics.SessionArmed(s.Actual.Seconds())
	c.lg.Info("countdown armed", "session", s, "base", s.Base, "applied", applied)
	return *s
}

// Cancel stops the active countdown. It reports false when nothing was running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return false
	}
	c.retireLocked()
	c.state = Idle

	fmt.Fprintf(c.out, "%s Timer cancelled.\n", progress.Stopped())
	metrics.SessionCancelled()
	c.lg.Info("countdown cancelled")
	return true
}

// Shutdown retires everything quietly; used when the program exits.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retireLocked()
	c.state = Idle
}

// Interrupt requests reconfiguration during the post-expiry grace period.
func (c *Controller) Interrupt() {
	select {
	case c.interrupt <- struct{}{}:
	default:
	}
}

func (c *Controller) setSession(s *Session) {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	c.session = s
}

// retireLocked cancels the pending expiry, clears the session and joins the reporter.
func (c *Controller) retireLocked() {
	if c.timer != nil {
		if !c.timer.Stop() {
			c.lg.Debug("expiry already fired or stopped")
		}
		c.timer = nil
	}
	if c.pause != nil {
		close(c.pause)
		c.pause = nil
	}
	c.setSession(nil)
	c.stopReporterLocked()
}

func (c *Controller) stopReporterLocked() {
	if c.reporter == nil {
		return
	}
	c.reporter.Stop()
	if !c.reporter.Wait(c.join) {
		c.lg.Debug("progress reporter did not exit in time", "join", c.join)
	}
	c.reporter = nil
}

// expire runs on the timer's goroutine. A callback whose session was cancelled or
// superseded does nothing.
func (c *Controller) expire(id string) {
	defer func() {
		if r := recover(); r != nil {
			c.lg.Error("PANIC in expiry handler", "session", id, "panic", r)
		}
	}()

	c.mu.Lock()
	s, ok := c.Current()
	if c.state != Running || !ok || s.ID != id {
		c.mu.Unlock()
		c.lg.Debug("stale expiry ignored", "session", id)
		return
	}
	c.state = Expired
	c.timer = nil
	c.stopReporterLocked()
	pause := make(chan struct{})
	c.pause = pause
	cfg := c.cfg
	c.mu.Unlock()

	c.drainInterrupt()
	metrics.Expired()
	fmt.Fprintln(c.out, progress.Expired("Time's up!"))
	c.lg.Info("countdown expired", "session", s)

	if err := c.notifier.Notify(); err != nil {
		c.lg.Warn("can't notify, ringing the terminal bell", "err", err)
		if err := (bell{c.out}).Notify(); err != nil {
			c.lg.Debug("terminal bell failed", "err", err)
		}
	}

	if cfg.AutoClickWindows {
		if c.automator == nil {
			fmt.Fprintln(c.out, "Auto-click is enabled but window automation is not available on this system.")
		} else {
			c.automator.Run(c.ctx, cfg.Selection(), cfg.TriggerKey)
		}
	}

	fmt.Fprintf(c.out, "Restarting in %s. Press ESC to change settings...\n", c.grace)
	select {
	case <-c.interrupt:
		if !c.stillExpired(id) {
			c.lg.Debug("interrupt after the session was retired", "session", id)
			return
		}
		c.reconfigureAfterExpiry(cfg)
	case <-c.clock.After(c.grace):
	case <-pause:
		c.lg.Debug("restart pause ended by arm or cancel", "session", id)
		return
	case <-c.ctx.Done():
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.expiredLocked(id) {
		c.lg.Debug("auto-restart superseded", "session", id, "state", c.state)
		return
	}
	c.armLocked()
}

func (c *Controller) stillExpired(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiredLocked(id)
}

// expiredLocked reports whether session id is still the expired one waiting to restart.
func (c *Controller) expiredLocked(id string) bool {
	cur, ok := c.Current()
	return c.state == Expired && ok && cur.ID == id
}

func (c *Controller) drainInterrupt() {
	select {
	case <-c.interrupt:
	default:
	}
}

func (c *Controller) reconfigureAfterExpiry(cur config.Config) {
	if c.reconfigure == nil {
		return
	}

	next, err := c.reconfigure(c.ctx, cur)
	if err != nil {
		c.lg.Info("reconfiguration ended, keeping settings", "err", err)
		return
	}
	if next.Equal(cur) {
		return
	}
	if err := next.Validate(); err != nil {
		fmt.Fprintf(c.out, "Invalid settings, keeping the old ones: %v\n", err)
		return
	}

	if c.store != nil {
		if err := c.store.Save(next); err != nil {
			fmt.Fprintf(c.out, "Failed to save config: %v\n", err)
			c.lg.Error("can't save settings", "path", c.store.Path(), "err", err)
			return
		}
		fmt.Fprintf(c.out, "Settings saved to: %s\n", c.store.Path())
	}

	c.SetConfig(next)
	if c.onChange != nil {
		c.onChange(next)
	}
}
