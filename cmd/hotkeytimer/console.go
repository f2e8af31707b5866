package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/config"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/hotkey"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/progress"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/setup"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/timer"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

// titleSource is a window source that can also list titles for the selection prompt.
type titleSource interface {
	windows.Source
	Titles(ctx context.Context) ([]string, error)
}

type reconfigureReply struct {
	cfg config.Config
	err error
}

// reconfigureRequest hands the post-expiry menu to the console loop, which owns stdin.
type reconfigureRequest struct {
	cur   config.Config
	reply chan reconfigureReply
}

type app struct {
	ctl    *timer.Controller
	store  *config.Store
	hooks  *hotkey.Hooks
	source titleSource
	lg     *log.Logger
	out    io.Writer
	match  string

	requests chan reconfigureRequest
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

func (a *app) wizard(p setup.Prompter) setup.Wizard {
	w := setup.Wizard{Prompter: p, Out: a.out, Match: a.match}
	if a.source != nil {
		w.Windows = a.source.Titles
	}
	return w
}

// reconfigure is the controller's Reconfigurer; it blocks until the console loop
// has run the menu.
func (a *app) reconfigure(ctx context.Context, cur config.Config) (config.Config, error) {
	req := reconfigureRequest{cur: cur, reply: make(chan reconfigureReply, 1)}
	select {
	case a.requests <- req:
	case <-ctx.Done():
		return cur, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.cfg, r.err
	case <-ctx.Done():
		return cur, ctx.Err()
	}
}

func (a *app) banner(cfg config.Config) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, cfg)
	fmt.Fprintln(a.out)
	if a.hooks != nil {
		fmt.Fprintf(a.out, "Press %s to start or restart the timer, %s to stop it.\n", cfg.TriggerKey, cfg.StopKey)
	}
	fmt.Fprintln(a.out, "Type 'help' for console commands.")
}

func (a *app) run(ctx context.Context, lines <-chan string) {
	prompter := setup.Lines{In: lines, Out: a.out}
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.requests:
			cfg, err := a.wizard(prompter).Reconfigure(ctx, req.cur)
			req.reply <- reconfigureReply{cfg: cfg, err: err}
		case line, ok := <-lines:
			if !ok {
				return
			}
			if a.command(ctx, prompter, strings.TrimSpace(line)) {
				return
			}
		}
	}
}

// command runs one console command and reports whether the program should exit.
func (a *app) command(ctx context.Context, prompter setup.Prompter, cmd string) bool {
	switch strings.ToLower(cmd) {
	case "":
	case "start":
		a.ctl.Arm()
	case "stop":
		if !a.ctl.Cancel() {
			fmt.Fprintln(a.out, "No timer is running.")
		}
	case "menu":
		a.ctl.Interrupt()
	case "config":
		a.configure(ctx, prompter)
	case "windows":
		a.listWindows(ctx)
	case "status":
		a.status()
	case "help", "?":
		fmt.Fprintln(a.out, "Commands: start, stop, menu (during the restart pause), config, windows, status, quit")
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(a.out, "Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

func (a *app) configure(ctx context.Context, prompter setup.Prompter) {
	cur := a.ctl.Config()
	next, err := a.wizard(prompter).Run(ctx, cur)
	if errors.Is(err, setup.ErrCancelled) {
		fmt.Fprintln(a.out, "Setup cancelled, keeping current settings.")
		return
	}
	if err != nil {
		a.lg.Error("setup failed", "err", err)
		return
	}
	if next.Equal(cur) {
		fmt.Fprintln(a.out, "Settings unchanged.")
		return
	}
	if !a.save(next) {
		return
	}
	a.ctl.SetConfig(next)
	a.bindHotkeys(next)
	fmt.Fprintln(a.out, "New settings apply from the next start.")
}

func (a *app) save(cfg config.Config) bool {
	if err := a.store.Save(cfg); err != nil {
		fmt.Fprintf(a.out, "Failed to save config: %v\n", err)
		a.lg.Error("can't save settings", "path", a.store.Path(), "err", err)
		return false
	}
	fmt.Fprintf(a.out, "Settings saved to: %s\n", a.store.Path())
	return true
}

func (a *app) listWindows(ctx context.Context) {
	if a.source == nil {
		fmt.Fprintln(a.out, "Window automation is not available on this system.")
		return
	}
	titles, err := a.source.Titles(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Can't list windows: %v\n", err)
		return
	}
	if len(titles) == 0 {
		fmt.Fprintf(a.out, "No %s windows found.\n", a.match)
		return
	}
	for i, t := range titles {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, t)
	}
}

func (a *app) status() {
	st := a.ctl.Status()
	cfg := a.ctl.Config()
	switch st.State {
	case timer.Running:
		fmt.Fprintf(a.out, "Running: %s remaining of %s\n", progress.FormatRemaining(st.Remaining), st.Session.Describe())
	default:
		fmt.Fprintf(a.out, "Timer is %s.\n", st.State)
	}
	fmt.Fprintf(a.out, "Keys: %s starts, %s stops.\n", cfg.TriggerKey, cfg.StopKey)
}
