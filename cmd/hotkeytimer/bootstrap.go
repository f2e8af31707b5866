package main

import (
	"context"
	"errors"
	"fmt"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/config"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/setup"
)

// bootstrap loads saved settings, offering to change them, or runs first-time setup.
// Cancelling first-time setup falls back to the defaults.
func (a *app) bootstrap(ctx context.Context, p setup.Prompter) config.Config {
	wiz := a.wizard(p)

	cfg, err := a.store.Load()
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Loaded settings from %s\n%s\n\n", a.store.Path(), cfg)
		again, err := p.Confirm(ctx, "Change these settings?", false)
		if err != nil || !again {
			return cfg
		}
		next, err := wiz.Run(ctx, cfg)
		if err != nil {
			fmt.Fprintln(a.out, "Setup cancelled, keeping saved settings.")
			return cfg
		}
		if !next.Equal(cfg) {
			a.save(next)
		}
		return next
	case errors.Is(err, config.ErrNotFound):
		fmt.Fprintln(a.out, "No saved settings yet, starting setup.")
	default:
		a.lg.Warn("can't load settings", "path", a.store.Path(), "err", err)
		fmt.Fprintf(a.out, "Could not read %s, starting setup.\n", a.store.Path())
	}

	next, err := wiz.Run(ctx, config.Default())
	if err != nil {
		fmt.Fprintln(a.out, "Setup cancelled, using defaults.")
		return config.Default()
	}
	a.save(next)
	return next
}
