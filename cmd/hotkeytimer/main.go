// Command hotkeytimer is a hotkey-armed countdown that can click through game windows
// and press a key in each of them when time runs out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/automation"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/config"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/desktop"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/hotkey"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/keys"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/metrics"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/setup"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/timer"
	"pkg.jsn.cam/hotkeytimer/internal"
)

var (
	configPath  = flag.String("config", "", "settings file (default: "+config.FileName+" next to the executable)")
	match       = flag.String("match", config.DefaultMatch, "window title fragment to automate")
	logLevel    = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	logJSON     = flag.Bool("log-json", false, "log as JSON")
	metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9091")
	noHotkeys   = flag.Bool("no-hotkeys", false, "only accept console commands")
	accessible  = flag.Bool("accessible", false, "use plain prompts during setup")
)

func newLogger() *log.Logger {
	lg := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hotkeytimer",
	})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		lg.SetLevel(lvl)
	} else {
		lg.Warn("unknown log level, using warn", "level", *logLevel)
		lg.SetLevel(log.WarnLevel)
	}
	if *logJSON {
		lg.SetFormatter(log.JSONFormatter)
	}
	log.SetDefault(lg)
	return lg
}

func main() {
	internal.HandleStartup()
	lg := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Serve(*metricsAddr, lg)

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	a := &app{
		store:    config.NewStore(path),
		lg:       lg,
		out:      os.Stdout,
		match:    *match,
		requests: make(chan reconfigureRequest),
	}

	unavailable := desktop.Available()
	if unavailable == nil {
		a.source = desktop.Source{Match: *match}
	} else {
		lg.Warn("desktop automation disabled", "err", unavailable)
	}

	cfg := a.bootstrap(ctx, setup.Form{Accessible: *accessible})

	var automator timer.Automator
	if a.source != nil {
		automator = automation.New(a.source, desktop.Input{}, automation.Options{
			Out:    a.out,
			Logger: lg.WithPrefix("automation"),
			Match:  *match,
		})
	}

	a.ctl = timer.New(cfg, timer.Options{
		Context:         ctx,
		Out:             a.out,
		Logger:          lg.WithPrefix("timer"),
		Notifier:        desktop.Notifier{},
		Automator:       automator,
		Store:           a.store,
		Reconfigure:     a.reconfigure,
		OnConfigChanged: a.bindHotkeys,
	})
	defer a.ctl.Shutdown()

	if unavailable == nil && !*noHotkeys {
		a.hooks = hotkey.New(lg.WithPrefix("hotkey"))
		a.bindHotkeys(cfg)
		defer a.hooks.Close()
	} else if unavailable != nil {
		fmt.Fprintf(a.out, "Global hotkeys and window automation are unavailable: %v\n", unavailable)
	}

	a.banner(cfg)
	a.run(ctx, readLines(os.Stdin))
	fmt.Fprintln(a.out, "Bye.")
}

func (a *app) bindHotkeys(cfg config.Config) {
	if a.hooks == nil {
		return
	}
	a.hooks.Bind(
		hotkey.Binding{Key: cfg.TriggerKey, Action: func() { a.ctl.Arm() }},
		hotkey.Binding{Key: cfg.StopKey, Action: func() { a.ctl.Cancel() }},
		hotkey.Binding{Key: keys.Interrupt, Action: a.ctl.Interrupt},
	)
}
