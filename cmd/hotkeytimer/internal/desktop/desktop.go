// Package desktop talks to the real screen, pointer and keyboard through robotgo.
package desktop

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/go-vgo/robotgo"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/motion"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"

	_ "github.com/go-vgo/robotgo/base"  // Blank import for robotgo C sources
	_ "github.com/go-vgo/robotgo/key"   // Blank import for robotgo C sources
	_ "github.com/go-vgo/robotgo/mouse" // Blank import for robotgo C sources
)

// minimizedOrigin is where Windows parks minimized windows.
const minimizedOrigin = -32000

// Available reports whether robotgo can reach a display.
func Available() (err error) {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("%w: no X display (DISPLAY is unset)", windows.ErrUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", windows.ErrUnavailable, r)
		}
	}()
	if w, h := robotgo.GetScreenSize(); w <= 0 || h <= 0 {
		return fmt.Errorf("%w: screen size is %dx%d", windows.ErrUnavailable, w, h)
	}
	return nil
}

// Source lists top-level windows whose title contains Match.
type Source struct {
	Match string
}

func (s Source) Windows(ctx context.Context) ([]windows.Window, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return nil, fmt.Errorf("%w: list processes: %v", windows.ErrUnavailable, err)
	}

	var out []windows.Window
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if title := robotgo.GetTitle(p.Pid); title != "" && strings.Contains(title, s.Match) {
			out = append(out, window{pid: p.Pid})
		}
	}
	return out, nil
}

// Titles lists the titles of matching windows that can be automated right now.
func (s Source) Titles(ctx context.Context) ([]string, error) {
	ws, err := s.Windows(ctx)
	if err != nil {
		return nil, err
	}
	return windows.Titles(windows.Resolve(ws, windows.All()).Targets), nil
}

type window struct {
	pid int
}

func (w window) Handle() int { return w.pid }

func (w window) Title() (string, error) {
	t := robotgo.GetTitle(w.pid)
	if t == "" {
		return "", fmt.Errorf("window %d has no title", w.pid)
	}
	return t, nil
}

func (w window) Bounds() (windows.Rect, error) {
	x, y, width, height := robotgo.GetBounds(w.pid)
	r := windows.Rect{Left: x, Top: y, Width: width, Height: height}
	if r.Empty() {
		return windows.Rect{}, fmt.Errorf("window %d has no size", w.pid)
	}
	return r, nil
}

func (w window) Minimized() bool {
	x, y, _, _ := robotgo.GetBounds(w.pid)
	return x <= minimizedOrigin && y <= minimizedOrigin
}

// Input drives the real pointer and keyboard.
type Input struct{}

func (Input) MoveTo(ctx context.Context, x, y int, d time.Duration) error {
	fx, fy := robotgo.Location()
	return motion.Glide(ctx, motion.Point{X: fx, Y: fy}, motion.Point{X: x, Y: y}, d, func(p motion.Point) {
		robotgo.Move(p.X, p.Y)
	})
}

func (Input) Click() error {
	robotgo.Click("left", false)
	return nil
}

func (Input) KeyTap(key string) error {
	return robotgo.KeyTap(key)
}

func (Input) Activate(handle int) error {
	return robotgo.ActivePid(handle)
}

// Notifier beeps through the system speaker.
type Notifier struct{}

func (Notifier) Notify() error {
	if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	return nil
}
