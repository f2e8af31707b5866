// Package windowstest provides in-memory windows for exercising resolution and
// automation without a desktop.
package windowstest

import (
	"context"
	"sync"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
)

// Window is a scripted windows.Window.
type Window struct {
	ID        int
	Name      string
	Geometry  windows.Rect
	Hidden    bool
	TitleErr  error
	BoundsErr error
	// PanicOnBounds makes Bounds panic, as a window torn down mid-read can.
	PanicOnBounds bool
}

// New returns an 800x600 window at the given position.
func New(id int, title string, left, top int) *Window {
	return &Window{
		ID:       id,
		Name:     title,
		Geometry: windows.Rect{Left: left, Top: top, Width: 800, Height: 600},
	}
}

func (w *Window) Handle() int { return w.ID }

func (w *Window) Title() (string, error) {
	if w.TitleErr != nil {
		return "", w.TitleErr
	}
	return w.Name, nil
}

func (w *Window) Bounds() (windows.Rect, error) {
	if w.PanicOnBounds {
		panic("window closed")
	}
	if w.BoundsErr != nil {
		return windows.Rect{}, w.BoundsErr
	}
	return w.Geometry, nil
}

func (w *Window) Minimized() bool { return w.Hidden }

// Source serves a fixed candidate list.
type Source struct {
	mu   sync.Mutex
	list []windows.Window
	err  error
}

// NewSource returns a Source listing ws.
func NewSource(ws ...*Window) *Source {
	list := make([]windows.Window, len(ws))
	for i, w := range ws {
		list[i] = w
	}
	return &Source{list: list}
}

// Fail makes subsequent enumerations return err.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Source) Windows(context.Context) ([]windows.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]windows.Window(nil), s.list...), nil
}
