// Package windows resolves the set of application windows automation may act on.
package windows

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnavailable is returned by a Source when the desktop cannot be inspected at all.
var ErrUnavailable = errors.New("window automation unavailable")

// Rect is a window's on-screen geometry.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

// Empty reports whether the rectangle has no usable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Window is one live window as reported by the desktop. Reads may fail at any time
// because the window can close underneath us.
type Window interface {
	Handle() int
	Title() (string, error)
	Bounds() (Rect, error)
	Minimized() bool
}

// Source enumerates the windows that belong to the automated application.
type Source interface {
	Windows(ctx context.Context) ([]Window, error)
}

// Target is a validated snapshot of one window taken at resolution time.
type Target struct {
	Handle    int
	Title     string
	Rect      Rect
	Minimized bool

	win Window
}

// Refresh re-reads the window geometry, falling back to the snapshot for targets
// that were not built from a live window.
func (t Target) Refresh() (Rect, error) {
	if t.win == nil {
		return t.Rect, nil
	}
	r, err := safeBounds(t.win)
	if err != nil {
		return Rect{}, err
	}
	if r.Empty() {
		return Rect{}, fmt.Errorf("window %d has no area", t.Handle)
	}
	return r, nil
}

func (t Target) String() string {
	return fmt.Sprintf("%q (#%d)", t.Title, t.Handle)
}

type selectionKind int

const (
	selectAll selectionKind = iota
	selectSubset
)

// Selection is either every matching window or an explicit subset of titles.
// The zero value selects all windows.
type Selection struct {
	kind   selectionKind
	titles []string
}

// All selects every matching window.
func All() Selection { return Selection{kind: selectAll} }

// Subset selects only windows whose title is one of titles. Duplicates are dropped.
func Subset(titles ...string) Selection {
	seen := make(map[string]struct{}, len(titles))
	uniq := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	return Selection{kind: selectSubset, titles: uniq}
}

// IsAll reports whether the selection matches every window.
func (s Selection) IsAll() bool { return s.kind == selectAll }

// Titles returns the requested titles of a subset selection, or nil for All.
func (s Selection) Titles() []string {
	if s.IsAll() {
		return nil
	}
	return append([]string(nil), s.titles...)
}

func (s Selection) String() string {
	if s.IsAll() {
		return "all windows"
	}
	return strings.Join(s.titles, ", ")
}

// Resolution is the outcome of matching candidates against a Selection.
type Resolution struct {
	Targets []Target
	// NotFound lists requested titles with no validated window, sorted.
	NotFound []string
}

// Resolve de-duplicates candidates by handle (first seen wins), drops windows whose
// title or size cannot be read, and applies sel. It never fails; an empty result
// means there is nothing to do.
func Resolve(candidates []Window, sel Selection) Resolution {
	seen := make(map[int]struct{}, len(candidates))
	var valid []Target
	for _, w := range candidates {
		if w == nil {
			continue
		}
		h := w.Handle()
		if _, dup := seen[h]; dup {
			continue
		}
		t, ok := validate(w)
		if !ok {
			continue
		}
		seen[h] = struct{}{}
		valid = append(valid, t)
	}

	if sel.IsAll() {
		return Resolution{Targets: valid}
	}

	wanted := make(map[string]struct{}, len(sel.titles))
	for _, title := range sel.titles {
		wanted[title] = struct{}{}
	}

	var res Resolution
	present := make(map[string]struct{}, len(valid))
	for _, t := range valid {
		present[t.Title] = struct{}{}
		if _, ok := wanted[t.Title]; ok {
			res.Targets = append(res.Targets, t)
		}
	}
	for _, title := range sel.titles {
		if _, ok := present[title]; !ok {
			res.NotFound = append(res.NotFound, title)
		}
	}
	slices.Sort(res.NotFound)
	res.NotFound = slices.Compact(res.NotFound)
	return res
}

func validate(w Window) (Target, bool) {
	r, err := safeBounds(w)
	if err != nil {
		return Target{}, false
	}
	title, err := safeTitle(w)
	if err != nil {
		return Target{}, false
	}
	return Target{
		Handle:    w.Handle(),
		Title:     title,
		Rect:      r,
		Minimized: w.Minimized(),
		win:       w,
	}, true
}

func safeBounds(w Window) (r Rect, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read bounds: %v", p)
		}
	}()
	return w.Bounds()
}

func safeTitle(w Window) (title string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read title: %v", p)
		}
	}()
	return w.Title()
}

// Titles lists the titles of targets in order.
func Titles(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Title
	}
	return out
}
