// Package hotkey registers global key bindings with gohook.
package hotkey

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	hook "github.com/robotn/gohook"
)

const stopTimeout = 2 * time.Second

// Binding runs Action whenever Key is pressed anywhere on the desktop.
type Binding struct {
	Key    string
	Action func()
}

// Hooks owns the process-wide gohook event loop.
type Hooks struct {
	lg *log.Logger

	mu   sync.Mutex
	done chan struct{}
}

// New returns an idle Hooks.
func New(lg *log.Logger) *Hooks {
	if lg == nil {
		lg = log.New(io.Discard)
	}
	return &Hooks{lg: lg}
}

// Bind replaces every registered binding with bindings and starts listening.
func (h *Hooks) Bind(bindings ...Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopLocked()

	for _, b := range bindings {
		key, action := b.Key, b.Action
		hook.Register(hook.KeyDown, []string{key}, func(hook.Event) {
			go h.fire(key, action)
		})
		h.lg.Debug("hotkey registered", "key", key)
	}

	events := hook.Start()
	done := make(chan struct{})
	h.done = done
	go func() {
		defer close(done)
		<-hook.Process(events)
	}()
}

// Close unregisters everything and stops the event loop.
func (h *Hooks) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *Hooks) stopLocked() {
	if h.done == nil {
		return
	}
	done := h.done
	h.done = nil

	func() {
		defer func() {
			if r := recover(); r != nil {
				h.lg.Debug("hook shutdown panicked", "panic", r)
			}
		}()
		hook.End()
	}()

	select {
	case <-done:
	case <-time.After(stopTimeout):
		h.lg.Debug("hook loop did not stop in time")
	}
}

func (h *Hooks) fire(key string, action func()) {
	defer func() {
		if r := recover(); r != nil {
			h.lg.Error("PANIC in hotkey action", "key", key, "panic", r)
		}
	}()
	h.lg.Debug("hotkey pressed", "key", key)
	action()
}
