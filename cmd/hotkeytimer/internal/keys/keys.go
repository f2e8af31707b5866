// Package keys validates and normalizes key names typed by the user.
package keys

//go:generate go run ../../../keygen -o keys_gen.go

import (
	"slices"
	"strings"
)

// Interrupt is the key that opens the settings menu during the restart pause.
// It can't be bound as a trigger or stop key.
const Interrupt = "esc"

var aliases = map[string]string{
	"escape":    "esc",
	"return":    "enter",
	"pgup":      "pageup",
	"pgdn":      "pagedown",
	"pgdown":    "pagedown",
	"del":       "delete",
	"ins":       "insert",
	"control":   "ctrl",
	"command":   "cmd",
	"option":    "alt",
	"spacebar":  "space",
	"caps_lock": "capslock",
	"prtsc":     "printscreen",
}

// Normalize lowercases name, drops inner spaces ("page up" becomes "pageup") and
// resolves common aliases.
func Normalize(name string) string {
	n := strings.Join(strings.Fields(strings.ToLower(name)), "")
	if a, ok := aliases[n]; ok {
		return a
	}
	return n
}

// Known reports whether name, after normalization, is a supported key.
func Known(name string) bool {
	_, found := slices.BinarySearch(names, Normalize(name))
	return found
}

// Names returns every supported key name in sorted order.
func Names() []string {
	return slices.Clone(names)
}
