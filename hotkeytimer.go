// Package hotkeytimer is the root of a hotkey-armed countdown timer that can drive
// window automation when the countdown expires.
package hotkeytimer

// Version is overwritten at link time with -ldflags "-X pkg.jsn.cam/hotkeytimer.Version=...".
var Version = "devel"
