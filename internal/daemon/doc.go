// Package daemon provides the orchestration for toastd.
// It turns D-Bus notifications into toasts, tracks which entry presents
// which notification, and reloads configuration and presets on change.
package daemon
