// Package window defines the host window an entry is presented in, and a
// headless implementation used by tests and simulations.
package window

import (
	"github.com/jmylchreest/toastkit/internal/geometry"
)

// State is the presentation state of the host window.
type State int

const (
	// StateMain means no overlay is shown and the host window may be hidden.
	StateMain State = iota
	// StateOverlay means at least one entry is on screen or on its way.
	StateOverlay
)

// String returns the state name.
func (s State) String() string {
	if s == StateOverlay {
		return "overlay"
	}
	return "main"
}

// Provider owns the container entries are laid out in.
type Provider interface {
	// Container returns the size of the overlay container.
	Container() geometry.Size
	// SafeArea returns the container's safe-area insets.
	SafeArea() geometry.Insets
	// SupportsSafeArea reports whether entries may override the safe area.
	SupportsSafeArea() bool
	State() State
	SetState(State)
	// Release hides the host window once the last entry is gone.
	Release()
}
