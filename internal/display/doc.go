// Package display hosts toasts on a Wayland desktop using GTK4, libadwaita
// and layer-shell. Every entry gets its own layer-shell window anchored to
// the top-left corner of the configured monitor and placed by margin, so the
// presentation core's frames map directly onto the screen.
//
// Everything in this package runs on the GTK main loop. Scheduler and Post
// hand work from other goroutines over with glib.IdleAdd.
package display
