// Package dbus implements the org.freedesktop.Notifications D-Bus interface.
// It provides a server that receives notifications from applications and
// hands them to a Handler that presents them as toasts, plus a passive
// monitor for mirroring another daemon's traffic.
package dbus
