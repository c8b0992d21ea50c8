package display

// Stylesheet is the default toast style. Colors follow the libadwaita
// palette so toasts match the system light or dark scheme.
const Stylesheet = `
window {
  background: transparent;
}

.toast {
  border-radius: 12px;
  padding: 0;
  background-color: @window_bg_color;
  color: @window_fg_color;
  box-shadow: 0 2px 8px alpha(black, 0.3);
}

.toast.dark {
  background-color: #303030;
  color: #ffffff;
}

.toast.light {
  background-color: #fafafa;
  color: #202020;
}

.toast.translucent {
  background-color: alpha(@window_bg_color, 0.85);
}

.toast-summary {
  font-weight: bold;
}

.toast-body {
  opacity: 0.85;
}

.toast.urgency-low {
  opacity: 0.9;
}

.toast.urgency-critical {
  border: 2px solid @error_color;
}
`
