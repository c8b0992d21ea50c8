// Package audio provides haptic feedback for toasts.
// It uses the beep library to synthesize short pulse patterns, or to play
// WAV, OGG and MP3 files configured per haptic kind.
package audio
