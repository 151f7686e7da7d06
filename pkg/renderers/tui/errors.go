package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrQuit is returned when the user leaves the session from the
	// navigation menu. Answers stay persisted.
	ErrQuit = errors.New("tui: quit")
	// ErrNotLoaded is returned when Run is handed an engine that never
	// received a config.
	ErrNotLoaded = errors.New("tui: engine has no config")
	// ErrInvalidSelection is returned by a driver that answers a select
	// prompt outside its options.
	ErrInvalidSelection = errors.New("tui: selection out of range")
)
