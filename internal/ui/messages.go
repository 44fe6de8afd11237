// Package ui provides the Bubble Tea TUI for minescope.
package ui

import (
	"github.com/abelbrown/minescope/internal/coord"
	"github.com/abelbrown/minescope/internal/state"
)

// StateChanged carries a fresh copy of the view state.
type StateChanged struct {
	Snap state.Snapshot
}

// OpDone is sent when a command started by the App has finished. Snap is
// the state right after it finished.
type OpDone struct {
	Op   state.Op
	Snap state.Snapshot
	Err  error
}

// OpEvent wraps a coordinator completion notice. Mount fans out several
// operations; each one reports through an OpEvent so the view updates as
// results land instead of after the slowest.
type OpEvent struct {
	coord.Event
}
