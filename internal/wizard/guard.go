package wizard

import (
	"encoding/json"
	"reflect"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/metrics"
)

// GuardState is the navigation guard's state for one form.
type GuardState string

const (
	StateClean          GuardState = "clean"
	StateDirty          GuardState = "dirty"
	StateConfirmingExit GuardState = "confirming_exit"
)

// Guard tracks unsaved edits of one form against its last preloaded or saved snapshot.
// It is not safe for concurrent use; Session serializes access.
type Guard struct {
	state    GuardState
	snapshot docstore.SectionData
	draft    docstore.SectionData
	onChange func(from, to GuardState)
}

// NewGuard starts clean with snapshot as both baseline and draft.
func NewGuard(snapshot docstore.SectionData) *Guard {
	return &Guard{
		state:    StateClean,
		snapshot: canonical(snapshot),
		draft:    canonical(snapshot),
		onChange: func(from, to GuardState) { metrics.IncGuardTransition(string(from), string(to)) },
	}
}

// State returns the current state.
func (g *Guard) State() GuardState { return g.state }

// Draft returns the current form values.
func (g *Guard) Draft() docstore.SectionData { return g.draft.Clone() }

// Edit replaces the draft. Clean becomes Dirty when values differ from the
// snapshot; Dirty returns to Clean when they match again.
func (g *Guard) Edit(values docstore.SectionData) error {
	if g.state == StateConfirmingExit {
		return ErrConfirmationPending
	}
	g.draft = canonical(values)
	if g.matchesSnapshot() {
		g.set(StateClean)
	} else {
		g.set(StateDirty)
	}
	return nil
}

// AttemptExit reports whether the user may leave. A dirty form moves to
// ConfirmingExit and blocks.
func (g *Guard) AttemptExit() bool {
	switch g.state {
	case StateClean:
		return true
	case StateDirty:
		g.set(StateConfirmingExit)
	}
	return false
}

// Stay cancels a pending exit and keeps editing.
func (g *Guard) Stay() error {
	if g.state != StateConfirmingExit {
		return ErrNoPendingExit
	}
	g.set(StateDirty)
	return nil
}

// BeginSaveAndLeave returns the draft to persist for the save-and-leave choice.
func (g *Guard) BeginSaveAndLeave() (docstore.SectionData, error) {
	if g.state != StateConfirmingExit {
		return nil, ErrNoPendingExit
	}
	return g.Draft(), nil
}

// Saved records a successful submit of data as the new snapshot. A pending
// exit stays pending so the user still chooses; otherwise the form is Clean
// unless the draft changed while the write was in flight.
func (g *Guard) Saved(data docstore.SectionData) {
	g.snapshot = canonical(data)
	switch {
	case g.state == StateConfirmingExit:
	case g.matchesSnapshot():
		g.draft = g.snapshot.Clone()
		g.set(StateClean)
	default:
		g.set(StateDirty)
	}
}

// SavedAndLeft completes the save-and-leave choice: the written draft is the
// new snapshot and the pending exit is released.
func (g *Guard) SavedAndLeft(data docstore.SectionData) {
	g.snapshot = canonical(data)
	g.draft = g.snapshot.Clone()
	g.set(StateClean)
}

// SaveFailed returns a pending exit to Dirty; the draft is kept.
func (g *Guard) SaveFailed() {
	if g.state == StateConfirmingExit {
		g.set(StateDirty)
	}
}

func (g *Guard) matchesSnapshot() bool {
	return reflect.DeepEqual(g.draft, g.snapshot)
}

func (g *Guard) set(to GuardState) {
	if g.state == to {
		return
	}
	from := g.state
	g.state = to
	if g.onChange != nil {
		g.onChange(from, to)
	}
}

// canonical normalizes values through JSON so equal forms compare equal
// regardless of how their numbers or slices were typed.
func canonical(values docstore.SectionData) docstore.SectionData {
	if values == nil {
		return docstore.SectionData{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return values
	}
	out := docstore.SectionData{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return values
	}
	return out
}
