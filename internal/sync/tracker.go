package sync

import (
	"fmt"
	sy "sync"
)

// Tracker owns the status transitions for one provider. Providers drive
// it; everything else only reads Current().
//
// Transition rules:
//
//	notConfigured → synced                       (configuration check passed)
//	synced        → localChanges | remoteChanges (edit detected)
//	localChanges  ⇄ remoteChanges → diverged     (both pending collapse)
//	{localChanges, remoteChanges, diverged} → syncing   (push or pull starts)
//	syncing       → synced | conflict | error
//
// conflict and error are terminal until explicitly reset by a new
// configuration check or a retried sync.
type Tracker struct {
	mu     sy.Mutex
	status Status
}

// NewTracker starts in notConfigured.
func NewTracker() *Tracker {
	return &Tracker{status: Status{State: StateNotConfigured}}
}

// Current returns the status snapshot.
func (t *Tracker) Current() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// MarkConfigured records a successful configuration check.
func (t *Tracker) MarkConfigured() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{State: StateSynced}
}

// MarkNotConfigured records a failed configuration check.
func (t *Tracker) MarkNotConfigured() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{State: StateNotConfigured}
}

// MarkLocalChanges records a local edit. If remote changes are already
// pending the board has diverged.
func (t *Tracker) MarkLocalChanges() {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status.State {
	case StateSynced, StateLocalChanges:
		t.status = Status{State: StateLocalChanges}
	case StateRemoteChanges, StateDiverged:
		t.status = Status{State: StateDiverged}
	}
}

// MarkRemoteChanges records a remote edit, mirroring MarkLocalChanges.
func (t *Tracker) MarkRemoteChanges() {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status.State {
	case StateSynced, StateRemoteChanges:
		t.status = Status{State: StateRemoteChanges}
	case StateLocalChanges, StateDiverged:
		t.status = Status{State: StateDiverged}
	}
}

// BeginSync moves into syncing. Only states with something to push or
// pull permit it.
func (t *Tracker) BeginSync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status.State {
	case StateLocalChanges, StateRemoteChanges, StateDiverged, StateSynced:
		t.status = Status{State: StateSyncing}
		return nil
	default:
		return fmt.Errorf("cannot sync from state %s", t.status.State)
	}
}

// FinishSynced completes an in-flight sync successfully.
func (t *Tracker) FinishSynced() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{State: StateSynced}
}

// FinishConflict completes an in-flight sync with a conflict.
func (t *Tracker) FinishConflict() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{State: StateConflict}
}

// FinishError completes an in-flight sync with a failure. The message is
// retained for passive display alongside the thrown error.
func (t *Tracker) FinishError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{State: StateError, Message: msg}
}
