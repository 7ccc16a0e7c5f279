// Package sync models remote synchronization of a board directory behind a
// single status vocabulary. Concrete mechanisms (a version-control remote,
// a cloud object store) implement the Provider interface and are selected
// once at composition time; the core only reads the status they drive.
package sync

// State is one of the eight synchronization states a board can be in.
type State string

const (
	// StateNotConfigured means no remote is set up for this board.
	StateNotConfigured State = "notConfigured"
	// StateSynced means local and remote copies match.
	StateSynced State = "synced"
	// StateLocalChanges means only the local copy has pending edits.
	StateLocalChanges State = "localChanges"
	// StateRemoteChanges means only the remote copy has pending edits.
	StateRemoteChanges State = "remoteChanges"
	// StateDiverged means both sides have unsynchronized changes.
	StateDiverged State = "diverged"
	// StateSyncing means a push or pull is in flight.
	StateSyncing State = "syncing"
	// StateConflict means a sync attempt hit changes that need manual
	// resolution.
	StateConflict State = "conflict"
	// StateError means the last sync attempt failed; Status.Message
	// carries the reason.
	StateError State = "error"
)

func (s State) String() string { return string(s) }

// Status is the externally visible synchronization state. Message is only
// populated for StateError.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

// CanPush reports whether offering a push action makes sense: only when
// local changes exist, alone or alongside remote ones. Conflict and error
// states require explicit resolution first.
func (s Status) CanPush() bool {
	return s.State == StateLocalChanges || s.State == StateDiverged
}

// CanPull reports whether offering a pull action makes sense: only when
// remote changes exist, alone or alongside local ones.
func (s Status) CanPull() bool {
	return s.State == StateRemoteChanges || s.State == StateDiverged
}
