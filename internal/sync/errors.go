package sync

import "errors"

// Errors surfaced by sync providers. They are both returned from the
// triggering call and reflected into a persisted error status, so a
// failure is never silently swallowed.
var (
	// ErrNotConfigured means the provider's remote side is missing or
	// incomplete (no remote URL, no bucket, no credentials).
	ErrNotConfigured = errors.New("sync not configured")

	// ErrNetwork wraps transport-level failures.
	ErrNetwork = errors.New("network error")

	// ErrConflict means local and remote changes collide and need manual
	// resolution.
	ErrConflict = errors.New("conflict detected")

	// ErrPushFailed means the remote rejected the upload.
	ErrPushFailed = errors.New("push failed")

	// ErrPullFailed means downloading remote changes failed.
	ErrPullFailed = errors.New("pull failed")

	// ErrAuthentication means the remote rejected our credentials.
	ErrAuthentication = errors.New("authentication failed")
)
