package sync

import (
	"context"
	"fmt"
	sy "sync"
)

// Kind identifies a sync mechanism.
type Kind string

const (
	// KindGit synchronizes through a version-control remote.
	KindGit Kind = "git"
	// KindGCS synchronizes through a cloud object store bucket.
	KindGCS Kind = "gcs"
)

func (k Kind) String() string { return string(k) }

// Provider is the capability interface every sync mechanism implements.
// All operations may block on network or external-process latency and must
// be called from a context that tolerates suspension. No ordering is
// guaranteed between overlapping invocations; callers serialize them if a
// given provider is unsafe under concurrency.
type Provider interface {
	// Status returns the current synchronization status.
	Status() Status

	// Location returns the board directory this provider watches.
	Location() string

	// CheckConfiguration verifies the remote side is usable and moves
	// the status from notConfigured to synced on success.
	CheckConfiguration(ctx context.Context) error

	// Sync pulls remote changes into the local copy.
	Sync(ctx context.Context) error

	// Push uploads local changes to the remote.
	Push(ctx context.Context) error

	// HasLocalChanges reports whether the local copy has edits the
	// remote has not seen.
	HasLocalChanges(ctx context.Context) (bool, error)
}

// Options carries provider-specific settings; each constructor reads only
// the fields it needs.
type Options struct {
	// Remote is the version-control remote name (git).
	Remote string
	// Branch is the branch pushed and pulled (git).
	Branch string
	// Bucket is the object store bucket name (gcs).
	Bucket string
	// Prefix namespaces this board inside the bucket (gcs).
	Prefix string
	// CredentialsFile is a service account key path (gcs, optional).
	CredentialsFile string
}

// Constructor builds a provider for a board directory.
// Implementations register themselves from init() in their own package.
type Constructor func(boardDir string, opts Options) (Provider, error)

var (
	registry   = make(map[Kind]Constructor)
	registryMu sy.RWMutex
)

// Register installs a provider constructor. It panics on duplicate or nil
// registration; both are wiring bugs.
func Register(k Kind, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if c == nil {
		panic(fmt.Sprintf("sync: Register constructor is nil for kind %s", k))
	}
	if _, exists := registry[k]; exists {
		panic(fmt.Sprintf("sync: Register called twice for kind %s", k))
	}
	registry[k] = c
}

// New builds a provider of the given kind for boardDir.
func New(k Kind, boardDir string, opts Options) (Provider, error) {
	registryMu.RLock()
	c := registry[k]
	registryMu.RUnlock()
	if c == nil {
		return nil, fmt.Errorf("sync: no provider registered for kind %q", k)
	}
	return c(boardDir, opts)
}

// RegisteredKinds returns every installed provider kind.
func RegisteredKinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}
