// Package storage defines the board directory file-system abstraction.
package storage

import "time"

// FileMeta is a lightweight description of one record file.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for board file operations. All paths are
// relative to the board root. Operations are synchronous and perform no
// locking; a board directory has a single writer by assumption.
type Provider interface {
	// List walks dir recursively and returns metadata for every .md file.
	List(dir string) ([]FileMeta, error)
	// ListDir returns the sorted names of .md files directly inside dir,
	// without recursing. A missing directory is reported via fs.ErrNotExist.
	ListDir(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parent directories.
	Move(oldPath, newPath string) error
	// Exists reports whether a file exists at path.
	Exists(path string) bool
	// MkdirAll ensures the directory at dir exists.
	MkdirAll(dir string) error
	// Root returns the absolute board root directory.
	Root() string
}
