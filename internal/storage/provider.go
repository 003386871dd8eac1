// Package storage persists record tables as JSON documents in a data
// directory.
package storage

// Provider is the interface for data file operations. Paths are relative to
// the data directory.
type Provider interface {
	// Root returns the absolute data directory.
	Root() string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Remove deletes the file at path.
	Remove(path string) error
}
