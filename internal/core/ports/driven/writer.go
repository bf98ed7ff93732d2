package driven

import "context"

// DocumentWriter persists generated documentation.
type DocumentWriter interface {
	// EnsureDir creates dir and its parents. Existing directories are not an error.
	EnsureDir(ctx context.Context, dir string) error

	// WriteFile replaces the file at path with content.
	// Readers never observe a partially written file.
	WriteFile(ctx context.Context, path string, content []byte) error
}
