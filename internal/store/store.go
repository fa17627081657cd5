// Package store owns the on-disk artifact directory for recording sessions.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// Store is the artifact directory handle shared by the recorder and the
// transcription client.
type Store struct {
	dir string
}

// Open ensures the artifact directory exists and returns its handle.
// An empty dir selects the XDG data-home default.
func Open(dir string) (*Store, error) {
	resolved := strings.TrimSpace(dir)
	if resolved == "" {
		def, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		resolved = def
	}
	if err := os.MkdirAll(resolved, 0o700); err != nil {
		return nil, fmt.Errorf("create artifact dir %q: %w", resolved, err)
	}
	return &Store{dir: resolved}, nil
}

// DefaultDir selects XDG_DATA_HOME when available, otherwise ~/.local/share.
func DefaultDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "voxd", "recordings"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for artifact store: %w", err)
	}
	return filepath.Join(home, ".local", "share", "voxd", "recordings"), nil
}

// Dir returns the artifact directory root.
func (s *Store) Dir() string {
	return s.dir
}

// NewRecordingPath allocates a collision-resistant path for one session.
func (s *Store) NewRecordingPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("rec-%s.wav", xid.New()))
}

// Resolve maps a relative artifact reference under the store root.
// Absolute paths pass through untouched.
func (s *Store) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

// CreateTemp persists payload bytes as a short-lived artifact. The caller
// owns removal.
func (s *Store) CreateTemp(data []byte) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("inline-%s.wav", xid.New()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp artifact: %w", err)
	}
	return path, nil
}

// Remove deletes one artifact; absence is not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(s.Resolve(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup removes every stored artifact and reports how many were deleted.
func (s *Store) Cleanup() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".wav" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove %q: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
