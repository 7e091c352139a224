// Package claudecfg reads and writes the Claude Code config file
// (~/.claude.json), which holds both Claude Code's own session state and
// the account list kept by claude-accounts.
package claudecfg

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Error kinds returned by Store. Use errors.Is to test for them.
var (
	ErrNotFound  = errors.New("config file not found")
	ErrMalformed = errors.New("config file is not valid JSON")
	ErrIO        = errors.New("config file i/o error")
	ErrConflict  = errors.New("config file changed since it was loaded")
)

// DefaultPath returns the location of the Claude Code config file.
// CLAUDE_CONFIG_PATH overrides the default of ~/.claude.json.
func DefaultPath() string {
	if p := os.Getenv("CLAUDE_CONFIG_PATH"); p != "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".claude.json"
	}
	return filepath.Join(homeDir, ".claude.json")
}

// Store loads and persists a Document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for path. An empty path uses DefaultPath.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the document.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Debug("loaded claude config", "path", s.path, "bytes", len(data))
	return doc, nil
}

// Save writes the whole document. The file is replaced atomically: the new
// content goes to a temp file in the same directory which is then renamed
// over the target, so readers see either the old or the new document.
func (s *Store) Save(doc *Document) error {
	return s.save(doc, false)
}

// SaveChecked is Save, but first verifies the file on disk still has the
// digest doc was loaded with. It returns ErrConflict when another process
// rewrote the file in between. The check narrows the race window; it does
// not close it.
func (s *Store) SaveChecked(doc *Document) error {
	return s.save(doc, true)
}

func (s *Store) save(doc *Document, checked bool) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if checked && doc.Digest() != "" {
		current, err := os.ReadFile(s.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
		}
		if digest(current) != doc.Digest() {
			return fmt.Errorf("%w: %s", ErrConflict, s.path)
		}
	}

	target, err := resolveTarget(s.path)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrIO, s.path, err)
	}

	perm := fs.FileMode(0600)
	if st, err := os.Stat(target); err == nil {
		perm = st.Mode().Perm()
	}

	if err := writeFileAtomic(target, data, perm); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, s.path, err)
	}
	doc.digest = digest(data)
	s.logger.Debug("saved claude config", "path", s.path, "target", target, "bytes", len(data))
	return nil
}

// resolveTarget follows symlinks so a linked ~/.claude.json (dotfiles) is
// updated in place of the link. A path that does not exist yet, or a
// dangling link, is written as given.
func resolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		return "", err
	}
	return resolved, nil
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
