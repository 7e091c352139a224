// Package backup keeps timestamped snapshots of ~/.claude.json.
//
// A snapshot is taken before every switch so that a bad write, or a
// concurrent write by Claude Code that the switch overwrote, can be undone
// by hand with `claude-accounts backups --restore`.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	snapshotPrefix = "claude_"
	snapshotSuffix = ".json"
	timeLayout     = "20060102_150405.000"
)

// Mode selects when Keeper.Snapshot writes a file.
type Mode string

const (
	ModeAlways Mode = "always"
	ModeSmart  Mode = "smart" // skip when the newest snapshot has identical content
	ModeNever  Mode = "never"
)

// Snapshot describes one stored copy.
type Snapshot struct {
	Name    string
	Path    string
	TakenAt time.Time
	Size    int64
}

// Keeper manages the snapshot directory.
type Keeper struct {
	dir  string
	mode Mode
	max  int
	now  func() time.Time
}

// NewKeeper creates a keeper writing to dir. max of 0 keeps every snapshot.
func NewKeeper(dir string, mode Mode, max int) *Keeper {
	if mode == "" {
		mode = ModeSmart
	}
	return &Keeper{dir: dir, mode: mode, max: max, now: time.Now}
}

// Dir returns the snapshot directory.
func (k *Keeper) Dir() string {
	return k.dir
}

// Snapshot copies src into the snapshot directory and rotates old copies.
// It returns the snapshot name, or "" if nothing was written (mode never,
// src missing, or unchanged since the newest snapshot in smart mode).
func (k *Keeper) Snapshot(src string) (string, error) {
	if k.mode == ModeNever {
		return "", nil
	}
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return "", nil
	}

	if k.mode == ModeSmart {
		same, err := k.matchesNewest(src)
		if err != nil {
			return "", err
		}
		if same {
			return "", nil
		}
	}

	name := snapshotPrefix + k.now().Format(timeLayout) + snapshotSuffix
	if err := copyFile(src, filepath.Join(k.dir, name)); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", src, err)
	}

	if err := k.Rotate(); err != nil {
		return name, fmt.Errorf("rotate snapshots: %w", err)
	}
	return name, nil
}

// List returns snapshots oldest first.
func (k *Keeper) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		takenAt, err := time.ParseInLocation(timeLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Snapshot{
			Name:    name,
			Path:    filepath.Join(k.dir, name),
			TakenAt: takenAt,
			Size:    info.Size(),
		})
	}

	// Names embed the timestamp, so lexical order is chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Rotate deletes the oldest snapshots beyond the configured limit.
func (k *Keeper) Rotate() error {
	if k.max <= 0 {
		return nil
	}

	snaps, err := k.List()
	if err != nil {
		return err
	}
	if len(snaps) <= k.max {
		return nil
	}

	for _, s := range snaps[:len(snaps)-k.max] {
		if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete old snapshot %s: %w", s.Name, err)
		}
	}
	return nil
}

// Restore copies the named snapshot back over dst. The current dst is
// snapshotted first (subject to the keeper's mode) and the name of that
// snapshot is returned, "" if none was taken.
func (k *Keeper) Restore(name, dst string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid snapshot name: %q", name)
	}
	src := filepath.Join(k.dir, name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("snapshot %s not found", name)
		}
		return "", err
	}

	// Stage the snapshot first; rotation below may delete it.
	staged := dst + ".restore"
	if err := copyFile(src, staged); err != nil {
		return "", fmt.Errorf("restore %s: %w", name, err)
	}

	saved, err := k.Snapshot(dst)
	if err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("snapshot before restore: %w", err)
	}

	if err := os.Rename(staged, dst); err != nil {
		os.Remove(staged)
		return saved, fmt.Errorf("restore %s: %w", name, err)
	}
	return saved, nil
}

func (k *Keeper) matchesNewest(src string) (bool, error) {
	snaps, err := k.List()
	if err != nil {
		return false, err
	}
	if len(snaps) == 0 {
		return false, nil
	}

	current, err := hashFile(src)
	if err != nil {
		return false, err
	}
	newest, err := hashFile(snaps[len(snaps)-1].Path)
	if err != nil {
		return false, nil
	}
	return current == newest, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// Create temp file for atomic write
	tmpPath := dst + ".tmp"
	dstFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := dstFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, dst)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
