// Package scan discovers convertible documents under an input root.
package scan

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for discovery.
var (
	ErrRootNotFound = errors.New("input root not found")
	ErrNotDirectory = errors.New("input root is not a directory")
)

// Descriptor identifies one discovered file. Immutable once produced;
// consumed exactly once by the per-file conversion.
type Descriptor struct {
	AbsPath string // absolute path to the source file
	RelPath string // path relative to the scan root
	Name    string // base name without extension, original case
	Ext     string // extension, lowercased, with leading dot
}

// Scan walks root depth-first and returns a descriptor for every regular
// file whose lowercased extension is in exts. Unreadable directories are
// logged and skipped; the walk continues over siblings. Symlinks are never
// followed. Output is sorted by RelPath so repeated scans of an unchanged
// tree produce the same order.
func Scan(root string, exts map[string]bool, log *slog.Logger) ([]Descriptor, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving input root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("reading input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	files := make([]Descriptor, 0, 64)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission or transient I/O failure on a directory: skip it,
			// keep scanning siblings.
			log.Warn("skipping unreadable directory", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Regular files only; a symlink never matches, so cycles through
		// linked directories or files cannot occur.
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !exts[ext] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		files = append(files, Descriptor{
			AbsPath: path,
			RelPath: rel,
			Name:    strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:     ext,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
