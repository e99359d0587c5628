// Package registry enumerates saved credential profiles and tracks which one
// is active. A profile is a directory under the profiles root holding a
// credential snapshot; the active profile is named by a plain-text marker
// file.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mzhubr/claude-profiles/internal/credstore"
)

// ErrProfileNotFound means the requested name has no stored credential record.
var ErrProfileNotFound = errors.New("profile not found")

const (
	// markerFile names the active profile, stored as the bare profile name
	// with no trailing newline. Callers depend on exact-match comparison.
	markerFile = ".active-profile"

	// snapshotFile is the credential snapshot inside each profile directory.
	snapshotFile = ".credentials.json"

	// sandboxSuffix marks the isolated home directory paired with a profile.
	sandboxSuffix = "-home"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateName rejects profile names that are empty, contain path
// separators, or would collide with the marker file or a sandbox directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must match [A-Za-z0-9._-]+", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid profile name %q", name)
	}
	if strings.HasSuffix(name, sandboxSuffix) {
		return fmt.Errorf("invalid profile name %q: the %q suffix is reserved for sandbox directories", name, sandboxSuffix)
	}
	return nil
}

// Registry resolves profile paths and owns the active marker.
type Registry struct {
	root  string
	store *credstore.Store
	log   *logrus.Logger
}

// New creates a Registry rooted at root.
func New(root string, store *credstore.Store, log *logrus.Logger) *Registry {
	return &Registry{root: root, store: store, log: log}
}

// Root returns the profiles root directory.
func (r *Registry) Root() string {
	return r.root
}

// SnapshotPath is where a profile's credential snapshot lives.
func (r *Registry) SnapshotPath(name string) string {
	return filepath.Join(r.root, name, snapshotFile)
}

// MirrorPath is the profile-local mirror consumed by isolated launches.
func (r *Registry) MirrorPath(name string) string {
	return filepath.Join(r.root, name, ".claude", snapshotFile)
}

// SandboxDir is the isolated home directory paired with a profile, created
// lazily on first launch.
func (r *Registry) SandboxDir(name string) string {
	return filepath.Join(r.root, name+sandboxSuffix)
}

func (r *Registry) markerPath() string {
	return filepath.Join(r.root, markerFile)
}

// Exists reports whether a readable credential snapshot is stored for name.
func (r *Registry) Exists(name string) bool {
	_, ok := r.store.Read(r.SnapshotPath(name))
	return ok
}

// List returns the names of all saved profiles, alphabetically sorted.
// Only directories containing a readable credential snapshot count.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if r.Exists(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Active returns the name in the active marker, or ok=false when the marker
// is missing or empty. Surrounding whitespace and a UTF-8 BOM are tolerated;
// editors have been known to introduce both.
func (r *Registry) Active() (string, bool) {
	raw, err := os.ReadFile(r.markerPath())
	if err != nil {
		return "", false
	}
	name := strings.TrimPrefix(string(raw), "\uFEFF")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}

// SetActive overwrites the marker with exactly name, no trailing newline.
func (r *Registry) SetActive(name string) error {
	if err := os.MkdirAll(r.root, 0o700); err != nil {
		return fmt.Errorf("creating profiles root: %w", err)
	}
	if err := os.WriteFile(r.markerPath(), []byte(name), 0o600); err != nil {
		return fmt.Errorf("writing active marker: %w", err)
	}
	return nil
}

// ClearActive removes the marker. Idempotent.
func (r *Registry) ClearActive() error {
	if err := os.Remove(r.markerPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing active marker: %w", err)
	}
	return nil
}

// Delete removes a profile's directory and its sandbox. The sandbox holds a
// credential copy, so it must not outlive the profile. Clears the marker when
// it pointed at the deleted profile.
func (r *Registry) Delete(name string) error {
	if !r.Exists(name) {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	if err := os.RemoveAll(filepath.Join(r.root, name)); err != nil {
		return fmt.Errorf("removing profile directory: %w", err)
	}
	if err := os.RemoveAll(r.SandboxDir(name)); err != nil {
		return fmt.Errorf("removing profile sandbox: %w", err)
	}

	if active, ok := r.Active(); ok && active == name {
		if err := r.ClearActive(); err != nil {
			return err
		}
		r.log.WithField("profile", name).Info("cleared active marker for deleted profile")
	}
	return nil
}
