package credstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// fingerprintLen is how many hex characters of the content hash are shown.
const fingerprintLen = 12

// Store performs the low-level credential file I/O. All operations are
// synchronous and idempotent; re-running a Copy with an unchanged source
// reproduces the same destination state.
type Store struct {
	log *logrus.Logger
}

// New creates a Store logging through the given logger.
func New(log *logrus.Logger) *Store {
	return &Store{log: log}
}

// Read parses the credential file at path. Returns (nil, false) when the file
// is missing, unreadable, or not a JSON object - malformed content is treated
// as "no usable credentials", never an error.
func (s *Store) Read(path string) (*Record, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.WithFields(logrus.Fields{
			"path":  path,
			"error": err,
		}).Warn("credential file is not valid JSON, treating as absent")
		return nil, false
	}
	return &rec, true
}

// Copy duplicates the credential file at src onto dst byte-exactly,
// overwriting any existing destination. Parent directories are created as
// needed. Fails when the source is missing or the destination is unwritable.
func (s *Store) Copy(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading source credential file: %w", err)
	}
	if err := writeFileAtomic(dst, raw, 0o600); err != nil {
		return fmt.Errorf("writing destination credential file: %w", err)
	}
	return nil
}

// Write marshals the record to path atomically, preserving Extra fields.
func (s *Store) Write(path string, rec *Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing credential record: %w", err)
	}
	raw = append(raw, '\n')
	if err := writeFileAtomic(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Fingerprint returns a short content hash of the file at path, for display
// and post-switch verification only. Returns "-" when the file is unreadable.
func (s *Store) Fingerprint(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "-"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credstore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing file atomically: %w", err)
	}
	return nil
}
