package registry

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzhubr/claude-profiles/internal/credstore"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(t.TempDir(), credstore.New(log), log)
}

func addProfile(t *testing.T, reg *Registry, name, refreshToken string) {
	t.Helper()
	path := reg.SnapshotPath(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"refreshToken":"`+refreshToken+`"}`), 0o600))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("work"))
	assert.NoError(t, ValidateName("team.staging_2"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("  "))
	assert.Error(t, ValidateName("a/b"))
	assert.Error(t, ValidateName("../escape"))
	assert.Error(t, ValidateName(".."))
	assert.Error(t, ValidateName("with space"))
	assert.Error(t, ValidateName("work-home"))
	assert.Error(t, ValidateName("-home"))
}

func TestValidateNameRejectsSandboxCollision(t *testing.T) {
	// "work-home" would share a directory with profile "work"'s sandbox,
	// so deleting "work" would silently destroy it.
	reg := newTestRegistry(t)
	addProfile(t, reg, "work", "rt-work")

	assert.Error(t, ValidateName("work-home"))
	assert.Equal(t, reg.SandboxDir("work"), filepath.Join(reg.Root(), "work-home"))
}

func TestListSortedAndFiltered(t *testing.T) {
	reg := newTestRegistry(t)
	addProfile(t, reg, "zeta", "rt-z")
	addProfile(t, reg, "alpha", "rt-a")

	// A directory without a readable snapshot is not a profile.
	require.NoError(t, os.MkdirAll(filepath.Join(reg.Root(), "not-a-profile"), 0o700))

	// A directory with a malformed snapshot is not a profile either.
	broken := reg.SnapshotPath("broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(broken), 0o700))
	require.NoError(t, os.WriteFile(broken, []byte("{oops"), 0o600))

	names, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestListMissingRoot(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	reg := New(filepath.Join(t.TempDir(), "never-created"), credstore.New(log), log)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestActiveMarkerRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)

	_, ok := reg.Active()
	assert.False(t, ok, "no marker yet")

	require.NoError(t, reg.SetActive("work"))

	// The marker holds exactly the name, no trailing newline.
	raw, err := os.ReadFile(filepath.Join(reg.Root(), ".active-profile"))
	require.NoError(t, err)
	assert.Equal(t, "work", string(raw))

	name, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, "work", name)

	require.NoError(t, reg.ClearActive())
	_, ok = reg.Active()
	assert.False(t, ok)

	// ClearActive is idempotent.
	require.NoError(t, reg.ClearActive())
}

func TestActiveToleratesBOMAndWhitespace(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, os.MkdirAll(reg.Root(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(reg.Root(), ".active-profile"), []byte("\uFEFF  work \n"), 0o600))

	name, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, "work", name)
}

func TestDeleteClearsMarkerWhenActive(t *testing.T) {
	reg := newTestRegistry(t)
	addProfile(t, reg, "work", "rt-w")
	addProfile(t, reg, "personal", "rt-p")
	require.NoError(t, reg.SetActive("work"))

	// Sandbox contents must not outlive the profile.
	sandboxCreds := filepath.Join(reg.SandboxDir("work"), ".claude", ".credentials.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(sandboxCreds), 0o700))
	require.NoError(t, os.WriteFile(sandboxCreds, []byte(`{"refreshToken":"rt-w"}`), 0o600))

	require.NoError(t, reg.Delete("work"))

	assert.False(t, reg.Exists("work"))
	assert.NoDirExists(t, reg.SandboxDir("work"))
	_, ok := reg.Active()
	assert.False(t, ok, "deleting the active profile clears the marker")

	// Deleting a non-active profile leaves the marker alone.
	require.NoError(t, reg.SetActive("personal"))
	addProfile(t, reg, "scratch", "rt-s")
	require.NoError(t, reg.Delete("scratch"))
	name, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, "personal", name)
}

func TestDeleteUnknownProfile(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Delete("ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
