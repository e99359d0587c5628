package switcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzhubr/claude-profiles/internal/config"
	"github.com/mzhubr/claude-profiles/internal/credstore"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

var testNow = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	cfg   *config.Config
	store *credstore.Store
	reg   *registry.Registry
	coord *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	cfg := &config.Config{
		HomeDir:             home,
		ProfilesRoot:        filepath.Join(home, ".claude-profiles"),
		LiveCredentialsPath: filepath.Join(home, ".claude", ".credentials.json"),
		SettingsPath:        filepath.Join(home, ".claude", "settings.json"),
		HostCommand:         "claude",
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := credstore.New(log)
	reg := registry.New(cfg.ProfilesRoot, store, log)

	coord := New(cfg, store, reg, log)
	coord.Now = func() time.Time { return testNow }
	coord.Confirm = func(string) bool {
		t.Fatal("unexpected confirmation prompt")
		return false
	}
	return &fixture{cfg: cfg, store: store, reg: reg, coord: coord}
}

// credJSON builds a credential file body. expiresIn is relative to testNow.
func credJSON(refreshToken string, expiresIn time.Duration) string {
	return fmt.Sprintf(
		`{"accessToken":"at-%s","refreshToken":"%s","expiresAt":%d,"subscriptionType":"max","sessionNote":"host-owned"}`,
		refreshToken, refreshToken, testNow.Add(expiresIn).UnixMilli(),
	)
}

func (f *fixture) writeLive(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(f.cfg.LiveCredentialsPath), 0o700))
	require.NoError(t, os.WriteFile(f.cfg.LiveCredentialsPath, []byte(content), 0o600))
}

func (f *fixture) writeSnapshot(t *testing.T, name, content string) {
	t.Helper()
	path := f.reg.SnapshotPath(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func (f *fixture) readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestCreateSnapshotsLiveAndSetsActive(t *testing.T) {
	f := newFixture(t)
	live := credJSON("rt-alpha", 9*time.Hour)
	f.writeLive(t, live)

	result, err := f.coord.Create("work")
	require.NoError(t, err)

	assert.Equal(t, "work", result.Name)
	assert.Equal(t, live, f.readFile(t, f.reg.SnapshotPath("work")))
	assert.True(t, result.HasExpiry)
	assert.Equal(t, 9.0, result.HoursRemaining)
	assert.Equal(t, "max", result.Subscription)

	active, ok := f.reg.Active()
	require.True(t, ok)
	assert.Equal(t, "work", active)

	names, err := f.reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, names)
}

func TestCreateWithoutLiveCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.Create("work")
	assert.ErrorIs(t, err, ErrNoLiveCredentials)
}

func TestCreateRejectsBadName(t *testing.T) {
	f := newFixture(t)
	f.writeLive(t, credJSON("rt", time.Hour))
	_, err := f.coord.Create("../escape")
	assert.Error(t, err)
}

func TestSwitchRejectsBadName(t *testing.T) {
	f := newFixture(t)
	live := credJSON("rt-a", time.Hour)
	f.writeLive(t, live)

	_, err := f.coord.Switch("../escape")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrProfileNotFound)
	assert.Equal(t, live, f.readFile(t, f.cfg.LiveCredentialsPath), "live file untouched")
}

func TestSwitchUnknownProfileLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	live := credJSON("rt-a", time.Hour)
	f.writeLive(t, live)
	require.NoError(t, f.reg.SetActive("a"))

	_, err := f.coord.Switch("ghost")
	assert.ErrorIs(t, err, registry.ErrProfileNotFound)

	assert.Equal(t, live, f.readFile(t, f.cfg.LiveCredentialsPath), "live file untouched")
	active, ok := f.reg.Active()
	require.True(t, ok)
	assert.Equal(t, "a", active, "marker untouched")
}

func TestSwitchSavesBackOnMatchingIdentity(t *testing.T) {
	f := newFixture(t)

	// Profile "a" was saved, then the host refreshed the live token in place:
	// same refresh token identity, different access token.
	stale := credJSON("rt-aaaaaaaa", 1*time.Hour)
	refreshed := credJSON("rt-aaaaaaaa", 8*time.Hour)
	bContent := credJSON("rt-bbbbbbbb", 8*time.Hour)

	f.writeSnapshot(t, "a", stale)
	f.writeSnapshot(t, "b", bContent)
	f.writeLive(t, refreshed)
	require.NoError(t, f.reg.SetActive("a"))

	result, err := f.coord.Switch("b")
	require.NoError(t, err)

	assert.Equal(t, "a", result.SavedBackTo)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, refreshed, f.readFile(t, f.reg.SnapshotPath("a")), "refresh captured into a's snapshot")
	assert.Equal(t, bContent, f.readFile(t, f.cfg.LiveCredentialsPath), "live now holds b's pre-switch snapshot")

	active, ok := f.reg.Active()
	require.True(t, ok)
	assert.Equal(t, "b", active)
}

func TestSwitchSkipsSaveBackOnForeignIdentity(t *testing.T) {
	f := newFixture(t)

	aContent := credJSON("rt-aaaaaaaa", time.Hour)
	bContent := credJSON("rt-bbbbbbbb", 8*time.Hour)
	foreign := credJSON("rt-someone-else", time.Hour)

	f.writeSnapshot(t, "a", aContent)
	f.writeSnapshot(t, "b", bContent)
	f.writeLive(t, foreign)
	require.NoError(t, f.reg.SetActive("a"))

	result, err := f.coord.Switch("b")
	require.NoError(t, err)

	assert.Empty(t, result.SavedBackTo)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "skipping save-back")
	assert.Equal(t, aContent, f.readFile(t, f.reg.SnapshotPath("a")), "a's snapshot protected")
	assert.Equal(t, bContent, f.readFile(t, f.cfg.LiveCredentialsPath), "switch still proceeds")
}

func TestSwitchSkipsSaveBackOnUnreadableLive(t *testing.T) {
	f := newFixture(t)

	aContent := credJSON("rt-aaaaaaaa", time.Hour)
	bContent := credJSON("rt-bbbbbbbb", 8*time.Hour)
	f.writeSnapshot(t, "a", aContent)
	f.writeSnapshot(t, "b", bContent)
	f.writeLive(t, "{corrupted")
	require.NoError(t, f.reg.SetActive("a"))

	result, err := f.coord.Switch("b")
	require.NoError(t, err)

	assert.Empty(t, result.SavedBackTo)
	assert.Equal(t, aContent, f.readFile(t, f.reg.SnapshotPath("a")))
	assert.Equal(t, bContent, f.readFile(t, f.cfg.LiveCredentialsPath))
}

func TestSwitchWithoutActiveMarkerWarnsAndProceeds(t *testing.T) {
	f := newFixture(t)
	bContent := credJSON("rt-bbbbbbbb", 8*time.Hour)
	f.writeSnapshot(t, "b", bContent)
	f.writeLive(t, credJSON("rt-orphan", time.Hour))

	result, err := f.coord.Switch("b")
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "no active profile")
	assert.Equal(t, bContent, f.readFile(t, f.cfg.LiveCredentialsPath))
}

func TestSwitchExpiredTargetGate(t *testing.T) {
	f := newFixture(t)
	expired := credJSON("rt-old", -3*time.Hour)
	f.writeSnapshot(t, "old", expired)
	live := credJSON("rt-live", time.Hour)
	f.writeLive(t, live)

	// Declined: nothing changes.
	var prompt string
	f.coord.Confirm = func(p string) bool {
		prompt = p
		return false
	}
	_, err := f.coord.Switch("old")
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, prompt, "3.0 hours ago")
	assert.Equal(t, live, f.readFile(t, f.cfg.LiveCredentialsPath))
	_, ok := f.reg.Active()
	assert.False(t, ok)

	// Accepted: the switch proceeds.
	f.coord.Confirm = func(string) bool { return true }
	result, err := f.coord.Switch("old")
	require.NoError(t, err)
	assert.Equal(t, "old", result.Name)
	assert.Equal(t, expired, f.readFile(t, f.cfg.LiveCredentialsPath))
}

func TestSwitchRoundTripRestoresByteIdenticalContent(t *testing.T) {
	f := newFixture(t)

	aContent := credJSON("rt-aaaaaaaa", 6*time.Hour)
	bContent := credJSON("rt-bbbbbbbb", 6*time.Hour)

	f.writeLive(t, aContent)
	_, err := f.coord.Create("a")
	require.NoError(t, err)

	f.writeSnapshot(t, "b", bContent)

	_, err = f.coord.Switch("b")
	require.NoError(t, err)
	assert.Equal(t, bContent, f.readFile(t, f.cfg.LiveCredentialsPath))

	_, err = f.coord.Switch("a")
	require.NoError(t, err)
	assert.Equal(t, aContent, f.readFile(t, f.cfg.LiveCredentialsPath), "round trip restores a's original bytes")
}

func TestVerifyInSync(t *testing.T) {
	f := newFixture(t)
	content := credJSON("rt-aaaaaaaa", 5*time.Hour)
	f.writeLive(t, content)
	_, err := f.coord.Create("a")
	require.NoError(t, err)

	result, err := f.coord.Verify()
	require.NoError(t, err)

	assert.True(t, result.HasActive)
	assert.Equal(t, "a", result.Active)
	assert.True(t, result.InSync)
	assert.Equal(t, result.LiveFingerprint, result.SnapshotFingerprint)
	assert.Equal(t, "valid", string(result.LiveStatus))
	assert.Equal(t, 5.0, result.HoursRemaining)
	assert.Empty(t, result.Findings)
}

func TestVerifyDetectsUnsavedRefresh(t *testing.T) {
	f := newFixture(t)
	f.writeLive(t, credJSON("rt-aaaaaaaa", time.Hour))
	_, err := f.coord.Create("a")
	require.NoError(t, err)

	// Host refreshes in place: same identity, new content.
	f.writeLive(t, credJSON("rt-aaaaaaaa", 9*time.Hour))

	result, err := f.coord.Verify()
	require.NoError(t, err)
	assert.False(t, result.InSync)
	require.NotEmpty(t, result.Findings)
	assert.Contains(t, result.Findings[0], "in-place token refresh")
}

func TestVerifyDetectsStaleMarker(t *testing.T) {
	f := newFixture(t)
	f.writeLive(t, credJSON("rt-aaaaaaaa", time.Hour))
	_, err := f.coord.Create("a")
	require.NoError(t, err)

	// The host re-logged into a different account out of band.
	f.writeLive(t, credJSON("rt-other-account", time.Hour))

	result, err := f.coord.Verify()
	require.NoError(t, err)
	assert.False(t, result.InSync)
	require.NotEmpty(t, result.Findings)
	assert.Contains(t, result.Findings[0], "different account")
}

func TestVerifyNoLiveNoActive(t *testing.T) {
	f := newFixture(t)
	result, err := f.coord.Verify()
	require.NoError(t, err)

	assert.False(t, result.HasActive)
	assert.Equal(t, "-", result.LiveFingerprint)
	assert.Len(t, result.Findings, 2)
}
