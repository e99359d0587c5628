// Package switcher orchestrates credential profile transitions over the
// host's shared live credential file. No lock is available on that file, so
// every mutation is a read-decide-write-verify cycle and every race outcome
// degrades to a warning rather than a failure.
package switcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mzhubr/claude-profiles/internal/config"
	"github.com/mzhubr/claude-profiles/internal/credstore"
	"github.com/mzhubr/claude-profiles/internal/expiry"
	"github.com/mzhubr/claude-profiles/internal/prompts"
	"github.com/mzhubr/claude-profiles/internal/registry"
)

// ErrNoLiveCredentials means create was invoked with no readable live
// credential file; the user must authenticate with the host first.
var ErrNoLiveCredentials = errors.New("no live credentials found")

// ErrAborted means the user declined a confirmation gate.
var ErrAborted = errors.New("aborted")

// Coordinator transitions the live credential file between profiles.
type Coordinator struct {
	cfg   *config.Config
	store *credstore.Store
	reg   *registry.Registry
	log   *logrus.Logger

	// Confirm gates the switch onto an expired credential. Defaults to the
	// interactive terminal prompt.
	Confirm prompts.Confirmer

	// Now is injected for testability.
	Now func() time.Time
}

// New creates a Coordinator.
func New(cfg *config.Config, store *credstore.Store, reg *registry.Registry, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		store:   store,
		reg:     reg,
		log:     log,
		Confirm: prompts.Confirm,
		Now:     time.Now,
	}
}

// CreateResult reports a saved snapshot.
type CreateResult struct {
	Name           string  `json:"name"`
	SnapshotPath   string  `json:"snapshot_path"`
	Fingerprint    string  `json:"fingerprint"`
	Subscription   string  `json:"subscription"`
	HasExpiry      bool    `json:"has_expiry"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// Create snapshots the live credential file under name and marks the profile
// active. Overwrites any existing snapshot for name.
func (c *Coordinator) Create(name string) (*CreateResult, error) {
	if err := registry.ValidateName(name); err != nil {
		return nil, err
	}

	rec, ok := c.store.Read(c.cfg.LiveCredentialsPath)
	if !ok {
		return nil, fmt.Errorf("%w at %s", ErrNoLiveCredentials, c.cfg.LiveCredentialsPath)
	}

	snapshot := c.reg.SnapshotPath(name)
	if err := c.store.Copy(c.cfg.LiveCredentialsPath, snapshot); err != nil {
		return nil, err
	}
	if err := c.reg.SetActive(name); err != nil {
		return nil, err
	}

	result := &CreateResult{
		Name:         name,
		SnapshotPath: snapshot,
		Fingerprint:  c.store.Fingerprint(snapshot),
		Subscription: rec.Subscription(),
	}
	if exp, ok := rec.Expiry(); ok {
		result.HasExpiry = true
		result.HoursRemaining = expiry.HoursRemaining(exp, c.Now().UnixMilli())
	}
	return result, nil
}

// SwitchResult reports a completed switch.
type SwitchResult struct {
	Name        string   `json:"name"`
	SavedBackTo string   `json:"saved_back_to,omitempty"`
	Fingerprint string   `json:"fingerprint"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Switch points the live credential file at target's snapshot.
//
// Before overwriting, the current profile's snapshot is refreshed from the
// live file, but only when both share the same refresh-token identity - an
// in-place token refresh by the host is worth capturing, a foreign session's
// credentials are not. Identity mismatch, unreadable records, and post-switch
// verification failures all degrade to warnings; the only hard failures are
// an unknown target and I/O errors on the final copy.
func (c *Coordinator) Switch(target string) (*SwitchResult, error) {
	if err := registry.ValidateName(target); err != nil {
		return nil, err
	}
	targetSnapshot := c.reg.SnapshotPath(target)
	targetRec, ok := c.store.Read(targetSnapshot)
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrProfileNotFound, target)
	}

	// Expired target credentials will almost certainly fail downstream, so
	// proceeding silently is disallowed. Default answer is no.
	if exp, ok := targetRec.Expiry(); ok {
		nowMs := c.Now().UnixMilli()
		if expiry.IsExpired(exp, nowMs) {
			ago := -expiry.HoursRemaining(exp, nowMs)
			prompt := fmt.Sprintf("profile %q expired %.1f hours ago; switching will likely require a fresh login", target, ago)
			if !c.Confirm(prompt) {
				return nil, fmt.Errorf("%w: switch to expired profile %q declined", ErrAborted, target)
			}
		}
	}

	result := &SwitchResult{Name: target}
	c.saveBack(result)

	if err := c.store.Copy(targetSnapshot, c.cfg.LiveCredentialsPath); err != nil {
		return nil, err
	}
	if err := c.reg.SetActive(target); err != nil {
		return nil, err
	}

	c.verifySwitch(result, targetSnapshot, targetRec)
	return result, nil
}

// saveBack refreshes the currently-active profile's snapshot from the live
// file when, and only when, both carry the same refresh-token identity.
func (c *Coordinator) saveBack(result *SwitchResult) {
	current, ok := c.reg.Active()
	if !ok {
		c.warn(result, "no active profile recorded; skipping save-back")
		return
	}

	liveRec, ok := c.store.Read(c.cfg.LiveCredentialsPath)
	if !ok {
		c.warn(result, "live credential file is missing or unreadable; skipping save-back")
		return
	}

	currentRec, ok := c.store.Read(c.reg.SnapshotPath(current))
	if !ok {
		c.warn(result, fmt.Sprintf("active profile %q has no readable snapshot; skipping save-back", current))
		return
	}

	liveID, currentID := liveRec.Identity(), currentRec.Identity()
	if liveID == "" || currentID == "" || liveID != currentID {
		c.warn(result, fmt.Sprintf("live credentials do not match profile %q (different account?); skipping save-back to protect the saved snapshot", current))
		return
	}

	if err := c.store.Copy(c.cfg.LiveCredentialsPath, c.reg.SnapshotPath(current)); err != nil {
		c.warn(result, fmt.Sprintf("save-back to profile %q failed: %v", current, err))
		return
	}
	result.SavedBackTo = current
}

// verifySwitch re-reads the live file and confirms it now matches the target
// snapshot. Advisory only - a concurrent host session can overwrite the file
// at any moment, and no prior state is recoverable once overwritten.
func (c *Coordinator) verifySwitch(result *SwitchResult, targetSnapshot string, targetRec *credstore.Record) {
	wantFP := c.store.Fingerprint(targetSnapshot)
	gotFP := c.store.Fingerprint(c.cfg.LiveCredentialsPath)
	result.Fingerprint = gotFP

	liveRec, ok := c.store.Read(c.cfg.LiveCredentialsPath)
	if !ok || gotFP != wantFP || liveRec.Identity() != targetRec.Identity() {
		c.warn(result, "live credential file changed during the switch (is another session running?); run 'verify' to inspect the current state")
	}
}

func (c *Coordinator) warn(result *SwitchResult, message string) {
	result.Warnings = append(result.Warnings, message)
	c.log.WithField("profile", result.Name).Warn(message)
}
