package switcher

import (
	"fmt"
	"time"

	"github.com/mzhubr/claude-profiles/internal/credstore"
	"github.com/mzhubr/claude-profiles/internal/expiry"
)

// VerifyResult is the diagnostic comparison of the live credential file
// against the active profile's snapshot.
type VerifyResult struct {
	Active              string        `json:"active,omitempty"`
	HasActive           bool          `json:"has_active"`
	LiveFingerprint     string        `json:"live_fingerprint"`
	SnapshotFingerprint string        `json:"snapshot_fingerprint,omitempty"`
	LiveIdentity        string        `json:"live_identity,omitempty"`
	SnapshotIdentity    string        `json:"snapshot_identity,omitempty"`
	InSync              bool          `json:"in_sync"`
	LiveStatus          expiry.Status `json:"live_status"`
	HoursRemaining      float64       `json:"hours_remaining"`
	TokenSubject        string        `json:"token_subject,omitempty"`
	Findings            []string      `json:"findings,omitempty"`
}

// Verify compares the live credential file with the active profile's
// snapshot and reports everything it can observe. Purely diagnostic; nothing
// is mutated.
func (c *Coordinator) Verify() (*VerifyResult, error) {
	result := &VerifyResult{
		LiveStatus:      expiry.StatusUnknown,
		LiveFingerprint: c.store.Fingerprint(c.cfg.LiveCredentialsPath),
	}

	liveRec, liveOK := c.store.Read(c.cfg.LiveCredentialsPath)
	if !liveOK {
		result.Findings = append(result.Findings, fmt.Sprintf("live credential file at %s is missing or unreadable", c.cfg.LiveCredentialsPath))
	} else {
		result.LiveIdentity = liveRec.Identity()
		if exp, ok := liveRec.Expiry(); ok {
			nowMs := c.Now().UnixMilli()
			result.LiveStatus = expiry.Classify(exp, nowMs)
			result.HoursRemaining = expiry.HoursRemaining(exp, nowMs)
		} else {
			result.Findings = append(result.Findings, "live credentials carry no expiry timestamp")
		}
		c.crossCheckClaims(result, liveRec)
	}

	active, ok := c.reg.Active()
	if !ok {
		result.Findings = append(result.Findings, "no active profile recorded")
		return result, nil
	}
	result.Active = active
	result.HasActive = true

	snapshot := c.reg.SnapshotPath(active)
	result.SnapshotFingerprint = c.store.Fingerprint(snapshot)

	snapRec, ok := c.store.Read(snapshot)
	if !ok {
		result.Findings = append(result.Findings, fmt.Sprintf("active profile %q has no readable snapshot", active))
		return result, nil
	}
	result.SnapshotIdentity = snapRec.Identity()

	result.InSync = liveOK && result.LiveFingerprint == result.SnapshotFingerprint
	if liveOK && !result.InSync {
		if result.LiveIdentity == result.SnapshotIdentity {
			result.Findings = append(result.Findings, "live file differs from the snapshot but belongs to the same account; most likely an in-place token refresh not yet saved back")
		} else {
			result.Findings = append(result.Findings, fmt.Sprintf("live credentials belong to a different account than profile %q; the marker is stale", active))
		}
	}
	return result, nil
}

// crossCheckClaims compares the stored expiresAt against the access token's
// own exp claim when the token is a decodable JWT.
func (c *Coordinator) crossCheckClaims(result *VerifyResult, rec *credstore.Record) {
	claims, ok := credstore.InspectAccessToken(rec)
	if !ok {
		return
	}
	result.TokenSubject = claims.Subject

	exp, hasExp := rec.Expiry()
	if !claims.HasExpiry || !hasExp {
		return
	}
	drift := claims.ExpiresAt.Sub(time.UnixMilli(exp))
	if drift < 0 {
		drift = -drift
	}
	if drift > time.Minute {
		result.Findings = append(result.Findings, fmt.Sprintf("stored expiresAt and the access token's exp claim disagree by %s", drift.Round(time.Second)))
	}
}
