// Package credstore reads, writes, and copies the host application's JSON
// credential files. The file format is owned by the host; this package models
// the handful of fields the tool understands and preserves everything else
// verbatim so a read-modify-write cycle never drops host-owned fields.
package credstore

import (
	"encoding/json"
	"fmt"
)

// Subscription tiers the host application is known to report.
const (
	SubscriptionMax     = "max"
	SubscriptionTeam    = "team"
	SubscriptionPro     = "pro"
	SubscriptionFree    = "free"
	SubscriptionUnknown = "unknown"
)

// identitySuffixLen is how many trailing characters of the refresh token form
// the identity fingerprint. A weak hint for display and save-back guarding,
// never an authorization input.
const identitySuffixLen = 8

// Record is one credential file's content: the fields this tool understands
// plus an Extra bag holding every unrecognized field untouched.
type Record struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        int64 // epoch milliseconds; 0 means absent
	SubscriptionType string
	RateLimitTier    string

	// Extra holds fields the tool does not model, preserved verbatim.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON splits the object into known fields and the Extra bag.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	// json.Unmarshal leaves the map nil for a top-level null.
	if fields == nil {
		return fmt.Errorf("credential record must be a JSON object")
	}

	*r = Record{Extra: map[string]json.RawMessage{}}
	for key, raw := range fields {
		switch key {
		case "accessToken":
			if err := json.Unmarshal(raw, &r.AccessToken); err != nil {
				return fmt.Errorf("accessToken: %w", err)
			}
		case "refreshToken":
			if err := json.Unmarshal(raw, &r.RefreshToken); err != nil {
				return fmt.Errorf("refreshToken: %w", err)
			}
		case "expiresAt":
			ms, err := parseEpochMillis(raw)
			if err != nil {
				return fmt.Errorf("expiresAt: %w", err)
			}
			r.ExpiresAt = ms
		case "subscriptionType":
			if err := json.Unmarshal(raw, &r.SubscriptionType); err != nil {
				return fmt.Errorf("subscriptionType: %w", err)
			}
		case "rateLimitTier":
			if err := json.Unmarshal(raw, &r.RateLimitTier); err != nil {
				return fmt.Errorf("rateLimitTier: %w", err)
			}
		default:
			r.Extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON reassembles the known fields and the Extra bag into one object.
func (r *Record) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	for key, raw := range r.Extra {
		fields[key] = raw
	}

	set := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		fields[key] = raw
		return nil
	}

	if r.AccessToken != "" {
		if err := set("accessToken", r.AccessToken); err != nil {
			return nil, err
		}
	}
	if r.RefreshToken != "" {
		if err := set("refreshToken", r.RefreshToken); err != nil {
			return nil, err
		}
	}
	if r.ExpiresAt != 0 {
		if err := set("expiresAt", r.ExpiresAt); err != nil {
			return nil, err
		}
	}
	if r.SubscriptionType != "" {
		if err := set("subscriptionType", r.SubscriptionType); err != nil {
			return nil, err
		}
	}
	if r.RateLimitTier != "" {
		if err := set("rateLimitTier", r.RateLimitTier); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

// Expiry returns the expiry timestamp in epoch milliseconds, if present.
func (r *Record) Expiry() (int64, bool) {
	if r.ExpiresAt == 0 {
		return 0, false
	}
	return r.ExpiresAt, true
}

// Identity returns the trailing characters of the refresh token used as a
// weak same-account hint. Empty when no refresh token is present.
func (r *Record) Identity() string {
	if r.RefreshToken == "" {
		return ""
	}
	if len(r.RefreshToken) <= identitySuffixLen {
		return r.RefreshToken
	}
	return r.RefreshToken[len(r.RefreshToken)-identitySuffixLen:]
}

// Subscription normalizes the subscription tier to a known value.
func (r *Record) Subscription() string {
	switch r.SubscriptionType {
	case SubscriptionMax, SubscriptionTeam, SubscriptionPro, SubscriptionFree:
		return r.SubscriptionType
	default:
		return SubscriptionUnknown
	}
}

// parseEpochMillis accepts integer or float JSON numbers. Hosts have been
// observed writing the timestamp both ways.
func parseEpochMillis(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if ms, err := n.Int64(); err == nil {
		return ms, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
