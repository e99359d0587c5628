// Package expiry evaluates credential expiration state from epoch-millisecond
// timestamps. All functions are pure; callers inject the current time so the
// package never reads a wall clock.
package expiry

import "math"

// Status classifies how close a credential is to expiring.
type Status string

const (
	StatusValid        Status = "valid"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusUnknown      Status = "unknown"
)

// expiringSoonWindowMs is the remaining lifetime below which a credential is
// flagged as expiring soon (15 minutes).
const expiringSoonWindowMs = 15 * 60 * 1000

// IsExpired reports whether a credential expiring at expiresAtMs is expired
// at nowMs. A credential expiring exactly now is NOT expired.
func IsExpired(expiresAtMs, nowMs int64) bool {
	return nowMs > expiresAtMs
}

// HoursRemaining returns the remaining lifetime in hours, rounded to one
// decimal place. Negative values mean the credential is already expired and
// are never clamped; callers depend on the sign.
func HoursRemaining(expiresAtMs, nowMs int64) float64 {
	hours := float64(expiresAtMs-nowMs) / float64(60*60*1000)
	return math.Round(hours*10) / 10
}

// Classify buckets the remaining lifetime into a display status.
func Classify(expiresAtMs, nowMs int64) Status {
	if IsExpired(expiresAtMs, nowMs) {
		return StatusExpired
	}
	if expiresAtMs-nowMs <= expiringSoonWindowMs {
		return StatusExpiringSoon
	}
	return StatusValid
}
