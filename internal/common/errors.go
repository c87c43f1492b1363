// Package common defines shared constants and sentinel errors used across the
// Linkup server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// One-time-passcode errors. ErrOTPInvalidOrExpired is the combined
	// lookup+expiry failure used by the password-reset flow, which does not
	// distinguish a wrong code from a stale one.
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPInvalidOrExpired = errors.New("invalid or expired otp")

	// ErrInvalidToken covers malformed, tampered, and expired session tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInternal masks infrastructure failures. Details are logged server-side
	// and never sent to clients.
	ErrInternal = errors.New("internal error")
)
