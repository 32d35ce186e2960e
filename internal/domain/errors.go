package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailUnconfirmed blocks sign-in until the confirmation workflow completed.
	ErrEmailUnconfirmed = errors.New("email not confirmed")
	// ErrRateLimited signals temporary lockout after repeated failed attempts.
	ErrRateLimited = errors.New("rate limited")

	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionRevoked = errors.New("session revoked")
	ErrSessionExpired = errors.New("session expired")

	// ErrExclusivityViolation is returned when a mutation would leave more than
	// one exclusive-category role assigned for the same user and event.
	ErrExclusivityViolation = errors.New("exclusive role already assigned")
	// ErrFeeNotConfigured blocks registration when no fee record exists for the
	// (event, role) pair. Billing is never silently skipped.
	ErrFeeNotConfigured = errors.New("registration fee not configured")
	// ErrIntegrityFault marks a confirmed user holding zero roles: a data-setup
	// error, not a user-input error, and never silently recovered.
	ErrIntegrityFault = errors.New("integrity fault: confirmed user without roles")
	// ErrPostconditionFailed reports a post-mutation read that does not match
	// the requested assignment set, so callers can retry or alert.
	ErrPostconditionFailed = errors.New("assignment postcondition failed")
)
