// Package common defines shared constants and sentinel errors used across
// the store, sync and outbound-channel layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository / store errors.
	ErrNotFound     = errors.New("not found")
	ErrDateConflict = errors.New("another record already exists for this date")
	ErrInvalidDate  = errors.New("invalid entry date")
	ErrInvalidMood  = errors.New("mood must be between 1 and 5")

	// Remote errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")

	// Outbound channel errors.
	ErrNotLinked          = errors.New("aggregator not linked")
	ErrLinkRejected       = errors.New("link code rejected")
	ErrInvalidPairingCode = errors.New("invalid pairing code")

	// Malformed remote payload (skipped during reconcile).
	ErrMalformedPayload = errors.New("malformed remote payload")
)
