// Package common contains shared constants and sentinel errors used across
// the diary client components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DateLayout is the date-only key format used for entry dates everywhere
// (storage, wire payloads, aggregator mood maps).
const DateLayout = "2006-01-02"
