// Package cryptox holds the keyed hashing used to derive identifiers that
// must not reveal what they were derived from.
package cryptox

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// DeriveKey stretches an arbitrary secret into a 32-byte BLAKE2b key.
func DeriveKey(secret []byte) []byte {
	sum := blake2b.Sum256(secret)
	return sum[:]
}

// MAC returns the keyed BLAKE2b-256 digest of data. key must be at most
// 64 bytes long.
func MAC(key, data []byte) ([]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return nil, fmt.Errorf("blake2b: %w", err)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// OpaqueID returns the first n hex characters of the MAC of id keyed by
// secret. The same secret and id always give the same result; without the
// secret the id cannot be recovered or linked across secrets. n is clamped
// to the digest length.
func OpaqueID(secret, id string, n int) string {
	sum, err := MAC(DeriveKey([]byte(secret)), []byte(id))
	if err != nil {
		// DeriveKey always yields a valid key length.
		panic(err)
	}
	s := hex.EncodeToString(sum)
	if n <= 0 || n > len(s) {
		return s
	}
	return s[:n]
}
