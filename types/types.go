// Package types defines the primitive chain types shared across inkdeploy:
// 32-byte account identifiers and block/extrinsic hashes.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountID is a 32-byte public-key-derived account identifier.
type AccountID [32]byte

// Hash is a 32-byte blake2b digest (block hashes, extrinsic hashes, code hashes).
type Hash [32]byte

// Hex returns the 0x-prefixed hex encoding of the account id.
func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the account id is all zeroes.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeroes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// AccountIDFromHex parses a 0x-prefixed or bare 64-character hex string.
func AccountIDFromHex(s string) (AccountID, error) {
	var a AccountID
	b, err := decodeHex32(s)
	if err != nil {
		return a, fmt.Errorf("parse account id: %w", err)
	}
	copy(a[:], b)
	return a, nil
}

// HashFromHex parses a 0x-prefixed or bare 64-character hex string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := decodeHex32(s)
	if err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	copy(h[:], b)
	return h, nil
}

func decodeHex32(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	return b, nil
}
