// internal/seed/seed.go
//
// Deterministic seeds for match randomness.
// Responsibilities:
//   - Derive a per-match, per-restart int64 seed with HMAC(salt, matchID|generation).
//   - Provide a crypto-random salt when none is configured.
//   - Build the *rand.Rand a match uses for field generation and dice.
//
// A persisted (salt, matchID, generation) triple reproduces the board and the
// dice sequence of that match exactly.

package seed

import (
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
)

// Key returns the HMAC message for a match generation: "<matchID>|<generation>".
func Key(matchID string, generation int) string {
	return matchID + "|" + strconv.Itoa(generation)
}

// ForMatch returns a deterministic seed for matchID at the given restart generation.
func ForMatch(salt, matchID string, generation int) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(Key(matchID, generation)))
	sum := h.Sum(nil)
	// first 8 bytes; sign bit cleared so the value survives SQLite INTEGER round trips unchanged
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// NewRand returns a math/rand source seeded from ForMatch.
func NewRand(salt, matchID string, generation int) (*rand.Rand, int64) {
	s := ForMatch(salt, matchID, generation)
	return rand.New(rand.NewSource(s)), s
}

// NewSalt draws a 32-byte hex salt from crypto/rand.
func NewSalt() (string, error) {
	var b [32]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate seed salt: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
