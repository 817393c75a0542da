// Package joincode generates the short codes people share to invite
// friends into a pool.
//
// A code is 6 uppercase alphanumeric characters ("AB12CD") — short enough
// to read out loud, long enough that guessing an active pool's code is
// impractical (36^6 ≈ 2.2 billion combinations).
//
// The generator has no global registry and cannot guarantee uniqueness on
// its own. Uniqueness is enforced by the UNIQUE constraint on pools.code;
// the pool service retries with a fresh code when the store reports a
// collision.
package joincode

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed code length.
const Length = 6

// alphabet deliberately includes every uppercase letter and digit, same
// as the codes the original service handed out. No characters are
// excluded, so lookups must use the code exactly as issued.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate returns a new random join code.
//
// We use crypto/rand rather than math/rand: codes double as a weak
// bearer credential (knowing one lets you join the pool), so they must
// not be predictable from previous codes.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("joincode: reading random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
