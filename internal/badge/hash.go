package badge

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// Hasher signs payload bit strings. Salt and iteration count come from
// deployment configuration.
type Hasher struct {
	Salt       []byte
	Iterations int
}

// Sign returns the 256 bit PBKDF2-HMAC-SHA256 digest of bits as a bit string.
func (h Hasher) Sign(bits string) string {
	return toBits(pbkdf2.Key([]byte(bits), h.Salt, h.Iterations, sha256.Size, sha256.New))
}
