// Package codec turns database IDs into 32 hex digit tokens masked with a
// per-session key, and back.
//
// The scheme is obfuscation, not encryption. Its bit layout is fixed because
// tokens already handed out must keep decoding.
package codec

import (
	"math/bits"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// TokenLength is the number of hex digits in a token and in a key.
	TokenLength = 32

	// FixedKey masks tokens in contexts without a session.
	FixedKey = "00000000000000000000000000000000"

	valueDigits     = 16
	walkSteps       = 30
	checksumSlot    = 31
	slotMultiplier  = 199
	slotModulus     = 31
	digitMultiplier = 197
	digitModulus    = 17
	fixedSeed       = 15
	fillerMask      = 11
)

var (
	ErrIncorrectFormat      = errors.New("token has incorrect format")
	ErrInconsistentChecksum = errors.New("token checksum is inconsistent")
	ErrStaleOrWrongKey      = errors.New("token was encoded with a different key")
	ErrInvalidKey           = errors.New("key must be 32 hex digits")
)

const hexDigits = "0123456789abcdef"

// NewKey returns a fresh random session key.
func NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidKey reports whether k can be used to encode or decode tokens.
func ValidKey(k string) bool {
	_, ok := nibbles(k)
	return ok && len(k) == TokenLength
}

// Encode masks n with key k. With deterministic set the token only depends
// on (n, k); otherwise the seed digit and filler digits are random.
func Encode(n uint64, k string, deterministic bool) (string, error) {
	key, ok := nibbles(k)
	if !ok || len(key) != TokenLength {
		return "", ErrInvalidKey
	}
	var value [valueDigits]byte
	for i := valueDigits - 1; i >= 0; i-- {
		value[i] = byte(n & 0xf)
		n >>= 4
	}

	var out [TokenLength]byte
	seed := fixedSeed
	if !deterministic {
		seed = rand.IntN(15) + 1
	}
	out[0] = byte(seed)
	p, q := seed, seed
	for step := 1; step <= walkSteps; step++ {
		p = p * slotMultiplier % slotModulus
		q = q * digitMultiplier % digitModulus
		switch {
		case step <= valueDigits || step%2 == 0:
			out[p] = value[q-1] ^ key[p]
		case deterministic:
			out[p] = byte((step/2)^fillerMask) & 0xf
		default:
			out[p] = byte(rand.IntN(16))
		}
	}
	out[checksumSlot] = checksum(out[:checksumSlot])

	var sb strings.Builder
	sb.Grow(TokenLength)
	for _, d := range out {
		sb.WriteByte(hexDigits[d])
	}
	return sb.String(), nil
}

// Decode recovers the value encoded in token under key k. Format is checked
// first, then the checksum, then the redundancy digits.
func Decode(token, k string) (uint64, error) {
	if len(token) != TokenLength {
		return 0, ErrIncorrectFormat
	}
	in, ok := nibbles(token)
	if !ok || in[0] == 0 {
		return 0, ErrIncorrectFormat
	}
	key, ok := nibbles(k)
	if !ok || len(key) != TokenLength {
		return 0, ErrInvalidKey
	}
	if checksum(in[:checksumSlot]) != in[checksumSlot] {
		return 0, ErrInconsistentChecksum
	}

	var value [valueDigits]byte
	p, q := int(in[0]), int(in[0])
	for step := 1; step <= walkSteps; step++ {
		p = p * slotMultiplier % slotModulus
		q = q * digitMultiplier % digitModulus
		if step <= valueDigits {
			value[q-1] = in[p] ^ key[p]
			continue
		}
		if step%2 == 0 && value[q-1] != in[p]^key[p] {
			return 0, ErrStaleOrWrongKey
		}
	}

	var n uint64
	for _, d := range value {
		n = n<<4 | uint64(d)
	}
	return n, nil
}

// checksum is the number of set bits in digits, modulo 16.
func checksum(digits []byte) byte {
	total := 0
	for _, d := range digits {
		total += bits.OnesCount8(d)
	}
	return byte(total % 16)
}

func nibbles(s string) ([]byte, bool) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			out[i] = c - '0'
		case c >= 'a' && c <= 'f':
			out[i] = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			out[i] = c - 'A' + 10
		default:
			return nil, false
		}
	}
	return out, true
}
