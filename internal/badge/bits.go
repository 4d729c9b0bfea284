package badge

import (
	"strings"

	"github.com/pkg/errors"
)

// toBits spells data as '0' and '1' characters, most significant bit first.
func toBits(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			sb.WriteByte('0' + (b>>uint(i))&1)
		}
	}
	return sb.String()
}

func fromBits(bits string) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, errors.Errorf("bit string length %d is not a whole number of bytes", len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := 0; i < len(bits); i++ {
		out[i/8] = out[i/8]<<1 | (bits[i] - '0')
	}
	return out, nil
}

func uintToBits(n, width int) string {
	var sb strings.Builder
	for i := width - 1; i >= 0; i-- {
		sb.WriteByte('0' + byte(n>>uint(i))&1)
	}
	return sb.String()
}

func bitsToUint(bits string) int {
	n := 0
	for i := 0; i < len(bits); i++ {
		n = n<<1 | int(bits[i]-'0')
	}
	return n
}
