package badge

import (
	"image"
	"math/rand/v2"
)

// Embed signs payload with h and hides it in img. Roughly half of all
// pixels get random low bits first so carrier pixels do not stand out.
func Embed(img *image.NRGBA, payload []byte, h Hasher) error {
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		return reject(WrongDimensions, "%dx%d", b.Dx(), b.Dy())
	}
	bits := toBits(payload)
	if len(bits) > MaxPayloadBits {
		return reject(PayloadTooLarge, "%d bits > %d", len(bits), MaxPayloadBits)
	}
	addNoise(img)
	writeBits(img, 0, h.Sign(bits))
	writeBits(img, SignatureBits, uintToBits(len(bits), LengthBits))
	writeBits(img, SignatureBits+LengthBits, bits)
	return nil
}

// Extract returns the payload hidden in img once its signature checks out.
func Extract(img image.Image, h Hasher) ([]byte, error) {
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		return nil, reject(WrongDimensions, "%dx%d", b.Dx(), b.Dy())
	}
	n := toNRGBA(img)
	sig := readBits(n, 0, SignatureBits)
	length := bitsToUint(readBits(n, SignatureBits, LengthBits))
	if length > MaxPayloadBits {
		return nil, reject(PayloadTooLarge, "%d bits > %d", length, MaxPayloadBits)
	}
	bits := readBits(n, SignatureBits+LengthBits, length)
	if h.Sign(bits) != sig {
		return nil, ErrSignatureMismatch
	}
	data, err := fromBits(bits)
	if err != nil {
		return nil, reject(MalformedPayload, "%v", err)
	}
	return data, nil
}

func addNoise(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r := rand.Uint32()
			if r&1 == 0 {
				continue
			}
			i := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				setLow(&img.Pix[i+c], byte(r>>uint(c+1)))
			}
		}
	}
}

// carrier is the color channel holding the bit of a slot pixel.
func carrier(p image.Point) int {
	return p.X%2 + p.Y%2
}

func writeBits(img *image.NRGBA, start int, bits string) {
	origin := img.Bounds().Min
	for j := 0; j < len(bits); j++ {
		p := walk[start+j]
		i := img.PixOffset(origin.X+p.X, origin.Y+p.Y)
		ch := carrier(p)
		r := rand.Uint32()
		for c := 0; c < 3; c++ {
			if c == ch {
				setLow(&img.Pix[i+c], bits[j]-'0')
			} else {
				setLow(&img.Pix[i+c], byte(r>>uint(c)))
			}
		}
	}
}

func readBits(img *image.NRGBA, start, n int) string {
	origin := img.Bounds().Min
	out := make([]byte, n)
	for j := 0; j < n; j++ {
		p := walk[start+j]
		i := img.PixOffset(origin.X+p.X, origin.Y+p.Y)
		out[j] = '0' + img.Pix[i+carrier(p)]&1
	}
	return string(out)
}

// setLow replaces the lowest bit of *v with the lowest bit of bit.
func setLow(v *byte, bit byte) {
	*v = *v&^1 | bit&1
}
