package badge

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHasher = Hasher{Salt: []byte("test-salt"), Iterations: 16}

func blankImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img
}

func TestWalkTable(t *testing.T) {
	require.Len(t, walk, WalkLength)
	assert.Equal(t, image.Pt(130, 79), walk[0])
	assert.Equal(t, image.Pt(72, 166), walk[1])

	square := image.Rect(squareOffset, squareOffset, squareOffset+squareSide, squareOffset+squareSide)
	seen := make(map[image.Point]bool, len(walk))
	for _, p := range walk {
		assert.True(t, p.In(square), "%v outside the central square", p)
		assert.False(t, seen[p], "%v used twice", p)
		seen[p] = true
	}
	assert.Equal(t, walk, buildWalk())
}

func TestBits(t *testing.T) {
	assert.Equal(t, "0100000111111111", toBits([]byte{0x41, 0xff}))
	data, err := fromBits("0100000111111111")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41, 0xff}, data)
	_, err = fromBits("0101")
	assert.Error(t, err)

	assert.Equal(t, "00000000101010", uintToBits(42, LengthBits))
	assert.Equal(t, 42, bitsToUint("00000000101010"))
}

func TestSignature(t *testing.T) {
	sig := testHasher.Sign("0101")
	assert.Len(t, sig, SignatureBits)
	assert.Equal(t, sig, testHasher.Sign("0101"))
	assert.NotEqual(t, sig, testHasher.Sign("0100"))
	assert.NotEqual(t, sig, Hasher{Salt: []byte("other"), Iterations: 16}.Sign("0101"))
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{
		{},
		[]byte(`{"ID":1}`),
		bytes.Repeat([]byte("x"), MaxPayloadBytes),
	} {
		img := blankImage()
		require.NoError(t, Embed(img, payload, testHasher))
		got, err := Extract(img, testHasher)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestExtractWithOtherSaltFails(t *testing.T) {
	img := blankImage()
	require.NoError(t, Embed(img, []byte("payload"), testHasher))
	_, err := Extract(img, Hasher{Salt: []byte("other"), Iterations: 16})
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestEmbedRejectsOversizedPayload(t *testing.T) {
	img := blankImage()
	before := append([]byte(nil), img.Pix...)
	err := Embed(img, bytes.Repeat([]byte("x"), MaxPayloadBytes+1), testHasher)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Equal(t, before, img.Pix, "no pixel may change")
}

func TestEmbedRejectsWrongDimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size-1))
	assert.ErrorIs(t, Embed(img, []byte("x"), testHasher), ErrWrongDimensions)
}

// untouchable fails the test when its pixels are read.
type untouchable struct {
	t      *testing.T
	bounds image.Rectangle
}

func (u untouchable) ColorModel() color.Model { return color.NRGBAModel }
func (u untouchable) Bounds() image.Rectangle { return u.bounds }
func (u untouchable) At(x, y int) color.Color {
	u.t.Fatalf("pixel (%d, %d) read", x, y)
	return nil
}

func TestExtractChecksDimensionsFirst(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 255, 256),
		image.Rect(0, 0, 256, 257),
		image.Rect(0, 0, ThumbSize, ThumbSize),
	} {
		_, err := Extract(untouchable{t, r}, testHasher)
		assert.ErrorIs(t, err, ErrWrongDimensions)
	}
}

func TestExtractDetectsFlippedBits(t *testing.T) {
	payload := []byte(strings.Repeat("badge payload ", 20))
	img := blankImage()
	require.NoError(t, Embed(img, payload, testHasher))
	last := SignatureBits + LengthBits + len(payload)*8 - 1

	for _, s := range []int{0, 1, 128, SignatureBits - 1, SignatureBits + LengthBits, 1000, last} {
		corrupted := image.NewNRGBA(img.Bounds())
		copy(corrupted.Pix, img.Pix)
		p := walk[s]
		corrupted.Pix[corrupted.PixOffset(p.X, p.Y)+carrier(p)] ^= 1

		_, err := Extract(corrupted, testHasher)
		assert.ErrorIs(t, err, ErrSignatureMismatch, "slot %d", s)
	}
}

func TestExtractIgnoresNonCarrierChannels(t *testing.T) {
	img := blankImage()
	require.NoError(t, Embed(img, []byte("payload"), testHasher))
	p := walk[3]
	i := img.PixOffset(p.X, p.Y)
	for c := 0; c < 3; c++ {
		if c != carrier(p) {
			img.Pix[i+c] ^= 1
		}
	}
	got, err := Extract(img, testHasher)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestExtractRejectsOversizedLength(t *testing.T) {
	img := blankImage()
	require.NoError(t, Embed(img, []byte("payload"), testHasher))
	writeBits(img, SignatureBits, uintToBits(MaxPayloadBits+8, LengthBits))
	_, err := Extract(img, testHasher)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestEmbedAddsNoise(t *testing.T) {
	img := blankImage()
	require.NoError(t, Embed(img, nil, testHasher))
	changed := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0x80 || img.Pix[i+1] != 0x80 || img.Pix[i+2] != 0x80 {
			changed++
		}
		assert.Equal(t, uint8(0x80), img.Pix[i+3], "alpha is left alone")
	}
	// half the pixels are picked and most picks change at least one channel
	assert.InDelta(t, 0.44, float64(changed)/float64(Size*Size), 0.05)
}
