package badge

import "image"

const (
	SignatureBits   = 256
	LengthBits      = 14
	MaxPayloadBits  = 15856
	MaxPayloadBytes = MaxPayloadBits / 8

	// WalkLength is the number of pixel slots that can carry a bit.
	WalkLength = SignatureBits + LengthBits + MaxPayloadBits

	squareSide   = 128
	squareOffset = (Size - squareSide) / 2

	walkModulus    = 16411
	walkMultiplier = 2187
	walkSeed       = 1987
)

// walk lists the pixel used by every slot. Slot 0 is the seed pixel.
var walk = buildWalk()

func buildWalk() []image.Point {
	points := make([]image.Point, 0, WalkLength)
	x := walkSeed
	for len(points) < WalkLength {
		if idx := x - 1; idx < squareSide*squareSide {
			points = append(points, image.Pt(squareOffset+idx%squareSide, squareOffset+idx/squareSide))
		}
		x = x * walkMultiplier % walkModulus
	}
	return points
}
