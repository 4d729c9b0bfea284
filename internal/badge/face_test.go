package badge

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeColor(t *testing.T) {
	assert.Equal(t, Color{Disc: 2, Dark: true, R: 0x20, G: 0x50, B: 0xa0}, DecodeColor(2<<25|1<<24|0x2050a0))
	assert.Equal(t, Color{R: 0xff, G: 0x00, B: 0x01}, DecodeColor(0xff0001))
	assert.Equal(t, Color{Disc: 1}, DecodeColor(1<<25))
	assert.Equal(t, 1, DecodeColor(int64(len(metals)+1)<<25).Disc)
}

func TestStarGeometry(t *testing.T) {
	assert.InDelta(t, 0, star[0].X, 1e-9)
	assert.InDelta(t, -1, star[0].Y, 1e-9)
	assert.InDelta(t, 0.382, star[5].Y, 1e-3)
}

func TestRenderFace(t *testing.T) {
	participant := testerBadge().Face()
	referee := refereeBadge().Face()
	assert.False(t, participant.Referee)
	assert.True(t, referee.Referee)

	a := participant.Render()
	b := referee.Render()
	assert.Equal(t, image.Rect(0, 0, Size, Size), a.Bounds())
	assert.NotEqual(t, a.Pix, b.Pix)
	assert.Equal(t, a.Pix, participant.Render().Pix, "rendering is deterministic")

	// the slot area lies inside the opaque disc, corners stay clear
	for _, p := range []image.Point{walk[0], {squareOffset, squareOffset}, {Size / 2, Size / 2}} {
		assert.Equal(t, uint8(0xff), a.NRGBAAt(p.X, p.Y).A, "%v", p)
	}
	assert.Equal(t, uint8(0), a.NRGBAAt(0, 0).A)
	assert.NotEqual(t, participant.cacheKey(), referee.cacheKey())
}

func TestFaceProgress(t *testing.T) {
	assert.Equal(t, 0.6, Face{Level: 3, Levels: 5}.progress())
	assert.Equal(t, 1.0, Face{Level: 9, Levels: 5}.progress())
	assert.Equal(t, 1.0, Face{Level: 2}.progress())
}
