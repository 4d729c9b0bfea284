package badge

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

const (
	// Size is the width and height of a badge image.
	Size = 256
	// ThumbSize is the width and height of gallery thumbnails.
	ThumbSize = 80

	canvasSize = 2 * Size
)

// Color is the decoded form of a badge color code.
type Color struct {
	Disc    int
	Dark    bool
	R, G, B uint8
}

// DecodeColor unpacks a color code: the lowest three bytes are B, G and R,
// the next bit selects the dark variant, and the rest is the disc index.
func DecodeColor(code int64) Color {
	if code < 0 {
		code = -code
	}
	var c Color
	c.B = uint8(code % 256)
	code /= 256
	c.G = uint8(code % 256)
	code /= 256
	c.R = uint8(code % 256)
	code /= 256
	c.Dark = code%2 == 1
	code /= 2
	c.Disc = int(code % int64(len(metals)))
	return c
}

type metal struct {
	light, mid, dark color.RGBA
}

var metals = []metal{
	{color.RGBA{0xf0, 0xc8, 0x9a, 0xff}, color.RGBA{0xcd, 0x7f, 0x32, 0xff}, color.RGBA{0x6e, 0x3f, 0x14, 0xff}}, // bronze
	{color.RGBA{0xf8, 0xf8, 0xf8, 0xff}, color.RGBA{0xc0, 0xc0, 0xc0, 0xff}, color.RGBA{0x60, 0x60, 0x68, 0xff}}, // silver
	{color.RGBA{0xff, 0xf1, 0xa8, 0xff}, color.RGBA{0xd4, 0xaf, 0x37, 0xff}, color.RGBA{0x7a, 0x5c, 0x0a, 0xff}}, // gold
	{color.RGBA{0xf2, 0xf6, 0xff, 0xff}, color.RGBA{0xb4, 0xc4, 0xd8, 0xff}, color.RGBA{0x4a, 0x58, 0x6c, 0xff}}, // platinum
}

// star is a five-point star with outer radius 1, pointing up.
var star = buildStar()

func buildStar() [10]gg.Point {
	var pts [10]gg.Point
	inner := math.Sin(math.Pi/10) / math.Sin(7*math.Pi/10)
	for i := range pts {
		r := 1.0
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = gg.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return pts
}

// Face holds what is drawn on a badge.
type Face struct {
	Color   Color
	Level   int
	Levels  int
	Referee bool
}

func (f Face) cacheKey() string {
	return fmt.Sprintf("face:%d:%t:%d:%d:%d:%d:%d:%t",
		f.Color.Disc, f.Color.Dark, f.Color.R, f.Color.G, f.Color.B, f.Level, f.Levels, f.Referee)
}

// Render draws the face on a large canvas and scales it down to Size.
func (f Face) Render() *image.NRGBA {
	const (
		c          = canvasSize / 2
		rimRadius  = 250.0
		discRadius = 200.0
		ringRadius = 225.0
		starRing   = 145.0
	)
	m := metals[f.Color.Disc%len(metals)]
	dc := gg.NewContext(canvasSize, canvasSize)

	rim := gg.NewRadialGradient(c-80, c-80, 20, c, c, rimRadius)
	rim.AddColorStop(0, shade(m.light, f.Color.Dark))
	rim.AddColorStop(0.6, shade(m.mid, f.Color.Dark))
	rim.AddColorStop(1, shade(m.dark, f.Color.Dark))
	dc.SetFillStyle(rim)
	dc.DrawCircle(c, c, rimRadius)
	dc.Fill()

	dc.SetColor(color.RGBA{f.Color.R, f.Color.G, f.Color.B, 0xff})
	dc.DrawCircle(c, c, discRadius)
	dc.Fill()

	starRadius := 24.0
	if f.Referee {
		drawWreath(dc, c, c, ringRadius, shade(m.dark, !f.Color.Dark))
		starRadius = 17
	} else {
		drawArc(dc, c, c, ringRadius, f.progress(), shade(m.light, !f.Color.Dark))
	}

	dc.SetColor(shade(m.light, false))
	for i := 0; i < f.Level; i++ {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(f.Level)
		drawStar(dc, c+starRing*math.Cos(a), c+starRing*math.Sin(a), starRadius)
	}

	gloss := gg.NewLinearGradient(c, c-discRadius, c, c+discRadius)
	gloss.AddColorStop(0, color.NRGBA{0xff, 0xff, 0xff, 0x60})
	gloss.AddColorStop(0.5, color.NRGBA{0xff, 0xff, 0xff, 0x10})
	gloss.AddColorStop(1, color.NRGBA{0, 0, 0, 0x30})
	dc.SetFillStyle(gloss)
	dc.DrawCircle(c, c, discRadius)
	dc.Fill()

	return toNRGBA(resize.Resize(Size, Size, dc.Image(), resize.Lanczos3))
}

func (f Face) progress() float64 {
	if f.Levels <= 0 {
		return 1
	}
	p := float64(f.Level) / float64(f.Levels)
	return math.Max(0, math.Min(1, p))
}

func drawArc(dc *gg.Context, x, y, r, sweep float64, col color.Color) {
	if sweep <= 0 {
		return
	}
	start := -math.Pi / 2
	dc.SetColor(col)
	dc.SetLineWidth(18)
	dc.SetLineCapRound()
	dc.NewSubPath()
	dc.DrawArc(x, y, r, start, start+2*math.Pi*sweep)
	dc.Stroke()
}

func drawWreath(dc *gg.Context, x, y, r float64, col color.Color) {
	const leaves = 18
	dc.SetColor(col)
	for side := -1.0; side <= 1; side += 2 {
		for i := 0; i < leaves; i++ {
			// leaves grow from the bottom up both sides, leaving a gap on top
			a := math.Pi/2 + side*(0.25+float64(i)*(math.Pi-0.5)/leaves)
			lx, ly := x+r*math.Cos(a), y+r*math.Sin(a)
			dc.Push()
			dc.RotateAbout(a+side*math.Pi/3, lx, ly)
			dc.DrawEllipse(lx, ly, 16, 7)
			dc.Fill()
			dc.Pop()
		}
	}
}

func drawStar(dc *gg.Context, x, y, r float64) {
	dc.NewSubPath()
	for i, p := range star {
		if i == 0 {
			dc.MoveTo(x+r*p.X, y+r*p.Y)
			continue
		}
		dc.LineTo(x+r*p.X, y+r*p.Y)
	}
	dc.ClosePath()
	dc.Fill()
}

func shade(c color.RGBA, dark bool) color.RGBA {
	if !dark {
		return c
	}
	return color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
}

// Thumbnail scales a badge down for gallery display.
func Thumbnail(img image.Image) image.Image {
	return resize.Resize(ThumbSize, ThumbSize, img, resize.Lanczos3)
}

// EncodePNG writes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
