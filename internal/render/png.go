package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"startupmap/internal"
)

type MapImageOptions struct {
	Width  int
	Height int
	Title  string
	// Center is used when there are no records to frame.
	CenterLat float64
	CenterLng float64
}

const (
	titleBand    = 48
	legendBand   = 24
	markerRadius = 5
	minSpan      = 0.05
)

var (
	background = color.RGBA{0xf4, 0xf1, 0xea, 0xff}
	ink        = color.RGBA{0x22, 0x22, 0x33, 0xff}
	genderInk  = map[internal.FounderGender]color.RGBA{
		internal.GenderMale:    {0x3b, 0x82, 0xf6, 0xff},
		internal.GenderFemale:  {0xdb, 0x27, 0x77, 0xff},
		internal.GenderMixed:   {0x7c, 0x3a, 0xed, 0xff},
		internal.GenderUnknown: {0x6b, 0x72, 0x80, 0xff},
	}
)

// RenderPNG draws the records as markers on an equirectangular projection of
// their bounding box, with a title band and a gender legend.
func RenderPNG(w io.Writer, records []internal.Startup, opts MapImageOptions) error {
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 640
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	plot := image.Rect(markerRadius*2, titleBand, opts.Width-markerRadius*2, opts.Height-legendBand)
	proj := newProjection(records, opts, plot)
	for _, s := range records {
		x, y := proj.point(s.Lat, s.Lng)
		drawMarker(img, x, y, genderInk[s.FoundersGender])
	}

	if err := drawTitle(img, opts.Title); err != nil {
		return err
	}
	drawLegend(img, opts.Height-legendBand/2+4)

	return png.Encode(w, img)
}

type projection struct {
	minLat, maxLat float64
	minLng, maxLng float64
	plot           image.Rectangle
}

func newProjection(records []internal.Startup, opts MapImageOptions, plot image.Rectangle) projection {
	p := projection{
		minLat: math.Inf(1), maxLat: math.Inf(-1),
		minLng: math.Inf(1), maxLng: math.Inf(-1),
		plot: plot,
	}
	for _, s := range records {
		p.minLat = math.Min(p.minLat, s.Lat)
		p.maxLat = math.Max(p.maxLat, s.Lat)
		p.minLng = math.Min(p.minLng, s.Lng)
		p.maxLng = math.Max(p.maxLng, s.Lng)
	}
	if len(records) == 0 {
		p.minLat, p.maxLat = opts.CenterLat, opts.CenterLat
		p.minLng, p.maxLng = opts.CenterLng, opts.CenterLng
	}
	widen(&p.minLat, &p.maxLat)
	widen(&p.minLng, &p.maxLng)
	return p
}

func widen(lo, hi *float64) {
	if span := *hi - *lo; span < minSpan {
		mid := (*hi + *lo) / 2
		*lo, *hi = mid-minSpan/2, mid+minSpan/2
	}
}

func (p projection) point(lat, lng float64) (int, int) {
	fx := (lng - p.minLng) / (p.maxLng - p.minLng)
	fy := (p.maxLat - lat) / (p.maxLat - p.minLat)
	x := p.plot.Min.X + int(math.Round(fx*float64(p.plot.Dx())))
	y := p.plot.Min.Y + int(math.Round(fy*float64(p.plot.Dy())))
	return x, y
}

func drawMarker(img *image.RGBA, cx, cy int, c color.RGBA) {
	r2 := markerRadius * markerRadius
	for dy := -markerRadius; dy <= markerRadius; dy++ {
		for dx := -markerRadius; dx <= markerRadius; dx++ {
			d := dx*dx + dy*dy
			switch {
			case d <= (markerRadius-1)*(markerRadius-1):
				img.SetRGBA(cx+dx, cy+dy, c)
			case d <= r2:
				img.SetRGBA(cx+dx, cy+dy, color.RGBA{0xff, 0xff, 0xff, 0xff})
			}
		}
	}
}

func drawTitle(img *image.RGBA, title string) error {
	if title == "" {
		return nil
	}
	parsed, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return err
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: 20, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: face}
	drawer.Dot = fixed.Point26_6{X: fixed.I(12), Y: fixed.I(30)}
	drawer.DrawString(title)
	return nil
}

func drawLegend(img *image.RGBA, baseline int) {
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
	x := 12
	for _, g := range []internal.FounderGender{internal.GenderMale, internal.GenderFemale, internal.GenderMixed, internal.GenderUnknown} {
		drawMarker(img, x+markerRadius, baseline-4, genderInk[g])
		drawer.Dot = fixed.Point26_6{X: fixed.I(x + markerRadius*2 + 4), Y: fixed.I(baseline)}
		drawer.DrawString(string(g))
		x += markerRadius*2 + 4 + drawer.MeasureString(string(g)).Ceil() + 16
	}
}
