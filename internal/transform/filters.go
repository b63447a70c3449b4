package transform

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/gift"
	"github.com/lucasb-eyer/go-colorful"

	"blear/internal/effects"
)

// ApplyFilter renders one catalog filter over img.
func ApplyFilter(ctx context.Context, img image.Image, kind effects.FilterKind) (image.Image, error) {
	chain, err := FilterChain(kind)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := gift.New(chain...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, nil
}

// FilterChain is the dispatch table from filter kind to gift filters.
func FilterChain(kind effects.FilterKind) ([]gift.Filter, error) {
	switch kind {
	case effects.FilterColorClamp:
		return []gift.Filter{colorClamp(0.08, 0.92)}, nil
	case effects.FilterColorPolynomial:
		return []gift.Filter{colorPolynomial()}, nil
	case effects.FilterVibrance:
		return []gift.Filter{vibrance(0.6)}, nil
	case effects.FilterSepiaTone:
		return []gift.Filter{gift.Sepia(100)}, nil
	case effects.FilterVignette:
		return []gift.Filter{vignette{strength: 0.85, radius: 0.45}}, nil
	case effects.FilterUnsharpMask:
		return []gift.Filter{gift.UnsharpMask(2.5, 0.5, 0)}, nil
	case effects.FilterPhotoEffectNoir:
		return []gift.Filter{gift.Grayscale(), gift.Contrast(30)}, nil
	case effects.FilterColorPosterize:
		return []gift.Filter{posterize(6)}, nil
	case effects.FilterPixellate:
		return []gift.Filter{gift.Pixelate(8)}, nil
	case effects.FilterGaussianBlur:
		return []gift.Filter{gift.GaussianBlur(10)}, nil
	case effects.FilterGloom:
		return []gift.Filter{gift.GaussianBlur(2), gift.Gamma(0.8), gift.Contrast(-15)}, nil
	case effects.FilterCrystallize:
		return []gift.Filter{gift.Pixelate(6), gift.Median(7, true)}, nil
	case effects.FilterComicEffect:
		return []gift.Filter{comic{levels: 4, edgeThreshold: 96}}, nil
	case effects.FilterNone:
		return nil, fmt.Errorf("no filter selected")
	default:
		return nil, fmt.Errorf("unknown filter kind %d", int(kind))
	}
}

func colorClamp(lo, hi float32) gift.Filter {
	c := func(v float32) float32 {
		return float32(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
	}
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		return c(r0), c(g0), c(b0), a0
	})
}

func colorPolynomial() gift.Filter {
	// Warm curve: lift reds, keep greens, roll off blues in the highlights.
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		r = 0.05 + 0.85*r0 + 0.1*r0*r0
		g = g0
		b = 0.95*b0 - 0.1*b0*b0*b0 + 0.05
		return clamp32(r), clamp32(g), clamp32(b), a0
	})
}

func posterize(levels int) gift.Filter {
	steps := float32(levels - 1)
	q := func(v float32) float32 {
		return float32(math.Round(float64(v*steps))) / steps
	}
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		return q(r0), q(g0), q(b0), a0
	})
}

// vibrance raises chroma of muted colors more than already saturated ones.
func vibrance(amount float64) gift.Filter {
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		h, c, l := colorful.Color{R: float64(r0), G: float64(g0), B: float64(b0)}.Hcl()
		boost := 1 + amount*(1-math.Min(c/0.6, 1))
		out := colorful.Hcl(h, c*boost, l).Clamped()
		return float32(out.R), float32(out.G), float32(out.B), a0
	})
}

func clamp32(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type vignette struct {
	strength float64
	radius   float64
}

func (v vignette) Bounds(srcBounds image.Rectangle) image.Rectangle {
	return image.Rect(0, 0, srcBounds.Dx(), srcBounds.Dy())
}

func (v vignette) Draw(dst draw.Image, src image.Image, _ *gift.Options) {
	sb := src.Bounds()
	db := dst.Bounds()
	w, h := sb.Dx(), sb.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := color.NRGBAModel.Convert(src.At(sb.Min.X+x, sb.Min.Y+y)).(color.NRGBA)
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxDist
			f := 1 - v.strength*smoothstep(v.radius, 1, d)
			dst.Set(db.Min.X+x, db.Min.Y+y, color.NRGBA{
				R: uint8(float64(px.R) * f),
				G: uint8(float64(px.G) * f),
				B: uint8(float64(px.B) * f),
				A: px.A,
			})
		}
	}
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// comic flattens colors and inks strong edges black.
type comic struct {
	levels        int
	edgeThreshold uint8
}

func (c comic) Bounds(srcBounds image.Rectangle) image.Rectangle {
	return image.Rect(0, 0, srcBounds.Dx(), srcBounds.Dy())
}

func (c comic) Draw(dst draw.Image, src image.Image, options *gift.Options) {
	rect := c.Bounds(src.Bounds())

	flat := image.NewNRGBA(rect)
	gift.New(gift.Median(3, false), posterize(c.levels)).Draw(flat, src)

	edges := image.NewGray(rect)
	gift.New(gift.Grayscale(), gift.Sobel()).Draw(edges, src)

	db := dst.Bounds()
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			px := flat.NRGBAAt(x, y)
			if edges.GrayAt(x, y).Y >= c.edgeThreshold {
				px = color.NRGBA{A: px.A}
			}
			dst.Set(db.Min.X+x, db.Min.Y+y, px)
		}
	}
}
