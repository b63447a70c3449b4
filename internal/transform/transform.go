// Package transform implements the pure image transforms behind the editor:
// the blur-only look and the discrete filter catalog.
package transform

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	"blear/internal/effects"
)

var ErrNoSource = errors.New("no source image loaded")

// Transformer maps a source image and parameters to an output image. For
// fixed inputs the output must always be the same.
type Transformer interface {
	Transform(ctx context.Context, src effects.SourceImage, p effects.Parameters) (image.Image, error)
}

// BlurProfile tunes the blur look to the device the editor runs on.
type BlurProfile struct {
	LargeScreen bool
	Tablet      bool
}

// Radius is the gaussian sigma used for a slider amount.
func (bp BlurProfile) Radius(amount float64) float64 {
	if bp.LargeScreen {
		return amount * 0.8
	}
	return amount * 1.2
}

// Saturation is the multiplicative saturation factor, in [1, 2.8].
func (bp BlurProfile) Saturation(amount float64) float64 {
	factor := 0.045
	if bp.Tablet {
		factor = 0.035
	}
	return clamp(amount*factor, 1, 2.8)
}

// TintAlpha is the opacity of the white wash laid over the blur, in [0, 0.25].
func (bp BlurProfile) TintAlpha(amount float64) float64 {
	return clamp(amount*0.004, 0, 0.25)
}

// Imaging is the pure Go transformer.
type Imaging struct {
	profile BlurProfile
}

func NewImaging(profile BlurProfile) *Imaging {
	return &Imaging{profile: profile}
}

func (t *Imaging) Transform(ctx context.Context, src effects.SourceImage, p effects.Parameters) (image.Image, error) {
	if src.IsZero() {
		return nil, ErrNoSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Filters always start from the untouched source.
	if p.HasFilter() {
		return ApplyFilter(ctx, src.Image(), p.Filter)
	}
	return t.blur(ctx, src.Image(), p.BlurAmount)
}

func (t *Imaging) blur(ctx context.Context, img image.Image, amount float64) (image.Image, error) {
	amount = effects.ClampBlur(amount)
	if amount == 0 {
		return imaging.Clone(img), nil
	}

	out := imaging.Blur(img, t.profile.Radius(amount))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sat := t.profile.Saturation(amount); sat > 1 {
		out = saturate(out, sat)
	}

	if alpha := t.profile.TintAlpha(amount); alpha > 0 {
		b := out.Bounds()
		wash := imaging.New(b.Dx(), b.Dy(), color.White)
		out = imaging.Overlay(out, wash, image.Pt(0, 0), alpha)
	}

	return out, nil
}

// saturate scales HSL saturation by factor. imaging.AdjustSaturation stops
// at 2x, below the top of the blur look.
func saturate(img image.Image, factor float64) *image.NRGBA {
	g := gift.New(gift.Saturation(float32((factor - 1) * 100)))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
