// Package opencv is the OpenCV backed transformer. The blur look runs on
// gocv; catalog filters reuse the pure Go filter table.
package opencv

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"blear/internal/effects"
	"blear/internal/transform"
)

type Transformer struct {
	profile transform.BlurProfile
	memory  *memoryTracker
}

func NewTransformer(profile transform.BlurProfile) *Transformer {
	return &Transformer{profile: profile, memory: newMemoryTracker(DefaultMemoryLimit)}
}

// MemoryStats returns native memory accounting for the Mats this
// transformer has created.
func (t *Transformer) MemoryStats() MemoryStats {
	return t.memory.snapshot()
}

func (t *Transformer) Transform(ctx context.Context, src effects.SourceImage, p effects.Parameters) (image.Image, error) {
	if src.IsZero() {
		return nil, transform.ErrNoSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.HasFilter() {
		return transform.ApplyFilter(ctx, src.Image(), p.Filter)
	}

	amount := effects.ClampBlur(p.BlurAmount)
	if amount == 0 {
		return imaging.Clone(src.Image()), nil
	}

	b := src.Bounds()
	// Source, blur, HSV scratch and tint buffers are alive at the same time.
	if err := t.memory.reserve(b.Dy(), b.Dx(), 3*4); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(src.Image())
	if err != nil {
		return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
	}
	defer t.memory.track(&mat)()

	if err := ValidateMatForOperation(mat, "blur"); err != nil {
		return nil, err
	}

	blurred := gocv.NewMat()
	defer t.memory.track(&blurred)()

	sigma := t.profile.Radius(amount)
	k := kernelSize(sigma)
	gocv.GaussianBlur(mat, &blurred, image.Point{X: k, Y: k}, sigma, sigma, gocv.BorderReflect101)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sat := t.profile.Saturation(amount); sat > 1 {
		if err := t.scaleSaturation(&blurred, sat); err != nil {
			return nil, err
		}
	}

	if alpha := t.profile.TintAlpha(amount); alpha > 0 {
		white := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), blurred.Rows(), blurred.Cols(), blurred.Type())
		defer t.memory.track(&white)()

		washed := gocv.NewMat()
		defer t.memory.track(&washed)()
		gocv.AddWeighted(blurred, 1-alpha, white, alpha, 0, &washed)
		washed.CopyTo(&blurred)
	}

	out, err := blurred.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image conversion failed: %w", err)
	}
	return out, nil
}

func (t *Transformer) scaleSaturation(bgr *gocv.Mat, factor float64) error {
	hsv := gocv.NewMat()
	defer t.memory.track(&hsv)()
	gocv.CvtColor(*bgr, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) != 3 {
		return fmt.Errorf("expected 3 HSV channels, got %d", len(channels))
	}

	channels[1].MultiplyFloat(float32(factor))
	gocv.Merge(channels, &hsv)
	gocv.CvtColor(hsv, bgr, gocv.ColorHSVToBGR)
	return nil
}
