// Package library moves photos in and out of the editor: decoding and
// downscaling sources, picking bundled stock photos and writing results to
// the album.
package library

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"blear/internal/effects"
	"blear/internal/logger"
)

const component = "Library"

const minSourceDimension = 1

// Loader decodes photos into source images no larger than MaxDimension on
// either side.
type Loader struct {
	maxDimension int
	log          logger.Logger
}

func NewLoader(maxDimension int, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{maxDimension: maxDimension, log: log}
}

// Load reads and decodes the file at path.
func (l *Loader) Load(ctx context.Context, path string) (effects.SourceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return effects.SourceImage{}, fmt.Errorf("%w: open %s: %v", ErrInvalidSourceImage, path, err)
	}
	defer f.Close()

	return l.Decode(ctx, f, filepath.Base(path))
}

// Decode reads a photo from r. name is only used for logging.
func (l *Loader) Decode(ctx context.Context, r io.Reader, name string) (effects.SourceImage, error) {
	select {
	case <-ctx.Done():
		return effects.SourceImage{}, ctx.Err()
	default:
	}

	start := time.Now()
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return effects.SourceImage{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidSourceImage, name, err)
	}

	b := img.Bounds()
	if b.Dx() < minSourceDimension || b.Dy() < minSourceDimension {
		return effects.SourceImage{}, fmt.Errorf("%w: %s has empty bounds %v", ErrInvalidSourceImage, name, b)
	}

	select {
	case <-ctx.Done():
		return effects.SourceImage{}, ctx.Err()
	default:
	}

	scaled := l.downscale(img)
	src := effects.NewSource(scaled)

	l.log.Info(component, "source decoded", map[string]interface{}{
		"name":        name,
		"source_id":   src.ID().String(),
		"original":    fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"scaled":      fmt.Sprintf("%dx%d", scaled.Bounds().Dx(), scaled.Bounds().Dy()),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return src, nil
}

// downscale fits img inside maxDimension keeping the aspect ratio. The
// result always starts at the origin.
func (l *Loader) downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if l.maxDimension <= 0 || (w <= l.maxDimension && h <= l.maxDimension) {
		if b.Min == (image.Point{}) {
			return img
		}
		return imaging.Clone(img)
	}

	scale := float64(l.maxDimension) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w in the format implied by ext, defaulting to JPEG.
func Encode(w io.Writer, img image.Image, ext string) error {
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(strings.ToLower(ext), "."))
	if err != nil {
		format = imaging.JPEG
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(95))
}
