package library

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"blear/internal/logger"
)

// Album saves finished wallpapers as JPEG files in a directory.
type Album struct {
	dir string
	log logger.Logger
}

func NewAlbum(dir string, log logger.Logger) *Album {
	if log == nil {
		log = logger.NewNop()
	}
	return &Album{dir: dir, log: log}
}

func (a *Album) Dir() string {
	return a.dir
}

// Save writes img under a fresh name and returns the file path.
func (a *Album) Save(ctx context.Context, img image.Image) (string, error) {
	path := filepath.Join(a.dir, fmt.Sprintf("blear-%s.jpg", uuid.NewString()))

	select {
	case <-ctx.Done():
		return "", &SaveError{Path: path, Err: ctx.Err()}
	default:
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", &SaveError{Path: path, Err: err}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return "", &SaveError{Path: path, Err: err}
	}

	a.log.Debug(component, "image written to album", map[string]interface{}{
		"path":   path,
		"bounds": img.Bounds().String(),
	})
	return path, nil
}
