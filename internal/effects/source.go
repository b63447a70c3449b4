package effects

import (
	"image"

	"github.com/google/uuid"
)

// SourceImage is an immutable handle to the loaded base photo. Callers must
// not mutate the wrapped image after NewSource.
type SourceImage struct {
	id  uuid.UUID
	img image.Image
}

func NewSource(img image.Image) SourceImage {
	return SourceImage{id: uuid.New(), img: img}
}

func (s SourceImage) ID() uuid.UUID {
	return s.id
}

func (s SourceImage) Image() image.Image {
	return s.img
}

// IsZero reports whether no image has been attached.
func (s SourceImage) IsZero() bool {
	return s.img == nil
}

func (s SourceImage) Bounds() image.Rectangle {
	if s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Bounds()
}
