package effects

import "fmt"

// FilterKind is the closed set of discrete filters. FilterNone marks
// blur-only mode.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterColorClamp
	FilterColorPolynomial
	FilterVibrance
	FilterSepiaTone
	FilterVignette
	FilterUnsharpMask
	FilterPhotoEffectNoir
	FilterColorPosterize
	FilterPixellate
	FilterGaussianBlur
	FilterGloom
	FilterCrystallize
	FilterComicEffect
)

var catalog = [...]FilterKind{
	FilterColorClamp,
	FilterColorPolynomial,
	FilterVibrance,
	FilterSepiaTone,
	FilterVignette,
	FilterUnsharpMask,
	FilterPhotoEffectNoir,
	FilterColorPosterize,
	FilterPixellate,
	FilterGaussianBlur,
	FilterGloom,
	FilterCrystallize,
	FilterComicEffect,
}

// Catalog returns the fixed swipe order of filters.
func Catalog() []FilterKind {
	out := make([]FilterKind, len(catalog))
	copy(out, catalog[:])
	return out
}

func (k FilterKind) String() string {
	switch k {
	case FilterNone:
		return "none"
	case FilterColorClamp:
		return "color_clamp"
	case FilterColorPolynomial:
		return "color_polynomial"
	case FilterVibrance:
		return "vibrance"
	case FilterSepiaTone:
		return "sepia_tone"
	case FilterVignette:
		return "vignette"
	case FilterUnsharpMask:
		return "unsharp_mask"
	case FilterPhotoEffectNoir:
		return "noir"
	case FilterColorPosterize:
		return "posterize"
	case FilterPixellate:
		return "pixellate"
	case FilterGaussianBlur:
		return "gaussian_blur"
	case FilterGloom:
		return "gloom"
	case FilterCrystallize:
		return "crystallize"
	case FilterComicEffect:
		return "comic"
	default:
		return fmt.Sprintf("filter(%d)", int(k))
	}
}

// Valid reports whether k is FilterNone or part of the catalog.
func (k FilterKind) Valid() bool {
	return k >= FilterNone && k <= FilterComicEffect
}
