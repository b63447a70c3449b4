package effects

import (
	"fmt"
	"math"
)

const (
	MinBlur = 0.0
	MaxBlur = 100.0
)

// Parameters is the immutable description of the desired output. A value
// fully determines what the transform produces for a given source.
type Parameters struct {
	BlurAmount float64
	Filter     FilterKind
}

// Blur returns blur-only parameters with the amount clamped into range.
func Blur(amount float64) Parameters {
	return Parameters{BlurAmount: ClampBlur(amount), Filter: FilterNone}
}

// WithFilter returns filter parameters. The blur amount is carried for the
// session's benefit but ignored by the transform while a filter is active.
func WithFilter(kind FilterKind, blurAmount float64) Parameters {
	return Parameters{BlurAmount: ClampBlur(blurAmount), Filter: kind}
}

func ClampBlur(amount float64) float64 {
	if math.IsNaN(amount) {
		return MinBlur
	}
	return math.Max(MinBlur, math.Min(MaxBlur, amount))
}

// HasFilter reports whether a discrete filter is active.
func (p Parameters) HasFilter() bool {
	return p.Filter != FilterNone
}

func (p Parameters) String() string {
	if p.HasFilter() {
		return fmt.Sprintf("filter=%s", p.Filter)
	}
	return fmt.Sprintf("blur=%.1f", p.BlurAmount)
}

// Fields renders the parameters for structured logging.
func (p Parameters) Fields() map[string]interface{} {
	return map[string]interface{}{
		"blur_amount": p.BlurAmount,
		"filter":      p.Filter.String(),
	}
}
