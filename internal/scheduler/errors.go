package scheduler

import (
	"fmt"

	"blear/internal/effects"
)

// TransformFailure is reported to the sink when a transform returns an
// error or panics. The previously displayed image stays in place.
type TransformFailure struct {
	Params effects.Parameters
	Err    error
}

func (e *TransformFailure) Error() string {
	return fmt.Sprintf("processing failed for %s: %v", e.Params, e.Err)
}

func (e *TransformFailure) Unwrap() error {
	return e.Err
}
