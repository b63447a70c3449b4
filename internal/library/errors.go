package library

import (
	"errors"
	"fmt"
)

// ErrInvalidSourceImage is wrapped by every load failure.
var ErrInvalidSourceImage = errors.New("invalid source image")

// SaveError reports a failed write to the album.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save to %s failed: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
