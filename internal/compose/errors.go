// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImages is returned when Compose is called with an empty list.
	ErrNoImages = errors.New("no images to compose")

	// ErrPageCount is returned when the written PDF does not have ceil(N/2) pages.
	ErrPageCount = errors.New("page count mismatch")
)

// Stage names the step at which an image failed.
type Stage string

const (
	StageOpen   Stage = "open"
	StageDecode Stage = "decode"
	StageEncode Stage = "encode"
	StageEmbed  Stage = "embed"
)

// ImageError reports an image that could not be placed. Any ImageError aborts
// the whole document.
type ImageError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
