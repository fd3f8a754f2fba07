package analysis

import (
	"context"
	"errors"

	"github.com/okian/swatch/internal/domain/region"
	"github.com/okian/swatch/internal/domain/sampler"
)

// Sentinel errors owned by the pipeline boundary.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrFetchFailed = errors.New("image fetch failed")
)

// Code is a stable wire error code.
type Code string

// Error codes.
const (
	CodeInvalidCropBox    Code = "INVALID_CROP_BOX"
	CodeFaceNotDetected   Code = "FACE_NOT_DETECTED"
	CodeLowQualitySamples Code = "LOW_QUALITY_SAMPLES"
	CodeMalformedImage    Code = "MALFORMED_IMAGE"
	CodeImageTooLarge     Code = "IMAGE_TOO_LARGE"
	CodeFetchFailed       Code = "FETCH_FAILED"
	CodeBadRequest        Code = "BAD_REQUEST"
	CodeCanceled          Code = "CANCELED"
	CodeInternal          Code = "INTERNAL"
)

// CodeOf maps err to its wire code.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, region.ErrInvalidCropBox):
		return CodeInvalidCropBox
	case errors.Is(err, region.ErrFaceNotDetected):
		return CodeFaceNotDetected
	case errors.Is(err, sampler.ErrLowQualitySamples):
		return CodeLowQualitySamples
	case errors.Is(err, region.ErrImageTooLarge):
		return CodeImageTooLarge
	case errors.Is(err, region.ErrMalformedImage):
		return CodeMalformedImage
	case errors.Is(err, ErrFetchFailed):
		return CodeFetchFailed
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	}
	return CodeInternal
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeFetchFailed, CodeCanceled:
		return true
	}
	return false
}
