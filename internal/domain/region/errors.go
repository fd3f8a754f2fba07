package region

import "errors"

// Sentinel errors raised while decoding and locating.
var (
	ErrInvalidCropBox  = errors.New("invalid crop box")
	ErrFaceNotDetected = errors.New("face not detected")
	ErrMalformedImage  = errors.New("malformed image")
	ErrImageTooLarge   = errors.New("image too large")
)
