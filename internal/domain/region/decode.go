package region

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // register the WebP decoder
)

// Orientation is the EXIF orientation tag value (1..8).
type Orientation int

// EXIF orientation values.
const (
	OrientationNormal     Orientation = 1
	OrientationFlipH      Orientation = 2
	OrientationRotate180  Orientation = 3
	OrientationFlipV      Orientation = 4
	OrientationTranspose  Orientation = 5
	OrientationRotate270  Orientation = 6
	OrientationTransverse Orientation = 7
	OrientationRotate90   Orientation = 8
)

// Decode decodes image bytes and applies the EXIF orientation so that every
// later stage works on upright pixels. The result always starts at (0,0).
// Images with more than maxPixels pixels are rejected from their header,
// before any pixel is decoded; maxPixels <= 0 disables the check.
func Decode(data []byte, maxPixels int) (*image.NRGBA, Orientation, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty input", ErrMalformedImage)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, fmt.Errorf("%w: zero-sized image", ErrMalformedImage)
	}
	o := ReadOrientation(data)
	return Orient(img, o), o, nil
}

// ReadOrientation returns the EXIF orientation of data, or OrientationNormal
// when the image has no usable EXIF block.
func ReadOrientation(data []byte) (o Orientation) {
	// goexif can panic on truncated EXIF blocks.
	defer func() {
		if recover() != nil {
			o = OrientationNormal
		}
	}()
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return OrientationNormal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationNormal
	}
	v, err := tag.Int(0)
	if err != nil || v < int(OrientationNormal) || v > int(OrientationRotate90) {
		return OrientationNormal
	}
	return Orientation(v)
}

// Orient applies orientation o to img.
func Orient(img image.Image, o Orientation) *image.NRGBA {
	switch o {
	case OrientationFlipH:
		return imaging.FlipH(img)
	case OrientationRotate180:
		return imaging.Rotate180(img)
	case OrientationFlipV:
		return imaging.FlipV(img)
	case OrientationTranspose:
		return imaging.Transpose(img)
	case OrientationRotate270:
		return imaging.Rotate270(img)
	case OrientationTransverse:
		return imaging.Transverse(img)
	case OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}
