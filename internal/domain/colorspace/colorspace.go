// Package colorspace provides the pure color conversions used by the pipeline:
// sRGB to CIE Lab (D65), HSV, chroma, hue angle and perceptual distance.
//
// Every function is total for r,g,b in [0,255]. ΔE is CIEDE2000 throughout;
// thresholds elsewhere in the module are calibrated against it.
package colorspace

import (
	"errors"
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/okian/swatch/internal/domain/model"
)

// go-colorful works with L in [0,1]; the module uses the CIE [0,100] scale.
const labScale = 100.0

// ErrInvalidHex is returned when a garment color string cannot be parsed.
var ErrInvalidHex = errors.New("invalid hex color")

// RGBToLab converts an 8-bit sRGB triple to Lab.
func RGBToLab(r, g, b uint8) model.LabColor {
	return FloatToLab(float64(r), float64(g), float64(b))
}

// SampleToLab converts a (possibly corrected) float sample to Lab.
func SampleToLab(s model.CorrectedSample) model.LabColor {
	return FloatToLab(s.R, s.G, s.B)
}

// FloatToLab converts sRGB channels in [0,255] to Lab. L is clamped to [0,100].
func FloatToLab(r, g, b float64) model.LabColor {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	l, a, bb := c.Lab()
	return model.LabColor{
		L: clamp(l*labScale, 0, 100),
		A: a * labScale,
		B: bb * labScale,
	}
}

// LabToRGB is the approximate inverse of RGBToLab, for display only. Colors
// outside the sRGB gamut are clamped, so the conversion does not round-trip.
func LabToRGB(lab model.LabColor) (r, g, b uint8) {
	return toColorful(lab).Clamped().RGB255()
}

// RGBToHSV returns hue in [0,360) and saturation, value in [0,1].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Hsv()
}

// Chroma returns sqrt(a²+b²).
func Chroma(lab model.LabColor) float64 {
	return math.Hypot(lab.A, lab.B)
}

// HueAngle returns atan2(b,a) in degrees, normalized to [0,360).
func HueAngle(lab model.LabColor) float64 {
	h := math.Atan2(lab.B, lab.A) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}
	return h
}

// WarmthAxis returns b − 0.5·a; positive values lean yellow, negative lean pink/blue.
func WarmthAxis(lab model.LabColor) float64 {
	return lab.B - 0.5*lab.A
}

// DeltaE returns the CIEDE2000 distance between two Lab colors.
func DeltaE(x, y model.LabColor) float64 {
	if x == y {
		return 0
	}
	return toColorful(x).DistanceCIEDE2000(toColorful(y)) * labScale
}

// DeltaE76 returns the Euclidean Lab distance. Diagnostics only.
func DeltaE76(x, y model.LabColor) float64 {
	dl, da, db := x.L-y.L, x.A-y.A, x.B-y.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb".
func ParseHex(s string) (model.PixelSample, error) {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if len(v) != 7 && len(v) != 4 {
		return model.PixelSample{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	c, err := colorful.Hex(strings.ToLower(v))
	if err != nil {
		return model.PixelSample{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	r, g, b := c.RGB255()
	return model.PixelSample{R: r, G: g, B: b}, nil
}

// Hex formats a sample as "#rrggbb".
func Hex(p model.PixelSample) string {
	return fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
}

func toColorful(lab model.LabColor) colorful.Color {
	return colorful.Lab(lab.L/labScale, lab.A/labScale, lab.B/labScale)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
