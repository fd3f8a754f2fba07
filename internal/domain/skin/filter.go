// Package skin implements the multi-gate skin-candidate filter shared by the
// region locator and the skin sampler.
package skin

import (
	"image"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// Rejection reasons, reported in sampler diagnostics.
const (
	ReasonNearBlack    = "near_black"
	ReasonNearWhite    = "near_white"
	ReasonBrightness   = "brightness"
	ReasonSaturation   = "saturation"
	ReasonHue          = "hue"
	ReasonChannelOrder = "channel_order"
	ReasonLabBox       = "lab_box"
)

// Reasons lists every reason in evaluation order.
var Reasons = []string{
	ReasonNearBlack,
	ReasonNearWhite,
	ReasonBrightness,
	ReasonSaturation,
	ReasonHue,
	ReasonChannelOrder,
	ReasonLabBox,
}

// Filter classifies pixels as skin candidates.
type Filter struct {
	gate calibration.SkinGate
}

// NewFilter builds a filter from the calibration gate.
func NewFilter(gate calibration.SkinGate) *Filter {
	return &Filter{gate: gate}
}

// IsSkin reports whether p passes every gate.
func (f *Filter) IsSkin(p model.PixelSample) bool {
	return f.Check(p) == ""
}

// Check returns the first gate p fails, or "" when p is a skin candidate.
// Gates run cheapest first; the Lab conversion only happens for pixels that
// survive the RGB and HSV gates.
func (f *Filter) Check(p model.PixelSample) string {
	g := f.gate
	hi := max(p.R, p.G, p.B)
	lo := min(p.R, p.G, p.B)

	if hi <= g.NearBlack {
		return ReasonNearBlack
	}
	if lo >= g.NearWhite {
		return ReasonNearWhite
	}

	h, s, v := colorspace.RGBToHSV(p.R, p.G, p.B)
	if v < g.MinValue || v > g.MaxValue {
		return ReasonBrightness
	}
	if s < g.MinSaturation || s > g.MaxSaturation {
		return ReasonSaturation
	}
	if h > g.HueMax && h < g.HueWrapMin {
		return ReasonHue
	}

	r, gr, b := int(p.R), int(p.G), int(p.B)
	if r <= gr || gr < b || r-gr < g.MinRedGreen || r-b < g.MinRedBlue {
		return ReasonChannelOrder
	}

	lab := colorspace.RGBToLab(p.R, p.G, p.B)
	if lab.L < g.LabLMin || lab.L > g.LabLMax ||
		lab.A < g.LabAMin || lab.A > g.LabAMax ||
		lab.B < g.LabBMin || lab.B > g.LabBMax {
		return ReasonLabBox
	}
	return ""
}

// PixelAt reads the pixel at (x,y) of img, ignoring alpha.
func PixelAt(img *image.NRGBA, x, y int) model.PixelSample {
	i := img.PixOffset(x, y)
	return model.PixelSample{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}
