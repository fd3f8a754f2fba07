// Package model contains the value types passed between pipeline stages.
//
// Every value here is created, transformed and discarded within a single
// request; none of them is mutated after construction.
package model

import "math"

// PixelSample is a raw observed sRGB color.
type PixelSample struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// CorrectedSample is a PixelSample after illumination gains, kept in float
// precision and always within [0,255].
type CorrectedSample struct {
	R float64
	G float64
	B float64
}

// Float returns the sample as a CorrectedSample without any correction.
func (p PixelSample) Float() CorrectedSample {
	return CorrectedSample{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
}

// LabColor is a CIE L*a*b* color under D65. L is in [0,100].
type LabColor struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Rounded returns the color with every channel rounded to 0.1.
func (c LabColor) Rounded() LabColor {
	return LabColor{L: Round1(c.L), A: Round1(c.A), B: Round1(c.B)}
}

// Round1 rounds x to one decimal place.
func Round1(x float64) float64 { return math.Round(x*10) / 10 }

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 { return math.Round(x*100) / 100 }

// Gains are per-channel illumination multipliers.
type Gains struct {
	R       float64 `json:"r"`
	G       float64 `json:"g"`
	B       float64 `json:"b"`
	Clamped bool    `json:"clamped"`
}

// Rounded returns the gains rounded to 0.01.
func (g Gains) Rounded() Gains {
	return Gains{R: Round2(g.R), G: Round2(g.G), B: Round2(g.B), Clamped: g.Clamped}
}
