// Package illumination estimates the scene illuminant from skin samples with
// the shades-of-gray method and applies a partial per-channel correction.
package illumination

import (
	"math"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
)

// Normalizer applies shades-of-gray correction.
type Normalizer struct {
	cfg calibration.Illumination
}

// New creates a Normalizer.
func New(cfg calibration.Illumination) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize returns the corrected samples and the gains that produced them.
// Each channel estimate is the p-norm mean of that channel; the full gain
// pulls every channel to the common mean and is then applied at the
// configured strength and clamped.
func (n *Normalizer) Normalize(samples []model.PixelSample) ([]model.CorrectedSample, model.Gains) {
	if len(samples) == 0 {
		return nil, model.Gains{R: 1, G: 1, B: 1}
	}
	er, eg, eb := n.estimate(samples)
	mean := (er + eg + eb) / 3

	var clamped bool
	gain := func(e float64) float64 {
		if e <= 0 || mean <= 0 {
			return 1
		}
		g := math.Exp(n.cfg.Strength * math.Log(mean/e))
		switch {
		case g < n.cfg.MinGain:
			clamped = true
			return n.cfg.MinGain
		case g > n.cfg.MaxGain:
			clamped = true
			return n.cfg.MaxGain
		}
		return g
	}
	gains := model.Gains{R: gain(er), G: gain(eg), B: gain(eb)}
	gains.Clamped = clamped

	out := make([]model.CorrectedSample, len(samples))
	for i, s := range samples {
		c := s.Float()
		out[i] = model.CorrectedSample{
			R: channel(c.R * gains.R),
			G: channel(c.G * gains.G),
			B: channel(c.B * gains.B),
		}
	}
	return out, gains
}

func (n *Normalizer) estimate(samples []model.PixelSample) (float64, float64, float64) {
	p := n.cfg.P
	var sr, sg, sb float64
	for _, s := range samples {
		sr += math.Pow(float64(s.R), p)
		sg += math.Pow(float64(s.G), p)
		sb += math.Pow(float64(s.B), p)
	}
	k := float64(len(samples))
	return math.Pow(sr/k, 1/p), math.Pow(sg/k, 1/p), math.Pow(sb/k, 1/p)
}

func channel(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
