// Package attributes turns robust skin statistics into the categorical
// undertone, depth and clarity profile with per-attribute confidence.
package attributes

import (
	"math"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// Classifier maps stats to an AttributeProfile.
type Classifier struct {
	cfg calibration.Attributes
}

// New creates a Classifier.
func New(cfg calibration.Attributes) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify categorizes st. bias is the lighting-bias severity in [0,1].
//
// Undertone reads the raw or corrected median depending on configuration;
// depth uses corrected L and clarity the corrected percentile chroma.
// Confidence grows with the distance from the nearest category boundary and
// is reduced for lighting bias and sample spread.
func (c *Classifier) Classify(st model.RobustStats, bias float64) model.AttributeProfile {
	cfg := c.cfg
	source := st.MedianLab
	if cfg.UndertoneSource == calibration.SourceRaw {
		source = st.RawMedianLab
	}
	axis := colorspace.WarmthAxis(source)
	l := st.MedianLab.L
	chroma := st.PercentileChroma

	p := model.AttributeProfile{
		UndertoneLean: model.LeanNone,
		WarmthAxis:    axis,
		Lightness:     l,
		Chroma:        chroma,
	}

	var dTone, dDepth, dClarity float64
	switch {
	case axis <= cfg.CoolMax:
		p.Undertone, dTone = model.UndertoneCool, cfg.CoolMax-axis
	case axis >= cfg.WarmMin:
		p.Undertone, dTone = model.UndertoneWarm, axis-cfg.WarmMin
	default:
		p.Undertone, dTone = model.UndertoneNeutral, math.Min(axis-cfg.CoolMax, cfg.WarmMin-axis)
		mid := (cfg.CoolMax + cfg.WarmMin) / 2
		switch {
		case axis-mid >= cfg.LeanMin:
			p.UndertoneLean = model.LeanWarm
		case mid-axis >= cfg.LeanMin:
			p.UndertoneLean = model.LeanCool
		}
	}

	switch {
	case l < cfg.DeepMax:
		p.Depth, dDepth = model.DepthDeep, cfg.DeepMax-l
	case l >= cfg.LightMin:
		p.Depth, dDepth = model.DepthLight, l-cfg.LightMin
	default:
		p.Depth, dDepth = model.DepthMedium, math.Min(l-cfg.DeepMax, cfg.LightMin-l)
	}

	switch {
	case chroma < cfg.MutedMax:
		p.Clarity, dClarity = model.ClarityMuted, cfg.MutedMax-chroma
	case chroma >= cfg.VividMin:
		p.Clarity, dClarity = model.ClarityVivid, chroma-cfg.VividMin
	default:
		p.Clarity, dClarity = model.ClarityClear, math.Min(chroma-cfg.MutedMax, cfg.VividMin-chroma)
	}

	p.Confidence = model.Confidence{
		Undertone: c.confidence(dTone, cfg.UndertoneScale),
		Depth:     c.confidence(dDepth, cfg.DepthScale),
		Clarity:   c.confidence(dClarity, cfg.ClarityScale),
	}

	p.Confidence.Undertone -= clamp01(bias) * cfg.BiasPenalty
	if st.Noisy {
		p.Confidence.Undertone -= cfg.NoisyPenalty
		p.Confidence.Depth -= cfg.NoisyPenalty
		p.Confidence.Clarity -= cfg.NoisyPenalty
	}
	p.Confidence.Depth -= cfg.MADLPenaltyMax * clamp01((st.MADLab.L-cfg.MADLStart)/cfg.MADLSpan)
	p.Confidence.Clarity -= cfg.MADBPenaltyMax * clamp01((st.MADLab.B-cfg.MADBStart)/cfg.MADBSpan)

	p.Confidence.Undertone = clamp01(p.Confidence.Undertone)
	p.Confidence.Depth = clamp01(p.Confidence.Depth)
	p.Confidence.Clarity = clamp01(p.Confidence.Clarity)
	return p
}

func (c *Classifier) confidence(d, scale float64) float64 {
	return c.cfg.ConfidenceBase + c.cfg.ConfidenceSpan*math.Min(1, math.Max(0, d)/scale)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
