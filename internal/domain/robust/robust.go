// Package robust reduces skin samples to median-based Lab statistics.
package robust

import (
	"math"
	"slices"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// Estimator computes robust statistics.
type Estimator struct {
	cfg calibration.Stats
}

// New creates an Estimator.
func New(cfg calibration.Stats) *Estimator {
	return &Estimator{cfg: cfg}
}

// Compute summarizes corrected samples in Lab and keeps the raw median for
// undertone classification. Both slices may be empty; the zero stats are
// returned in that case.
func (e *Estimator) Compute(raw []model.PixelSample, corrected []model.CorrectedSample) model.RobustStats {
	n := len(corrected)
	ls := make([]float64, n)
	as := make([]float64, n)
	bs := make([]float64, n)
	cs := make([]float64, n)
	for i, s := range corrected {
		lab := colorspace.SampleToLab(s)
		ls[i], as[i], bs[i] = lab.L, lab.A, lab.B
		cs[i] = colorspace.Chroma(lab)
	}

	st := model.RobustStats{
		MedianLab:        model.LabColor{L: Median(ls), A: Median(as), B: Median(bs)},
		MedianChroma:     Median(cs),
		PercentileChroma: Percentile(cs, e.cfg.ChromaPercentile),
		SampleCount:      n,
	}
	st.MADLab = model.LabColor{
		L: MAD(ls, st.MedianLab.L),
		A: MAD(as, st.MedianLab.A),
		B: MAD(bs, st.MedianLab.B),
	}
	st.Noisy = st.MADLab.L > e.cfg.NoisyMADL || st.MADLab.B > e.cfg.NoisyMADB

	rl := make([]float64, len(raw))
	ra := make([]float64, len(raw))
	rb := make([]float64, len(raw))
	for i, p := range raw {
		lab := colorspace.RGBToLab(p.R, p.G, p.B)
		rl[i], ra[i], rb[i] = lab.L, lab.A, lab.B
	}
	st.RawMedianLab = model.LabColor{L: Median(rl), A: Median(ra), B: Median(rb)}
	return st
}

// Median returns the median of xs without modifying it. Even-length inputs
// average the two middle values.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// MAD returns the median absolute deviation of xs around center.
func MAD(xs []float64, center float64) float64 {
	dev := make([]float64, len(xs))
	for i, x := range xs {
		dev[i] = math.Abs(x - center)
	}
	return Median(dev)
}

// Percentile returns the p-quantile (p in [0,1]) of xs with linear
// interpolation between closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	pos := math.Max(0, math.Min(1, p)) * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}
