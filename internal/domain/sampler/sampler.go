// Package sampler draws skin samples from the cheek and forehead zones of a
// located face region.
package sampler

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/skin"
)

// ErrLowQualitySamples is returned when too few grid points pass the skin filter.
var ErrLowQualitySamples = errors.New("too few usable skin samples")

// Sampler walks a fixed grid over the normalized region.
type Sampler struct {
	cfg    calibration.Sampler
	filter *skin.Filter
}

// New creates a Sampler.
func New(cfg calibration.Sampler, filter *skin.Filter) *Sampler {
	return &Sampler{cfg: cfg, filter: filter}
}

// Sample crops r out of img, resizes it to the working square and collects
// every grid point that lies in a zone, inside the face ellipse, outside the
// exclusions, and passes the skin filter.
//
// On ErrLowQualitySamples the returned set still carries the diagnostics.
func (s *Sampler) Sample(img *image.NRGBA, r model.Region) (model.SkinSampleSet, error) {
	set := model.SkinSampleSet{Rejections: make(map[string]int, len(skin.Reasons))}
	if r.Area() == 0 || !r.Within(img.Bounds()) {
		return set, fmt.Errorf("%w: region %+v outside image %v", ErrLowQualitySamples, r, img.Bounds())
	}

	n := s.cfg.WorkingSize
	work := imaging.Resize(imaging.Crop(img, r.Rect()), n, n, imaging.Linear)

	for y := s.cfg.Stride / 2; y < n; y += s.cfg.Stride {
		fy := (float64(y) + 0.5) / float64(n)
		for x := s.cfg.Stride / 2; x < n; x += s.cfg.Stride {
			fx := (float64(x) + 0.5) / float64(n)
			if !s.inMask(fx, fy) {
				continue
			}
			set.Candidates++
			p := skin.PixelAt(work, x, y)
			if reason := s.filter.Check(p); reason != "" {
				set.Rejections[reason]++
				continue
			}
			set.Samples = append(set.Samples, p)
		}
	}
	set.Accepted = len(set.Samples)

	if set.Accepted < s.cfg.MinSamples {
		return set, fmt.Errorf("%w: %d of %d grid points accepted, need %d",
			ErrLowQualitySamples, set.Accepted, set.Candidates, s.cfg.MinSamples)
	}
	return set, nil
}

func (s *Sampler) inMask(fx, fy float64) bool {
	dx := (fx - s.cfg.MaskCenterX) / s.cfg.MaskRadiusX
	dy := (fy - s.cfg.MaskCenterY) / s.cfg.MaskRadiusY
	if dx*dx+dy*dy > 1 {
		return false
	}
	for _, z := range s.cfg.Exclusions {
		if z.Contains(fx, fy) {
			return false
		}
	}
	for _, z := range s.cfg.Zones {
		if z.Contains(fx, fy) {
			return true
		}
	}
	return false
}
