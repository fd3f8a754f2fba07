package analysis

import (
	"maps"

	"github.com/okian/swatch/internal/domain/model"
)

// Classification is the rounded outcome of one Analyze call.
type Classification struct {
	Attributes        model.AttributeProfile  `json:"attributes"`
	Season            model.Season            `json:"season"`
	Alternate         *model.SeasonCandidate  `json:"alternate,omitempty"`
	Candidates        []model.SeasonCandidate `json:"candidates"`
	Confidence        float64                 `json:"confidence"`
	NeedsConfirmation bool                    `json:"needs_confirmation"`
	Branch            string                  `json:"branch"`
	Penalties         []string                `json:"penalties,omitempty"`
	Diagnostics       Diagnostics             `json:"diagnostics"`
}

// Diagnostics are tuning aids; none of them changes the answer.
type Diagnostics struct {
	Region             model.Region   `json:"region"`
	RegionMethod       string         `json:"region_method"`
	Orientation        int            `json:"orientation"`
	SampleCandidates   int            `json:"sample_candidates"`
	SampleCount        int            `json:"sample_count"`
	Rejections         map[string]int `json:"rejections"`
	Gains              model.Gains    `json:"gains"`
	Noisy              bool           `json:"noisy"`
	LightingBias       float64        `json:"lighting_bias"`
	MedianLab          model.LabColor `json:"median_lab"`
	RawMedianLab       model.LabColor `json:"raw_median_lab"`
	MADLab             model.LabColor `json:"mad_lab"`
	MedianChroma       float64        `json:"median_chroma"`
	PercentileChroma   float64        `json:"percentile_chroma"`
	CalibrationVersion string         `json:"calibration_version"`
}

// Rounded returns c with Lab values at 0.1 and scores and confidences at 0.01.
func (c Classification) Rounded() Classification {
	c.Attributes = c.Attributes.Rounded()

	cands := make([]model.SeasonCandidate, len(c.Candidates))
	for i, s := range c.Candidates {
		s.Score = model.Round2(s.Score)
		cands[i] = s
	}
	c.Candidates = cands
	if c.Alternate != nil {
		alt := *c.Alternate
		alt.Score = model.Round2(alt.Score)
		c.Alternate = &alt
	}
	c.Confidence = model.Round2(c.Confidence)

	d := c.Diagnostics
	d.Rejections = maps.Clone(d.Rejections)
	d.Gains = d.Gains.Rounded()
	d.LightingBias = model.Round2(d.LightingBias)
	d.MedianLab = d.MedianLab.Rounded()
	d.RawMedianLab = d.RawMedianLab.Rounded()
	d.MADLab = d.MADLab.Rounded()
	d.MedianChroma = model.Round1(d.MedianChroma)
	d.PercentileChroma = model.Round1(d.PercentileChroma)
	c.Diagnostics = d
	return c
}
