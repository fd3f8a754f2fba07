package model

// SkinSampleSet is the filtered output of the skin sampler.
type SkinSampleSet struct {
	Samples []PixelSample

	// Candidates is the number of grid points inside the mask, Accepted how many passed the filter.
	Candidates int
	Accepted   int

	// Rejections counts rejected grid points by reason.
	Rejections map[string]int
}

// RobustStats summarizes corrected samples.
type RobustStats struct {
	MedianLab        LabColor `json:"median_lab"`
	MADLab           LabColor `json:"mad_lab"`
	MedianChroma     float64  `json:"median_chroma"`
	PercentileChroma float64  `json:"percentile_chroma"`
	SampleCount      int      `json:"sample_count"`
	Noisy            bool     `json:"noisy"`

	// RawMedianLab is the median of the samples before illumination correction.
	RawMedianLab LabColor `json:"raw_median_lab"`
}
