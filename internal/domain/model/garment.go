package model

// Rating grades a garment color for a person.
type Rating string

// Rating values, from best to worst.
const (
	RatingGreat            Rating = "great"
	RatingGood             Rating = "good"
	RatingOK               Rating = "ok"
	RatingRisky            Rating = "risky"
	RatingInsufficientData Rating = "insufficient_data"
)

// Rank orders ratings; higher is better. insufficient_data ranks below risky.
func (r Rating) Rank() int {
	switch r {
	case RatingGreat:
		return 3
	case RatingGood:
		return 2
	case RatingOK:
		return 1
	case RatingRisky:
		return 0
	}
	return -1
}

// AtMost returns the worse of r and limit.
func (r Rating) AtMost(limit Rating) Rating {
	if r.Rank() > limit.Rank() {
		return limit
	}
	return r
}

// AtLeast returns the better of r and floor.
func (r Rating) AtLeast(floor Rating) Rating {
	if r.Rank() < floor.Rank() {
		return floor
	}
	return r
}

// Compatibility breaks a garment score down per dimension, each in [0,1].
type Compatibility struct {
	Undertone float64 `json:"undertone"`
	Depth     float64 `json:"depth"`
	Clarity   float64 `json:"clarity"`
	Palette   float64 `json:"palette"`
	Overall   float64 `json:"overall"`
}

// Explanation is a templated summary with supporting notes.
type Explanation struct {
	Summary   string   `json:"summary"`
	Why       []string `json:"why"`
	HowToWear []string `json:"how_to_wear"`
}

// GarmentColorScore is the result of scoring one garment color for one profile.
type GarmentColorScore struct {
	Rating            Rating           `json:"rating"`
	DeltaE            float64          `json:"delta_e"`
	Hex               string           `json:"hex,omitempty"`
	Lab               LabColor         `json:"lab"`
	MatchedColor      string           `json:"matched_color,omitempty"`
	MatchedSeason     Season           `json:"matched_season,omitempty"`
	Season            Season           `json:"season,omitempty"`
	GarmentAttributes AttributeProfile `json:"garment_attributes"`
	Compatibility     Compatibility    `json:"compatibility"`
	Adjustments       []string         `json:"adjustments,omitempty"`
	Explanation       Explanation      `json:"explanation"`
}

// Rounded returns s with ΔE and sub-scores at 0.01 and Lab at 0.1.
func (s GarmentColorScore) Rounded() GarmentColorScore {
	s.DeltaE = Round2(s.DeltaE)
	s.Lab = s.Lab.Rounded()
	s.GarmentAttributes = s.GarmentAttributes.Rounded()
	c := s.Compatibility
	s.Compatibility = Compatibility{
		Undertone: Round2(c.Undertone),
		Depth:     Round2(c.Depth),
		Clarity:   Round2(c.Clarity),
		Palette:   Round2(c.Palette),
		Overall:   Round2(c.Overall),
	}
	return s
}
