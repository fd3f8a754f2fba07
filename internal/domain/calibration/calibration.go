// Package calibration holds the single versioned threshold set used by every
// stage of the classification pipeline and by the garment scorer.
//
// A Set is read-only once built. Callers start from Default and may override
// fields through configuration; Validate rejects sets whose breakpoints are
// out of order.
package calibration

import (
	"errors"
	"fmt"
)

// Version identifies the default threshold set.
const Version = "2025.1"

// UndertoneSource selects which medians feed the undertone classifier.
const (
	SourceRaw       = "raw"
	SourceCorrected = "corrected"
)

// ErrInvalidCalibration is returned by Validate.
var ErrInvalidCalibration = errors.New("invalid calibration")

// Set is the complete threshold set.
type Set struct {
	Version      string       `koanf:"version" json:"version"`
	Region       Region       `koanf:"region" json:"region"`
	Skin         SkinGate     `koanf:"skin" json:"skin"`
	Sampler      Sampler      `koanf:"sampler" json:"sampler"`
	Illumination Illumination `koanf:"illumination" json:"illumination"`
	Stats        Stats        `koanf:"stats" json:"stats"`
	Attributes   Attributes   `koanf:"attributes" json:"attributes"`
	Season       Season       `koanf:"season" json:"season"`
	Garment      Garment      `koanf:"garment" json:"garment"`
}

// Region configures region location and the lighting-bias signal.
type Region struct {
	// MaxPixels bounds width×height of a decoded photo, checked from the header.
	MaxPixels    int     `koanf:"max_pixels" json:"max_pixels"`
	MinSize      int     `koanf:"min_size" json:"min_size"`
	ScanMaxSide  int     `koanf:"scan_max_side" json:"scan_max_side"`
	MinSkinRatio float64 `koanf:"min_skin_ratio" json:"min_skin_ratio"`
	MinSkinCount int     `koanf:"min_skin_count" json:"min_skin_count"`
	MinAspect    float64 `koanf:"min_aspect" json:"min_aspect"`
	MaxAspect    float64 `koanf:"max_aspect" json:"max_aspect"`
	Padding      float64 `koanf:"padding" json:"padding"`

	// Lighting bias is measured on non-skin pixels only.
	BiasMinNonSkin float64 `koanf:"bias_min_non_skin" json:"bias_min_non_skin"`
	BiasCastFloor  float64 `koanf:"bias_cast_floor" json:"bias_cast_floor"`
	BiasCastSpan   float64 `koanf:"bias_cast_span" json:"bias_cast_span"`
}

// SkinGate configures the multi-gate skin-candidate filter.
type SkinGate struct {
	MinValue      float64 `koanf:"min_value" json:"min_value"`
	MaxValue      float64 `koanf:"max_value" json:"max_value"`
	MinSaturation float64 `koanf:"min_saturation" json:"min_saturation"`
	MaxSaturation float64 `koanf:"max_saturation" json:"max_saturation"`
	HueMax        float64 `koanf:"hue_max" json:"hue_max"`
	HueWrapMin    float64 `koanf:"hue_wrap_min" json:"hue_wrap_min"`
	MinRedGreen   int     `koanf:"min_red_green" json:"min_red_green"`
	MinRedBlue    int     `koanf:"min_red_blue" json:"min_red_blue"`
	NearWhite     uint8   `koanf:"near_white" json:"near_white"`
	NearBlack     uint8   `koanf:"near_black" json:"near_black"`
	LabLMin       float64 `koanf:"lab_l_min" json:"lab_l_min"`
	LabLMax       float64 `koanf:"lab_l_max" json:"lab_l_max"`
	LabAMin       float64 `koanf:"lab_a_min" json:"lab_a_min"`
	LabAMax       float64 `koanf:"lab_a_max" json:"lab_a_max"`
	LabBMin       float64 `koanf:"lab_b_min" json:"lab_b_min"`
	LabBMax       float64 `koanf:"lab_b_max" json:"lab_b_max"`
}

// Zone is a rectangle in fractions of the working square.
type Zone struct {
	Name string  `koanf:"name" json:"name"`
	X0   float64 `koanf:"x0" json:"x0"`
	Y0   float64 `koanf:"y0" json:"y0"`
	X1   float64 `koanf:"x1" json:"x1"`
	Y1   float64 `koanf:"y1" json:"y1"`
}

// Contains reports whether the fractional point lies inside the zone.
func (z Zone) Contains(x, y float64) bool {
	return x >= z.X0 && x < z.X1 && y >= z.Y0 && y < z.Y1
}

// Sampler configures the sampling grid.
type Sampler struct {
	WorkingSize int     `koanf:"working_size" json:"working_size"`
	Stride      int     `koanf:"stride" json:"stride"`
	MinSamples  int     `koanf:"min_samples" json:"min_samples"`
	Zones       []Zone  `koanf:"zones" json:"zones"`
	Exclusions  []Zone  `koanf:"exclusions" json:"exclusions"`
	MaskCenterX float64 `koanf:"mask_center_x" json:"mask_center_x"`
	MaskCenterY float64 `koanf:"mask_center_y" json:"mask_center_y"`
	MaskRadiusX float64 `koanf:"mask_radius_x" json:"mask_radius_x"`
	MaskRadiusY float64 `koanf:"mask_radius_y" json:"mask_radius_y"`
}

// Illumination configures the shades-of-gray normalizer.
type Illumination struct {
	P        float64 `koanf:"p" json:"p"`
	Strength float64 `koanf:"strength" json:"strength"`
	MinGain  float64 `koanf:"min_gain" json:"min_gain"`
	MaxGain  float64 `koanf:"max_gain" json:"max_gain"`
}

// Stats configures robust statistics.
type Stats struct {
	ChromaPercentile float64 `koanf:"chroma_percentile" json:"chroma_percentile"`
	NoisyMADL        float64 `koanf:"noisy_mad_l" json:"noisy_mad_l"`
	NoisyMADB        float64 `koanf:"noisy_mad_b" json:"noisy_mad_b"`
}

// Attributes holds the category breakpoints and confidence shaping.
type Attributes struct {
	UndertoneSource string  `koanf:"undertone_source" json:"undertone_source"`
	CoolMax         float64 `koanf:"cool_max" json:"cool_max"`
	WarmMin         float64 `koanf:"warm_min" json:"warm_min"`
	LeanMin         float64 `koanf:"lean_min" json:"lean_min"`
	DeepMax         float64 `koanf:"deep_max" json:"deep_max"`
	LightMin        float64 `koanf:"light_min" json:"light_min"`
	MutedMax        float64 `koanf:"muted_max" json:"muted_max"`
	VividMin        float64 `koanf:"vivid_min" json:"vivid_min"`

	ConfidenceBase float64 `koanf:"confidence_base" json:"confidence_base"`
	ConfidenceSpan float64 `koanf:"confidence_span" json:"confidence_span"`
	UndertoneScale float64 `koanf:"undertone_scale" json:"undertone_scale"`
	DepthScale     float64 `koanf:"depth_scale" json:"depth_scale"`
	ClarityScale   float64 `koanf:"clarity_scale" json:"clarity_scale"`

	BiasPenalty    float64 `koanf:"bias_penalty" json:"bias_penalty"`
	NoisyPenalty   float64 `koanf:"noisy_penalty" json:"noisy_penalty"`
	MADLStart      float64 `koanf:"mad_l_start" json:"mad_l_start"`
	MADLSpan       float64 `koanf:"mad_l_span" json:"mad_l_span"`
	MADLPenaltyMax float64 `koanf:"mad_l_penalty_max" json:"mad_l_penalty_max"`
	MADBStart      float64 `koanf:"mad_b_start" json:"mad_b_start"`
	MADBSpan       float64 `koanf:"mad_b_span" json:"mad_b_span"`
	MADBPenaltyMax float64 `koanf:"mad_b_penalty_max" json:"mad_b_penalty_max"`
}

// Weights combine the three sub-scores of one season.
type Weights struct {
	Undertone float64 `koanf:"undertone" json:"undertone"`
	Depth     float64 `koanf:"depth" json:"depth"`
	Clarity   float64 `koanf:"clarity" json:"clarity"`
}

// Season configures the season decider.
type Season struct {
	GateConfidence float64 `koanf:"gate_confidence" json:"gate_confidence"`
	RampUndertone  float64 `koanf:"ramp_undertone" json:"ramp_undertone"`
	RampDepth      float64 `koanf:"ramp_depth" json:"ramp_depth"`
	RampChroma     float64 `koanf:"ramp_chroma" json:"ramp_chroma"`

	Spring Weights `koanf:"spring" json:"spring"`
	Summer Weights `koanf:"summer" json:"summer"`
	Autumn Weights `koanf:"autumn" json:"autumn"`
	Winter Weights `koanf:"winter" json:"winter"`

	DegenerateChroma    float64 `koanf:"degenerate_chroma" json:"degenerate_chroma"`
	DegenerateSpan      float64 `koanf:"degenerate_span" json:"degenerate_span"`
	DegenerateLeanBonus float64 `koanf:"degenerate_lean_bonus" json:"degenerate_lean_bonus"`
	DegenerateOffScale  float64 `koanf:"degenerate_off_scale" json:"degenerate_off_scale"`

	ConfirmBar        float64 `koanf:"confirm_bar" json:"confirm_bar"`
	CloseGap          float64 `koanf:"close_gap" json:"close_gap"`
	LowUndertone      float64 `koanf:"low_undertone" json:"low_undertone"`
	PenaltyNoisy      float64 `koanf:"penalty_noisy" json:"penalty_noisy"`
	PenaltyClamped    float64 `koanf:"penalty_clamped" json:"penalty_clamped"`
	PenaltyLowTone    float64 `koanf:"penalty_low_tone" json:"penalty_low_tone"`
	PenaltyClose      float64 `koanf:"penalty_close" json:"penalty_close"`
	PenaltyDegenerate float64 `koanf:"penalty_degenerate" json:"penalty_degenerate"`
}

// Tier holds the ΔE cutoffs for great, good and ok.
type Tier struct {
	Great float64 `koanf:"great" json:"great"`
	Good  float64 `koanf:"good" json:"good"`
	OK    float64 `koanf:"ok" json:"ok"`
}

// Garment configures the compatibility scorer.
type Garment struct {
	NeutralChroma float64 `koanf:"neutral_chroma" json:"neutral_chroma"`
	OliveAMin     float64 `koanf:"olive_a_min" json:"olive_a_min"`
	DeepCutoff    float64 `koanf:"deep_cutoff" json:"deep_cutoff"`
	LightTier     Tier    `koanf:"light_tier" json:"light_tier"`
	DeepTier      Tier    `koanf:"deep_tier" json:"deep_tier"`
	SmallDeltaE   float64 `koanf:"small_delta_e" json:"small_delta_e"`
	NeonChroma    float64 `koanf:"neon_chroma" json:"neon_chroma"`

	WeightUndertone float64 `koanf:"weight_undertone" json:"weight_undertone"`
	WeightDepth     float64 `koanf:"weight_depth" json:"weight_depth"`
	WeightClarity   float64 `koanf:"weight_clarity" json:"weight_clarity"`
	WeightPalette   float64 `koanf:"weight_palette" json:"weight_palette"`
}

// Default returns the consolidated threshold set.
func Default() Set {
	return Set{
		Version: Version,
		Region: Region{
			MaxPixels:      40_000_000,
			MinSize:        220,
			ScanMaxSide:    160,
			MinSkinRatio:   0.35,
			MinSkinCount:   50,
			MinAspect:      0.5,
			MaxAspect:      1.5,
			Padding:        0.20,
			BiasMinNonSkin: 0.05,
			BiasCastFloor:  0.08,
			BiasCastSpan:   0.32,
		},
		Skin: SkinGate{
			MinValue:      0.18,
			MaxValue:      0.98,
			MinSaturation: 0.08,
			MaxSaturation: 0.75,
			HueMax:        50,
			HueWrapMin:    335,
			MinRedGreen:   5,
			MinRedBlue:    12,
			NearWhite:     235,
			NearBlack:     40,
			LabLMin:       20,
			LabLMax:       92,
			LabAMin:       -2,
			LabAMax:       35,
			LabBMin:       -2,
			LabBMax:       45,
		},
		Sampler: Sampler{
			WorkingSize: 256,
			Stride:      4,
			MinSamples:  140,
			Zones: []Zone{
				{Name: "forehead", X0: 0.28, Y0: 0.14, X1: 0.72, Y1: 0.30},
				{Name: "left_cheek", X0: 0.14, Y0: 0.40, X1: 0.40, Y1: 0.74},
				{Name: "right_cheek", X0: 0.60, Y0: 0.40, X1: 0.86, Y1: 0.74},
			},
			Exclusions: []Zone{
				{Name: "nose", X0: 0.42, Y0: 0.30, X1: 0.58, Y1: 0.72},
				{Name: "mouth", X0: 0.25, Y0: 0.70, X1: 0.75, Y1: 0.86},
			},
			MaskCenterX: 0.50,
			MaskCenterY: 0.48,
			MaskRadiusX: 0.46,
			MaskRadiusY: 0.52,
		},
		Illumination: Illumination{
			P:        6,
			Strength: 0.30,
			MinGain:  0.70,
			MaxGain:  1.45,
		},
		Stats: Stats{
			ChromaPercentile: 0.70,
			NoisyMADL:        10,
			NoisyMADB:        4.5,
		},
		Attributes: Attributes{
			UndertoneSource: SourceRaw,
			CoolMax:         5,
			WarmMin:         9,
			LeanMin:         1,
			DeepMax:         45,
			LightMin:        58,
			MutedMax:        11,
			VividMin:        18,
			ConfidenceBase:  0.55,
			ConfidenceSpan:  0.40,
			UndertoneScale:  4,
			DepthScale:      6,
			ClarityScale:    4,
			BiasPenalty:     0.25,
			NoisyPenalty:    0.08,
			MADLStart:       3,
			MADLSpan:        9,
			MADLPenaltyMax:  0.15,
			MADBStart:       1.5,
			MADBSpan:        4.5,
			MADBPenaltyMax:  0.15,
		},
		Season: Season{
			GateConfidence:      0.70,
			RampUndertone:       2,
			RampDepth:           4,
			RampChroma:          3,
			Spring:              Weights{Undertone: 0.45, Depth: 0.35, Clarity: 0.20},
			Summer:              Weights{Undertone: 0.45, Depth: 0.30, Clarity: 0.25},
			Autumn:              Weights{Undertone: 0.45, Depth: 0.30, Clarity: 0.25},
			Winter:              Weights{Undertone: 0.45, Depth: 0.35, Clarity: 0.20},
			DegenerateChroma:    7,
			DegenerateSpan:      6,
			DegenerateLeanBonus: 0.05,
			DegenerateOffScale:  0.25,
			ConfirmBar:          0.72,
			CloseGap:            0.08,
			LowUndertone:        0.60,
			PenaltyNoisy:        0.05,
			PenaltyClamped:      0.08,
			PenaltyLowTone:      0.06,
			PenaltyClose:        0.08,
			PenaltyDegenerate:   0.12,
		},
		Garment: Garment{
			NeutralChroma:   8,
			OliveAMin:       -12,
			DeepCutoff:      35,
			LightTier:       Tier{Great: 8, Good: 14, OK: 22},
			DeepTier:        Tier{Great: 10, Good: 17, OK: 26},
			SmallDeltaE:     4.5,
			NeonChroma:      60,
			WeightUndertone: 0.35,
			WeightDepth:     0.15,
			WeightClarity:   0.20,
			WeightPalette:   0.30,
		},
	}
}

// Validate checks that breakpoints are ordered and ranges are usable.
func (s Set) Validate() error {
	a := s.Attributes
	switch {
	case s.Version == "":
		return fmt.Errorf("%w: empty version", ErrInvalidCalibration)
	case s.Region.MinSize <= 0:
		return fmt.Errorf("%w: region.min_size must be positive", ErrInvalidCalibration)
	case s.Region.MaxPixels < s.Region.MinSize*s.Region.MinSize:
		return fmt.Errorf("%w: region.max_pixels must admit a minimum-size region", ErrInvalidCalibration)
	case s.Region.MinAspect <= 0 || s.Region.MaxAspect < s.Region.MinAspect:
		return fmt.Errorf("%w: region aspect window", ErrInvalidCalibration)
	case s.Sampler.WorkingSize <= 0 || s.Sampler.Stride <= 0:
		return fmt.Errorf("%w: sampler grid", ErrInvalidCalibration)
	case len(s.Sampler.Zones) == 0:
		return fmt.Errorf("%w: sampler needs at least one zone", ErrInvalidCalibration)
	case s.Illumination.P < 1:
		return fmt.Errorf("%w: illumination.p must be >= 1", ErrInvalidCalibration)
	case s.Illumination.MinGain <= 0 || s.Illumination.MaxGain < s.Illumination.MinGain:
		return fmt.Errorf("%w: illumination gain range", ErrInvalidCalibration)
	case s.Stats.ChromaPercentile <= 0 || s.Stats.ChromaPercentile >= 1:
		return fmt.Errorf("%w: stats.chroma_percentile must be in (0,1)", ErrInvalidCalibration)
	case a.UndertoneSource != SourceRaw && a.UndertoneSource != SourceCorrected:
		return fmt.Errorf("%w: attributes.undertone_source %q", ErrInvalidCalibration, a.UndertoneSource)
	case a.CoolMax >= a.WarmMin:
		return fmt.Errorf("%w: cool_max must be below warm_min", ErrInvalidCalibration)
	case a.DeepMax >= a.LightMin:
		return fmt.Errorf("%w: deep_max must be below light_min", ErrInvalidCalibration)
	case a.MutedMax >= a.VividMin:
		return fmt.Errorf("%w: muted_max must be below vivid_min", ErrInvalidCalibration)
	case a.UndertoneScale <= 0 || a.DepthScale <= 0 || a.ClarityScale <= 0:
		return fmt.Errorf("%w: confidence scales must be positive", ErrInvalidCalibration)
	case s.Season.RampUndertone <= 0 || s.Season.RampDepth <= 0 || s.Season.RampChroma <= 0:
		return fmt.Errorf("%w: season ramps must be positive", ErrInvalidCalibration)
	case !tierOrdered(s.Garment.LightTier) || !tierOrdered(s.Garment.DeepTier):
		return fmt.Errorf("%w: garment tiers must be ascending", ErrInvalidCalibration)
	}
	return nil
}

// Tier returns the ΔE tier for a garment of lightness l.
func (g Garment) Tier(l float64) Tier {
	if l < g.DeepCutoff {
		return g.DeepTier
	}
	return g.LightTier
}

func tierOrdered(t Tier) bool {
	return t.Great > 0 && t.Great < t.Good && t.Good < t.OK
}
