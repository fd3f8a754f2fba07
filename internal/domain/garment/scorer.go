// Package garment rates garment colors against a person's season and
// attribute profile.
package garment

import (
	"math"

	"github.com/okian/swatch/internal/domain/attributes"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// Adjustment names, applied in this order.
const (
	AdjustOpposition  = "undertone_opposition"
	AdjustClarityCap  = "clarity_cap"
	AdjustNeonCap     = "neon_near_face"
	AdjustSmallDelta  = "small_delta_floor"
	AdjustCompatFloor = "compatible_floor"
)

// Request is one garment color to score.
type Request struct {
	Color *model.PixelSample

	// Season may be empty when Profile is complete; the season is then derived.
	Season    model.Season
	Secondary model.Season
	Profile   Profile
	NearFace  bool
}

// relation is the undertone relationship between person and garment.
type relation int

const (
	relCompatible relation = iota
	relPartial
	relOpposed
)

// Scorer rates garment colors. It is safe for concurrent use.
type Scorer struct {
	cfg        calibration.Garment
	classifier *attributes.Classifier
}

// New creates a Scorer. Garment depth and clarity use the skin breakpoints.
func New(cfg calibration.Garment, attrs calibration.Attributes) *Scorer {
	attrs.UndertoneSource = calibration.SourceCorrected
	return &Scorer{cfg: cfg, classifier: attributes.New(attrs)}
}

// Attributes classifies a garment color. Achromatic colors are neutral and
// the yellow-leaning, slightly green olive bucket is reported separately.
func (s *Scorer) Attributes(lab model.LabColor) model.AttributeProfile {
	chroma := colorspace.Chroma(lab)
	p := s.classifier.Classify(model.RobustStats{
		MedianLab:        lab,
		RawMedianLab:     lab,
		MedianChroma:     chroma,
		PercentileChroma: chroma,
		SampleCount:      1,
	}, 0)
	switch {
	case chroma < s.cfg.NeutralChroma:
		p.Undertone, p.UndertoneLean = model.UndertoneNeutral, model.LeanNone
	case lab.B > 0 && lab.A >= s.cfg.OliveAMin && lab.A < 0 && lab.B > math.Abs(lab.A):
		p.Undertone, p.UndertoneLean = model.UndertoneOlive, model.LeanNone
	}
	return p
}

// Score rates one garment color. It returns insufficient_data only when the
// color or both the season and a complete profile are missing.
func (s *Scorer) Score(req Request) model.GarmentColorScore {
	if req.Color == nil {
		return insufficient("garment color")
	}
	season := req.Season
	var person model.AttributeProfile
	switch {
	case season != "":
		person = req.Profile.Over(season.Profile())
	case req.Profile.Complete():
		season = SeasonFor(req.Profile.Undertone, req.Profile.Depth, req.Profile.Clarity)
		person = req.Profile.Over(season.Profile())
	default:
		return insufficient("season or attribute profile")
	}
	primary, ok := PaletteFor(season)
	if !ok {
		return insufficient("season or attribute profile")
	}

	lab := colorspace.RGBToLab(req.Color.R, req.Color.G, req.Color.B)
	garment := s.Attributes(lab)
	out := model.GarmentColorScore{
		Hex:               colorspace.Hex(*req.Color),
		Lab:               lab,
		Season:            season,
		GarmentAttributes: garment,
	}

	match, de := primary.nearest(lab)
	out.MatchedSeason = season
	if alt, ok := PaletteFor(req.Secondary); ok && req.Secondary != season {
		if m, d := alt.nearest(lab); d < de {
			match, de = m, d
			out.MatchedSeason = req.Secondary
		}
	}
	out.MatchedColor = match.Name
	out.DeltaE = de

	tier := s.cfg.Tier(lab.L)
	rating := baseRating(de, tier)
	rel := undertoneRelation(person.Undertone, garment.Undertone)
	mismatch := clarityMismatch(person.Clarity, garment.Clarity)
	neon := false

	if rel == relOpposed {
		rating = model.RatingRisky
		out.Adjustments = append(out.Adjustments, AdjustOpposition)
	}
	if mismatch {
		limit, name := model.RatingGood, AdjustClarityCap
		if req.NearFace {
			limit = model.RatingOK
			if garment.Chroma >= s.cfg.NeonChroma {
				limit, name, neon = model.RatingRisky, AdjustNeonCap, true
			}
		}
		if capped := rating.AtMost(limit); capped != rating {
			rating = capped
			out.Adjustments = append(out.Adjustments, name)
		}
	}
	if rel == relCompatible && de <= s.cfg.SmallDeltaE {
		if raised := rating.AtLeast(model.RatingGood); raised != rating {
			rating = raised
			out.Adjustments = append(out.Adjustments, AdjustSmallDelta)
		}
	}
	if rel == relCompatible && !neon && de <= tier.OK {
		if raised := rating.AtLeast(model.RatingOK); raised != rating {
			rating = raised
			out.Adjustments = append(out.Adjustments, AdjustCompatFloor)
		}
	}
	out.Rating = rating

	out.Compatibility = s.compatibility(person, garment, rel, mismatch, de, tier)
	out.Explanation = explain(out, person, rel, mismatch, req.NearFace)
	return out
}

func (s *Scorer) compatibility(person, garment model.AttributeProfile, rel relation, mismatch bool, de float64, tier calibration.Tier) model.Compatibility {
	c := model.Compatibility{
		Undertone: undertoneScore(person.Undertone, garment.Undertone, rel),
		Depth:     1 - math.Abs(float64(person.Depth.Index()-garment.Depth.Index()))/2,
		Clarity:   1 - math.Abs(float64(person.Clarity.Index()-garment.Clarity.Index()))/2,
		Palette:   math.Max(0, 1-de/tier.OK),
	}
	if mismatch {
		c.Clarity = 0
	}
	w := s.cfg
	sum := w.WeightUndertone + w.WeightDepth + w.WeightClarity + w.WeightPalette
	if sum > 0 {
		c.Overall = (w.WeightUndertone*c.Undertone + w.WeightDepth*c.Depth +
			w.WeightClarity*c.Clarity + w.WeightPalette*c.Palette) / sum
	}
	return c
}

func baseRating(de float64, t calibration.Tier) model.Rating {
	switch {
	case de <= t.Great:
		return model.RatingGreat
	case de <= t.Good:
		return model.RatingGood
	case de <= t.OK:
		return model.RatingOK
	}
	return model.RatingRisky
}

// undertoneRelation treats olive as warm-friendly: compatible with warm
// people, only partial with cool ones.
func undertoneRelation(person, garment model.Undertone) relation {
	switch person {
	case model.UndertoneWarm:
		if garment == model.UndertoneCool {
			return relOpposed
		}
	case model.UndertoneCool:
		switch garment {
		case model.UndertoneWarm:
			return relOpposed
		case model.UndertoneOlive:
			return relPartial
		}
	}
	return relCompatible
}

func undertoneScore(person, garment model.Undertone, rel relation) float64 {
	switch rel {
	case relOpposed:
		return 0
	case relPartial:
		return 0.5
	}
	switch {
	case person == garment:
		return 1
	case garment == model.UndertoneNeutral:
		return 0.8
	case garment == model.UndertoneOlive:
		return 0.85
	}
	return 0.7
}

func clarityMismatch(person, garment model.Clarity) bool {
	return (person == model.ClarityMuted && garment == model.ClarityVivid) ||
		(person == model.ClarityVivid && garment == model.ClarityMuted)
}

func insufficient(missing string) model.GarmentColorScore {
	return model.GarmentColorScore{
		Rating: model.RatingInsufficientData,
		Explanation: model.Explanation{
			Summary: "Not enough information to score this color.",
			Why:     []string{"Missing " + missing + "."},
		},
	}
}
