package garment

import (
	"fmt"
	"slices"

	"github.com/okian/swatch/internal/domain/model"
)

var summaries = map[model.Rating]string{
	model.RatingGreat: "%s is a great match for your %s palette.",
	model.RatingGood:  "%s works well with your %s coloring.",
	model.RatingOK:    "%s is wearable with a %s palette if you style it carefully.",
	model.RatingRisky: "%s is likely to fight your %s coloring.",
}

// explain picks templated wording by rating and by which adjustments fired.
func explain(sc model.GarmentColorScore, person model.AttributeProfile, rel relation, mismatch, nearFace bool) model.Explanation {
	e := model.Explanation{
		Summary: fmt.Sprintf(summaries[sc.Rating], sc.Hex, sc.Season),
	}

	e.Why = append(e.Why, fmt.Sprintf("Closest %s palette color is %s (ΔE %.1f).", sc.MatchedSeason, sc.MatchedColor, sc.DeltaE))
	g := sc.GarmentAttributes
	switch rel {
	case relOpposed:
		e.Why = append(e.Why, fmt.Sprintf("Its %s undertone works against your %s undertone.", g.Undertone, person.Undertone))
	case relPartial:
		e.Why = append(e.Why, "Olive tones only partly suit cool coloring.")
	default:
		e.Why = append(e.Why, fmt.Sprintf("Its %s undertone sits comfortably with your %s undertone.", g.Undertone, person.Undertone))
	}
	if mismatch {
		e.Why = append(e.Why, fmt.Sprintf("It reads %s while your coloring is %s.", g.Clarity, person.Clarity))
	}

	switch sc.Rating {
	case model.RatingGreat, model.RatingGood:
		e.HowToWear = append(e.HowToWear, "Wear it close to the face to get the most from it.")
	case model.RatingOK:
		e.HowToWear = append(e.HowToWear, "Use it as a secondary color next to a palette neutral.")
	case model.RatingRisky:
		if nearFace {
			e.HowToWear = append(e.HowToWear, "Keep it away from the face; try it in trousers, shoes or bags.")
		} else {
			e.HowToWear = append(e.HowToWear, "Pair it with a palette color up top to bridge the gap.")
		}
	}
	switch {
	case slices.Contains(sc.Adjustments, AdjustNeonCap):
		e.HowToWear = append(e.HowToWear, "If you love it, limit it to a small accent such as a belt or bag.")
	case mismatch && person.Clarity == model.ClarityMuted:
		e.HowToWear = append(e.HowToWear, "Soften it with muted layers or textured fabrics.")
	case mismatch:
		e.HowToWear = append(e.HowToWear, "Lift it with one crisp, clear accent.")
	}
	return e
}
