package season_test

import (
	"testing"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/season"
	. "github.com/smartystreets/goconvey/convey"
)

func newDecider() *season.Decider {
	cal := calibration.Default()
	return season.New(cal.Season, cal.Attributes)
}

func profile(tone model.Undertone, lean model.Lean, axis, l, c float64, conf model.Confidence) model.AttributeProfile {
	return model.AttributeProfile{
		Undertone:     tone,
		UndertoneLean: lean,
		WarmthAxis:    axis,
		Lightness:     l,
		Chroma:        c,
		Confidence:    conf,
	}
}

func TestDecide(t *testing.T) {
	Convey("Given the default decider", t, func() {
		d := newDecider()

		Convey("When the profile is warm, light and clear", func() {
			p := profile(model.UndertoneWarm, model.LeanNone, 11, 61.55, 15.5,
				model.Confidence{Undertone: 0.75, Depth: 0.55 + 0.40*3.55/6, Clarity: 0.80})
			dec := d.Decide(p, season.Quality{})

			Convey("Then spring should win outright", func() {
				So(dec.Season, ShouldEqual, model.Spring)
				So(dec.Branch, ShouldEqual, season.BranchFormula)
				So(dec.Candidates[0].Score, ShouldEqual, 1)
				So(dec.Alternate, ShouldNotBeNil)
				So(dec.Alternate.Season, ShouldEqual, model.Autumn)
				So(dec.Alternate.Score, ShouldBeLessThan, 0.7)
				So(dec.Confidence, ShouldBeGreaterThan, 0.72)
				So(dec.Penalties, ShouldBeEmpty)
				So(dec.NeedsConfirmation, ShouldBeFalse)
			})

			Convey("Then the cool seasons should be gated out", func() {
				for _, c := range dec.Candidates {
					if c.Season == model.Summer || c.Season == model.Winter {
						So(c.Score, ShouldEqual, 0)
					}
				}
			})
		})

		Convey("When the profile is cool, deep and muted", func() {
			p := profile(model.UndertoneCool, model.LeanNone, 1, 38.1, 5.0,
				model.Confidence{Undertone: 0.95, Depth: 0.95, Clarity: 0.95})
			dec := d.Decide(p, season.Quality{})

			Convey("Then winter should win with summer as the alternate", func() {
				So(dec.Season, ShouldEqual, model.Winter)
				So(dec.Alternate.Season, ShouldEqual, model.Summer)
				So(dec.Alternate.Score, ShouldAlmostEqual, 0.875, 1e-9)
				So(dec.Confidence, ShouldAlmostEqual, 0.95, 1e-9)
				So(dec.NeedsConfirmation, ShouldBeFalse)
			})
		})

		Convey("When the reading is near-achromatic and neutral", func() {
			conf := model.Confidence{Undertone: 0.95, Depth: 0.78, Clarity: 0.95}

			Convey("Then a medium-dark reading should go to autumn via the degenerate branch", func() {
				dec := d.Decide(profile(model.UndertoneNeutral, model.LeanNone, 7, 49.7, 5.45, conf), season.Quality{})
				So(dec.Branch, ShouldEqual, season.BranchDegenerate)
				So(dec.Season, ShouldEqual, model.Autumn)
				So(dec.Alternate.Season, ShouldEqual, model.Summer)
				So(dec.Penalties, ShouldContain, season.PenaltyDegenerate)
				So(dec.NeedsConfirmation, ShouldBeTrue)
			})

			Convey("Then a lighter reading should go to summer", func() {
				dec := d.Decide(profile(model.UndertoneNeutral, model.LeanNone, 7, 56, 5, conf), season.Quality{})
				So(dec.Season, ShouldEqual, model.Summer)
				So(dec.NeedsConfirmation, ShouldBeTrue)
			})

			Convey("Then the lean should break an exact tie", func() {
				mid := 51.5
				cool := d.Decide(profile(model.UndertoneNeutral, model.LeanCool, 6, mid, 4, conf), season.Quality{})
				warm := d.Decide(profile(model.UndertoneNeutral, model.LeanWarm, 8, mid, 4, conf), season.Quality{})
				So(cool.Season, ShouldEqual, model.Summer)
				So(warm.Season, ShouldEqual, model.Autumn)
			})

			Convey("Then spring and winter should never win", func() {
				for _, l := range []float64{30, 45, 51.5, 58, 80} {
					dec := d.Decide(profile(model.UndertoneNeutral, model.LeanNone, 7, l, 3, conf), season.Quality{})
					So(dec.Season, ShouldBeIn, []model.Season{model.Summer, model.Autumn})
				}
			})
		})

		Convey("When the undertone confidence is low", func() {
			p := profile(model.UndertoneWarm, model.LeanNone, 9.5, 62, 15,
				model.Confidence{Undertone: 0.5, Depth: 0.8, Clarity: 0.8})
			dec := d.Decide(p, season.Quality{})

			Convey("Then all four seasons should be scored and the answer flagged", func() {
				nonZero := 0
				for _, c := range dec.Candidates {
					if c.Score > 0 {
						nonZero++
					}
				}
				So(nonZero, ShouldBeGreaterThan, 2)
				So(dec.Penalties, ShouldContain, season.PenaltyLowUndertone)
				So(dec.NeedsConfirmation, ShouldBeTrue)
			})
		})

		Convey("When the samples were noisy and gains clamped", func() {
			p := profile(model.UndertoneCool, model.LeanNone, 1, 38.1, 5.0,
				model.Confidence{Undertone: 0.95, Depth: 0.95, Clarity: 0.95})
			dec := d.Decide(p, season.Quality{Noisy: true, Clamped: true})

			Convey("Then both penalties should apply", func() {
				So(dec.Season, ShouldEqual, model.Winter)
				So(dec.Confidence, ShouldAlmostEqual, 0.95-0.05-0.08, 1e-9)
				So(dec.Penalties, ShouldContain, season.PenaltyNoisy)
				So(dec.Penalties, ShouldContain, season.PenaltyClamped)
				So(dec.NeedsConfirmation, ShouldBeTrue)
			})
		})

		Convey("When deciding over any profile", func() {
			for _, l := range []float64{20, 40, 55, 70, 90} {
				for _, axis := range []float64{-5, 3, 7, 11, 20} {
					for _, c := range []float64{2, 10, 16, 30} {
						tone := model.UndertoneNeutral
						if axis <= 5 {
							tone = model.UndertoneCool
						} else if axis >= 9 {
							tone = model.UndertoneWarm
						}
						dec := d.Decide(profile(tone, model.LeanNone, axis, l, c,
							model.Confidence{Undertone: 0.8, Depth: 0.8, Clarity: 0.8}), season.Quality{})

						So(dec.Season, ShouldNotBeEmpty)
						So(dec.Candidates, ShouldHaveLength, 4)
						So(dec.Candidates[0].Score, ShouldEqual, 1)
						for _, cand := range dec.Candidates {
							So(cand.Score, ShouldBeBetweenOrEqual, 0, 1)
						}
					}
				}
			}
		})
	})
}
