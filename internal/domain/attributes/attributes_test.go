package attributes_test

import (
	"testing"

	"github.com/okian/swatch/internal/domain/attributes"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func stats(raw, corrected model.LabColor, chroma float64) model.RobustStats {
	return model.RobustStats{
		MedianLab:        corrected,
		RawMedianLab:     raw,
		PercentileChroma: chroma,
		MedianChroma:     chroma,
		SampleCount:      500,
	}
}

func TestClassify(t *testing.T) {
	Convey("Given the default classifier", t, func() {
		c := attributes.New(calibration.Default().Attributes)

		Convey("When the skin is warm, light and clear", func() {
			p := c.Classify(stats(
				model.LabColor{L: 62, A: 14, B: 18},
				model.LabColor{L: 61.55, A: 9.1, B: 12.5},
				15.5,
			), 0)

			Convey("Then categories and confidences should follow the boundaries", func() {
				So(p.Undertone, ShouldEqual, model.UndertoneWarm)
				So(p.Depth, ShouldEqual, model.DepthLight)
				So(p.Clarity, ShouldEqual, model.ClarityClear)
				So(p.WarmthAxis, ShouldAlmostEqual, 11, 1e-9)
				So(p.Confidence.Undertone, ShouldAlmostEqual, 0.75, 1e-9)
				So(p.Confidence.Depth, ShouldAlmostEqual, 0.55+0.40*3.55/6, 1e-9)
				So(p.Confidence.Clarity, ShouldAlmostEqual, 0.80, 1e-9)
			})
		})

		Convey("When the skin is cool, deep and muted", func() {
			p := c.Classify(stats(
				model.LabColor{L: 38, A: 6, B: 4},
				model.LabColor{L: 38.1, A: 4.1, B: 2.9},
				5.0,
			), 0)

			Convey("Then every attribute should be far from its boundary", func() {
				So(p.Undertone, ShouldEqual, model.UndertoneCool)
				So(p.Depth, ShouldEqual, model.DepthDeep)
				So(p.Clarity, ShouldEqual, model.ClarityMuted)
				So(p.Confidence.Undertone, ShouldAlmostEqual, 0.95, 1e-9)
				So(p.Confidence.Depth, ShouldAlmostEqual, 0.95, 1e-9)
				So(p.Confidence.Clarity, ShouldAlmostEqual, 0.95, 1e-9)
			})
		})

		Convey("When the warmth axis sits between cool and warm", func() {
			lean := func(b float64) model.AttributeProfile {
				return c.Classify(stats(model.LabColor{L: 50, A: 0, B: b}, model.LabColor{L: 50, A: 0, B: b}, 6), 0)
			}

			Convey("Then it should be neutral with a lean only away from the middle", func() {
				So(lean(7).Undertone, ShouldEqual, model.UndertoneNeutral)
				So(lean(7).UndertoneLean, ShouldEqual, model.LeanNone)
				So(lean(8.5).UndertoneLean, ShouldEqual, model.LeanWarm)
				So(lean(5.5).UndertoneLean, ShouldEqual, model.LeanCool)
				So(lean(7).Depth, ShouldEqual, model.DepthMedium)
			})
		})

		Convey("When the raw and corrected medians disagree on undertone", func() {
			st := stats(model.LabColor{L: 60, A: 2, B: 14}, model.LabColor{L: 60, A: 2, B: 2}, 12)

			Convey("Then the configured source should decide", func() {
				So(c.Classify(st, 0).Undertone, ShouldEqual, model.UndertoneWarm)

				cfg := calibration.Default().Attributes
				cfg.UndertoneSource = calibration.SourceCorrected
				So(attributes.New(cfg).Classify(st, 0).Undertone, ShouldEqual, model.UndertoneCool)
			})
		})

		Convey("When the lighting is biased and the samples are noisy", func() {
			st := stats(model.LabColor{L: 62, A: 14, B: 18}, model.LabColor{L: 61.55, A: 9.1, B: 12.5}, 15.5)
			clean := c.Classify(st, 0)
			st.Noisy = true
			st.MADLab = model.LabColor{L: 12, A: 3, B: 6}
			dirty := c.Classify(st, 1)

			Convey("Then every confidence should drop but stay in range", func() {
				So(dirty.Confidence.Undertone, ShouldAlmostEqual, clean.Confidence.Undertone-0.25-0.08, 1e-9)
				So(dirty.Confidence.Depth, ShouldAlmostEqual, clean.Confidence.Depth-0.08-0.15, 1e-9)
				So(dirty.Confidence.Clarity, ShouldAlmostEqual, clean.Confidence.Clarity-0.08-0.15, 1e-9)
				So(dirty.Undertone, ShouldEqual, clean.Undertone)
			})
		})
	})
}
