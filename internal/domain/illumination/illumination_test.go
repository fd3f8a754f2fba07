package illumination_test

import (
	"math"
	"testing"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/illumination"
	"github.com/okian/swatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func repeat(p model.PixelSample, n int) []model.PixelSample {
	out := make([]model.PixelSample, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestNormalize(t *testing.T) {
	Convey("Given the default normalizer", t, func() {
		cfg := calibration.Default().Illumination
		n := illumination.New(cfg)

		Convey("When the samples are achromatic", func() {
			out, g := n.Normalize(repeat(model.PixelSample{R: 120, G: 120, B: 120}, 10))

			Convey("Then the gains should be unity", func() {
				So(g.R, ShouldAlmostEqual, 1, 1e-9)
				So(g.G, ShouldAlmostEqual, 1, 1e-9)
				So(g.B, ShouldAlmostEqual, 1, 1e-9)
				So(g.Clamped, ShouldBeFalse)
				So(out[0].R, ShouldAlmostEqual, 120, 1e-9)
			})
		})

		Convey("When the samples are warm skin", func() {
			out, g := n.Normalize(repeat(model.PixelSample{R: 185, G: 140, B: 119}, 10))

			Convey("Then red should be damped and blue boosted at partial strength", func() {
				mean := (185.0 + 140 + 119) / 3
				So(g.R, ShouldAlmostEqual, math.Pow(mean/185, cfg.Strength), 1e-9)
				So(g.B, ShouldAlmostEqual, math.Pow(mean/119, cfg.Strength), 1e-9)
				So(g.R, ShouldBeLessThan, 1)
				So(g.B, ShouldBeGreaterThan, 1)
				So(g.Clamped, ShouldBeFalse)
				So(out[0].R, ShouldBeLessThan, 185)
				So(out[0].B, ShouldBeGreaterThan, 119)
			})
		})

		Convey("When a channel is extremely weak", func() {
			out, g := n.Normalize(repeat(model.PixelSample{R: 250, G: 200, B: 2}, 5))

			Convey("Then the gain should be clamped and the output bounded", func() {
				So(g.Clamped, ShouldBeTrue)
				So(g.B, ShouldEqual, cfg.MaxGain)
				for _, s := range out {
					So(s.R, ShouldBeBetweenOrEqual, 0, 255)
					So(s.G, ShouldBeBetweenOrEqual, 0, 255)
					So(s.B, ShouldBeBetweenOrEqual, 0, 255)
				}
			})
		})

		Convey("When there are no samples", func() {
			out, g := n.Normalize(nil)

			Convey("Then nothing should change", func() {
				So(out, ShouldBeEmpty)
				So(g, ShouldResemble, model.Gains{R: 1, G: 1, B: 1})
			})
		})
	})
}
