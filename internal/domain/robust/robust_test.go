package robust_test

import (
	"testing"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/robust"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOrderStatistics(t *testing.T) {
	Convey("Given a small unsorted slice", t, func() {
		xs := []float64{5, 1, 4, 2, 3}

		Convey("Then median, MAD and percentiles should match hand values", func() {
			So(robust.Median(xs), ShouldEqual, 3)
			So(robust.Median([]float64{1, 2, 3, 4}), ShouldEqual, 2.5)
			So(robust.MAD(xs, 3), ShouldEqual, 1)
			So(robust.Percentile(xs, 0), ShouldEqual, 1)
			So(robust.Percentile(xs, 1), ShouldEqual, 5)
			So(robust.Percentile(xs, 0.7), ShouldAlmostEqual, 3.8, 1e-9)
			So(xs, ShouldResemble, []float64{5, 1, 4, 2, 3})
		})

		Convey("Then empty input should yield zero", func() {
			So(robust.Median(nil), ShouldEqual, 0)
			So(robust.Percentile(nil, 0.5), ShouldEqual, 0)
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given the default estimator", t, func() {
		e := robust.New(calibration.Default().Stats)

		Convey("When every sample is identical", func() {
			p := model.PixelSample{R: 185, G: 140, B: 119}
			raw := []model.PixelSample{p, p, p, p}
			corrected := []model.CorrectedSample{p.Float(), p.Float(), p.Float(), p.Float()}
			st := e.Compute(raw, corrected)
			want := colorspace.RGBToLab(185, 140, 119)

			Convey("Then the medians should equal the sample and spread should be zero", func() {
				So(st.SampleCount, ShouldEqual, 4)
				So(st.MedianLab.L, ShouldAlmostEqual, want.L, 1e-9)
				So(st.RawMedianLab.B, ShouldAlmostEqual, want.B, 1e-9)
				So(st.MADLab, ShouldResemble, model.LabColor{})
				So(st.PercentileChroma, ShouldAlmostEqual, colorspace.Chroma(want), 1e-9)
				So(st.Noisy, ShouldBeFalse)
			})
		})

		Convey("When half the samples are much darker", func() {
			light := model.PixelSample{R: 224, G: 172, B: 150}
			dark := model.PixelSample{R: 90, G: 60, B: 50}
			var raw []model.PixelSample
			var corrected []model.CorrectedSample
			for i := 0; i < 10; i++ {
				p := light
				if i%2 == 0 {
					p = dark
				}
				raw = append(raw, p)
				corrected = append(corrected, p.Float())
			}
			st := e.Compute(raw, corrected)

			Convey("Then the set should be flagged noisy", func() {
				So(st.MADLab.L, ShouldBeGreaterThan, 10)
				So(st.Noisy, ShouldBeTrue)
			})
		})
	})
}
