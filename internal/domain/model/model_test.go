package model_test

import (
	"errors"
	"image"
	"testing"

	"github.com/okian/swatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRegion(t *testing.T) {
	convey.Convey("Given a region", t, func() {
		r := model.Region{X: 10, Y: 20, Width: 100, Height: 50}

		convey.Convey("When converting to a rectangle and back", func() {
			back := model.RegionFromRect(r.Rect())

			convey.Convey("Then it should be unchanged", func() {
				convey.So(back, convey.ShouldResemble, r)
				convey.So(r.Area(), convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When clamping to smaller bounds", func() {
			c := r.Clamp(image.Rect(0, 0, 60, 40))

			convey.Convey("Then it should be the intersection", func() {
				convey.So(c, convey.ShouldResemble, model.Region{X: 10, Y: 20, Width: 50, Height: 20})
				convey.So(c.Within(image.Rect(0, 0, 60, 40)), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When padding by 20%", func() {
			p := r.Pad(0.2)

			convey.Convey("Then every side should grow", func() {
				convey.So(p, convey.ShouldResemble, model.Region{X: -10, Y: 10, Width: 140, Height: 70})
			})
		})

		convey.Convey("When clamping to disjoint bounds", func() {
			c := r.Clamp(image.Rect(500, 500, 600, 600))

			convey.Convey("Then it should be empty", func() {
				convey.So(c.Area(), convey.ShouldEqual, 0)
				convey.So(c.AtLeast(1), convey.ShouldBeFalse)
			})
		})
	})
}

func TestNormalizedBox(t *testing.T) {
	convey.Convey("Given normalized face boxes", t, func() {
		convey.Convey("When the box is inside the unit square", func() {
			b := model.NormalizedBox{X: 0.25, Y: 0.1, Width: 0.5, Height: 0.6}

			convey.Convey("Then it converts to pixels", func() {
				convey.So(b.Valid(), convey.ShouldBeTrue)
				convey.So(b.ToRegion(400, 500), convey.ShouldResemble, model.Region{X: 100, Y: 50, Width: 200, Height: 300})
			})
		})

		convey.Convey("When the box has no size", func() {
			convey.So(model.NormalizedBox{X: 0.1, Y: 0.1}.Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("When the box uses pixel units by mistake", func() {
			convey.So(model.NormalizedBox{X: 10, Y: 10, Width: 200, Height: 200}.Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestParsing(t *testing.T) {
	convey.Convey("Given enum parsers", t, func() {
		convey.Convey("When parsing known values", func() {
			s, err := model.ParseSeason(" Fall ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(s, convey.ShouldEqual, model.Autumn)

			c, err := model.ParseClarity("clear-ish")
			convey.So(err, convey.ShouldBeNil)
			convey.So(c, convey.ShouldEqual, model.ClarityClear)

			d, err := model.ParseDepth("DEEP")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, model.DepthDeep)
		})

		convey.Convey("When parsing unknown values", func() {
			_, err := model.ParseSeason("monsoon")
			convey.So(errors.Is(err, model.ErrUnknownValue), convey.ShouldBeTrue)

			_, err = model.ParseUndertone("olive")
			convey.So(errors.Is(err, model.ErrUnknownValue), convey.ShouldBeTrue)
		})
	})
}

func TestRatingOrder(t *testing.T) {
	convey.Convey("Given ratings", t, func() {
		convey.Convey("Then caps and floors follow rank order", func() {
			convey.So(model.RatingGreat.AtMost(model.RatingOK), convey.ShouldEqual, model.RatingOK)
			convey.So(model.RatingRisky.AtMost(model.RatingOK), convey.ShouldEqual, model.RatingRisky)
			convey.So(model.RatingRisky.AtLeast(model.RatingGood), convey.ShouldEqual, model.RatingGood)
			convey.So(model.RatingGreat.AtLeast(model.RatingGood), convey.ShouldEqual, model.RatingGreat)
			convey.So(model.RatingInsufficientData.Rank(), convey.ShouldBeLessThan, model.RatingRisky.Rank())
		})
	})
}

func TestSeasonProfile(t *testing.T) {
	convey.Convey("Given the four seasons", t, func() {
		convey.Convey("Then each maps to its undertone family", func() {
			convey.So(model.Spring.Profile().Undertone, convey.ShouldEqual, model.UndertoneWarm)
			convey.So(model.Autumn.Profile().Depth, convey.ShouldEqual, model.DepthDeep)
			convey.So(model.Summer.Profile().Clarity, convey.ShouldEqual, model.ClarityMuted)
			convey.So(model.Winter.Profile().Undertone, convey.ShouldEqual, model.UndertoneCool)
		})
	})
}

func TestRegionScale(t *testing.T) {
	convey.Convey("Given a region found on a thumbnail", t, func() {
		r := model.Region{X: 10, Y: 5, Width: 21, Height: 13}

		convey.Convey("When scaled back to full size with uneven factors", func() {
			out := r.Scale(2.5, 3)

			convey.Convey("Then the edges round outward per axis", func() {
				convey.So(out, convey.ShouldResemble, model.Region{X: 25, Y: 15, Width: 53, Height: 39})
			})
		})

		convey.Convey("When converted to float samples", func() {
			p := model.PixelSample{R: 1, G: 2, B: 255}
			convey.So(p.Float(), convey.ShouldResemble, model.CorrectedSample{R: 1, G: 2, B: 255})
		})
	})
}
