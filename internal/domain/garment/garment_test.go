package garment_test

import (
	"testing"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newScorer() *garment.Scorer {
	cal := calibration.Default()
	return garment.New(cal.Garment, cal.Attributes)
}

func hex(s string) *model.PixelSample {
	p, err := colorspace.ParseHex(s)
	if err != nil {
		panic(err)
	}
	return &p
}

func TestScoreNavy(t *testing.T) {
	Convey("Given a deep cool navy garment", t, func() {
		s := newScorer()
		navy := hex("#1F3A5F")

		Convey("When scored for a winter person", func() {
			sc := s.Score(garment.Request{Color: navy, Season: model.Winter, NearFace: true})

			Convey("Then it should rate great or good against the palette navy", func() {
				So(sc.Rating, ShouldBeIn, []model.Rating{model.RatingGreat, model.RatingGood})
				So(sc.MatchedColor, ShouldEqual, "navy")
				So(sc.MatchedSeason, ShouldEqual, model.Winter)
				So(sc.GarmentAttributes.Undertone, ShouldEqual, model.UndertoneCool)
				So(sc.Adjustments, ShouldBeEmpty)
				So(sc.Explanation.Summary, ShouldNotBeEmpty)
				So(len(sc.Explanation.Why), ShouldBeBetweenOrEqual, 2, 3)
			})
		})

		Convey("When scored for an autumn person", func() {
			sc := s.Score(garment.Request{Color: navy, Season: model.Autumn})

			Convey("Then the undertone conflict should force risky", func() {
				So(sc.Rating, ShouldEqual, model.RatingRisky)
				So(sc.Adjustments, ShouldContain, garment.AdjustOpposition)
				So(sc.Compatibility.Undertone, ShouldEqual, 0)
			})
		})
	})
}

func TestScoreAdjustments(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := newScorer()

		Convey("When a vivid palette color is worn near a muted face", func() {
			sc := s.Score(garment.Request{Color: hex("#DB7093"), Season: model.Summer, NearFace: true})

			Convey("Then the clarity cap should be lifted back to good by the small ΔE", func() {
				So(sc.DeltaE, ShouldEqual, 0)
				So(sc.Adjustments, ShouldResemble, []string{garment.AdjustClarityCap, garment.AdjustSmallDelta})
				So(sc.Rating, ShouldEqual, model.RatingGood)
				So(sc.Compatibility.Clarity, ShouldEqual, 0)
			})
		})

		Convey("When a neon color is worn near a muted face", func() {
			sc := s.Score(garment.Request{Color: hex("#0047AB"), Season: model.Summer, NearFace: true})

			Convey("Then it should be capped at risky", func() {
				So(sc.Rating, ShouldEqual, model.RatingRisky)
				So(sc.Adjustments, ShouldContain, garment.AdjustNeonCap)
			})
		})

		Convey("When the same neon color is worn away from the face", func() {
			sc := s.Score(garment.Request{Color: hex("#0047AB"), Season: model.Summer})

			Convey("Then it should stay wearable", func() {
				So(sc.Rating, ShouldEqual, model.RatingOK)
				So(sc.Adjustments, ShouldNotContain, garment.AdjustNeonCap)
			})
		})

		Convey("When an olive garment is scored", func() {
			khaki := hex("#BDB76B")
			warm := s.Score(garment.Request{Color: khaki, Season: model.Autumn})
			cool := s.Score(garment.Request{Color: khaki, Season: model.Summer})

			Convey("Then it should suit warm people and only partly suit cool ones", func() {
				So(warm.GarmentAttributes.Undertone, ShouldEqual, model.UndertoneOlive)
				So(warm.Adjustments, ShouldNotContain, garment.AdjustOpposition)
				So(warm.Rating.Rank(), ShouldBeGreaterThanOrEqualTo, model.RatingOK.Rank())
				So(cool.Adjustments, ShouldNotContain, garment.AdjustOpposition)
				So(cool.Compatibility.Undertone, ShouldEqual, 0.5)
			})
		})

		Convey("When a secondary season is given", func() {
			sc := s.Score(garment.Request{Color: hex("#B7410E"), Season: model.Spring, Secondary: model.Autumn})

			Convey("Then the closer palette should win", func() {
				So(sc.MatchedSeason, ShouldEqual, model.Autumn)
				So(sc.MatchedColor, ShouldEqual, "rust")
				So(sc.DeltaE, ShouldEqual, 0)
				So(sc.Season, ShouldEqual, model.Spring)
			})
		})

		Convey("When the profile overrides the season default", func() {
			base := s.Score(garment.Request{Color: hex("#DB7093"), Season: model.Summer, NearFace: true})
			over := s.Score(garment.Request{
				Color: hex("#DB7093"), Season: model.Summer, NearFace: true,
				Profile: garment.Profile{Clarity: model.ClarityVivid},
			})

			Convey("Then the override should remove the clarity cap", func() {
				So(base.Adjustments, ShouldContain, garment.AdjustClarityCap)
				So(over.Adjustments, ShouldBeEmpty)
				So(over.Rating, ShouldEqual, model.RatingGreat)
			})
		})
	})
}

func TestScoreInputs(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := newScorer()

		Convey("When the garment color is missing", func() {
			sc := s.Score(garment.Request{Season: model.Winter})

			Convey("Then it should report insufficient data", func() {
				So(sc.Rating, ShouldEqual, model.RatingInsufficientData)
			})
		})

		Convey("When neither a season nor a complete profile is given", func() {
			sc := s.Score(garment.Request{Color: hex("#1F3A5F"), Profile: garment.Profile{Undertone: model.UndertoneCool}})

			Convey("Then it should not guess a season", func() {
				So(sc.Rating, ShouldEqual, model.RatingInsufficientData)
				So(sc.Season, ShouldBeEmpty)
			})
		})

		Convey("When a complete profile is given without a season", func() {
			sc := s.Score(garment.Request{Color: hex("#1F3A5F"), Profile: garment.Profile{
				Undertone: model.UndertoneCool, Depth: model.DepthDeep, Clarity: model.ClarityVivid,
			}})

			Convey("Then the derived season should be reported", func() {
				So(sc.Season, ShouldEqual, model.Winter)
				So(sc.Rating, ShouldNotEqual, model.RatingInsufficientData)
			})
		})
	})
}

func TestScoreProperties(t *testing.T) {
	Convey("Given garments drawn from every palette plus off-palette colors", t, func() {
		s := newScorer()
		var colors []*model.PixelSample
		for _, season := range model.Seasons {
			p, ok := garment.PaletteFor(season)
			So(ok, ShouldBeTrue)
			for _, c := range p.Colors {
				colors = append(colors, hex(c.Hex))
			}
		}
		for _, h := range []string{"#FF00FF", "#39FF14", "#C3B091", "#8F9779", "#FF4500", "#2E8B57"} {
			colors = append(colors, hex(h))
		}

		Convey("Then opposition is always risky and near matches are at least good", func() {
			for _, season := range model.Seasons {
				for _, c := range colors {
					for _, nearFace := range []bool{false, true} {
						sc := s.Score(garment.Request{Color: c, Season: season, NearFace: nearFace})
						So(sc.DeltaE, ShouldBeGreaterThanOrEqualTo, 0)
						So(sc.Compatibility.Overall, ShouldBeBetweenOrEqual, 0, 1)

						g := sc.GarmentAttributes.Undertone
						opposed := (season.Undertone() == model.UndertoneWarm && g == model.UndertoneCool) ||
							(season.Undertone() == model.UndertoneCool && g == model.UndertoneWarm)
						if opposed {
							So(sc.Rating, ShouldEqual, model.RatingRisky)
							continue
						}
						compatible := !(season.Undertone() == model.UndertoneCool && g == model.UndertoneOlive)
						if compatible && sc.DeltaE <= 4.5 {
							So(sc.Rating.Rank(), ShouldBeGreaterThanOrEqualTo, model.RatingGood.Rank())
						}
					}
				}
			}
		})
	})
}

func TestSeasonFor(t *testing.T) {
	Convey("Given complete profiles", t, func() {
		cases := []struct {
			u    model.Undertone
			d    model.Depth
			c    model.Clarity
			want model.Season
		}{
			{model.UndertoneWarm, model.DepthLight, model.ClarityClear, model.Spring},
			{model.UndertoneWarm, model.DepthMedium, model.ClarityMuted, model.Autumn},
			{model.UndertoneWarm, model.DepthDeep, model.ClarityVivid, model.Autumn},
			{model.UndertoneCool, model.DepthLight, model.ClarityMuted, model.Summer},
			{model.UndertoneCool, model.DepthMedium, model.ClarityVivid, model.Winter},
			{model.UndertoneCool, model.DepthDeep, model.ClarityMuted, model.Winter},
			{model.UndertoneNeutral, model.DepthLight, model.ClarityMuted, model.Summer},
			{model.UndertoneNeutral, model.DepthDeep, model.ClarityClear, model.Autumn},
			{model.UndertoneNeutral, model.DepthMedium, model.ClarityVivid, model.Winter},
		}

		Convey("Then each should map to its table season", func() {
			for _, tc := range cases {
				So(garment.SeasonFor(tc.u, tc.d, tc.c), ShouldEqual, tc.want)
			}
		})

		Convey("Then each season's own profile should map back to it", func() {
			for _, s := range model.Seasons {
				p := s.Profile()
				So(garment.SeasonFor(p.Undertone, p.Depth, p.Clarity), ShouldEqual, s)
			}
		})
	})
}
