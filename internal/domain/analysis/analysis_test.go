package analysis_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/region"
	"github.com/okian/swatch/internal/domain/sampler"
	. "github.com/smartystreets/goconvey/convey"
)

func encodeUniform(w, h int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func rgb(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 255} }

func newAnalyzer(opts ...analysis.Option) *analysis.Analyzer {
	a, err := analysis.New(calibration.Default(), opts...)
	if err != nil {
		panic(err)
	}
	return a
}

type stubFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

func TestScenarios(t *testing.T) {
	Convey("Given the default analyzer", t, func() {
		a := newAnalyzer()
		ctx := context.Background()

		Convey("When the skin reads Lab (62,14,18)", func() {
			res, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(185, 140, 119))})

			Convey("Then it should be a confident warm light spring", func() {
				So(err, ShouldBeNil)
				So(res.Attributes.Undertone, ShouldEqual, model.UndertoneWarm)
				So(res.Attributes.Depth, ShouldEqual, model.DepthLight)
				So(res.Attributes.Clarity, ShouldBeIn, []model.Clarity{model.ClarityMuted, model.ClarityClear})
				So(res.Season, ShouldEqual, model.Spring)
				So(res.Confidence, ShouldBeGreaterThan, 0.7)
				So(res.Branch, ShouldEqual, "formula")
				So(res.Diagnostics.RegionMethod, ShouldEqual, string(region.MethodScan))
				So(res.Diagnostics.SampleCount, ShouldBeGreaterThanOrEqualTo, 140)
				So(res.Diagnostics.Noisy, ShouldBeFalse)
				So(res.Diagnostics.CalibrationVersion, ShouldEqual, calibration.Version)
				So(res.Candidates[0].Score, ShouldEqual, 1)
			})
		})

		Convey("When the skin reads Lab (38,6,4)", func() {
			res, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(102, 86, 83))})

			Convey("Then it should be winter without confirmation", func() {
				So(err, ShouldBeNil)
				So(res.Attributes.Undertone, ShouldEqual, model.UndertoneCool)
				So(res.Attributes.Depth, ShouldEqual, model.DepthDeep)
				So(res.Season, ShouldEqual, model.Winter)
				So(res.Alternate.Season, ShouldEqual, model.Summer)
				So(res.NeedsConfirmation, ShouldBeFalse)
			})
		})

		Convey("When the skin is near-achromatic at medium lightness", func() {
			res, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(126, 118, 106))})

			Convey("Then it should be summer or autumn and ask for confirmation", func() {
				So(err, ShouldBeNil)
				So(res.Attributes.Undertone, ShouldEqual, model.UndertoneNeutral)
				So(res.Attributes.UndertoneLean, ShouldEqual, model.LeanNone)
				So(res.Season, ShouldBeIn, []model.Season{model.Summer, model.Autumn})
				So(res.Branch, ShouldEqual, "degenerate")
				So(res.NeedsConfirmation, ShouldBeTrue)
			})
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given the same bytes classified twice", t, func() {
		a := newAnalyzer()
		data := encodeUniform(500, 420, rgb(185, 140, 119))
		crop := model.Region{X: 40, Y: 30, Width: 300, Height: 300}

		first, err1 := a.Analyze(context.Background(), analysis.Request{Image: data, Crop: &crop})
		second, err2 := a.Analyze(context.Background(), analysis.Request{Image: data, Crop: &crop})

		Convey("Then the outputs should be identical", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(second, ShouldResemble, first)
			want, errA := json.Marshal(first)
			got, errB := json.Marshal(second)
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(string(got), ShouldEqual, string(want))
		})
	})
}

func TestFailures(t *testing.T) {
	Convey("Given the default analyzer", t, func() {
		a := newAnalyzer()
		ctx := context.Background()

		Convey("When the crop is below the minimum size", func() {
			crop := model.Region{X: 0, Y: 0, Width: 200, Height: 400}
			_, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(185, 140, 119)), Crop: &crop})

			Convey("Then it should be INVALID_CROP_BOX", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeInvalidCropBox)
				So(analysis.Retryable(err), ShouldBeFalse)
			})
		})

		Convey("When nothing in the photo is skin", func() {
			_, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(40, 60, 200))})

			Convey("Then it should be FACE_NOT_DETECTED", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeFaceNotDetected)
			})
		})

		Convey("When the crop holds no skin", func() {
			crop := model.Region{X: 0, Y: 0, Width: 300, Height: 300}
			_, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(300, 300, rgb(128, 128, 128)), Crop: &crop})

			Convey("Then it should be LOW_QUALITY_SAMPLES", func() {
				So(errors.Is(err, sampler.ErrLowQualitySamples), ShouldBeTrue)
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeLowQualitySamples)
			})
		})

		Convey("When the crop has negative dimensions", func() {
			crop := model.Region{X: 500, Y: 500, Width: -300, Height: -300}
			_, err := a.Analyze(ctx, analysis.Request{Image: encodeUniform(600, 600, rgb(185, 140, 119)), Crop: &crop})

			Convey("Then it should be INVALID_CROP_BOX", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeInvalidCropBox)
			})
		})

		Convey("When the photo exceeds the pixel limit", func() {
			set := calibration.Default()
			set.Region.MaxPixels = 300 * 300
			small, err := analysis.New(set)
			So(err, ShouldBeNil)

			_, err = small.Analyze(ctx, analysis.Request{Image: encodeUniform(400, 400, rgb(185, 140, 119))})

			Convey("Then it should be IMAGE_TOO_LARGE", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeImageTooLarge)
			})
		})

		Convey("When the bytes are not an image", func() {
			_, err := a.Analyze(ctx, analysis.Request{Image: []byte("GIF89a?")})

			Convey("Then it should be MALFORMED_IMAGE", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeMalformedImage)
			})
		})

		Convey("When no image is supplied", func() {
			_, err := a.Analyze(ctx, analysis.Request{})

			Convey("Then it should be BAD_REQUEST", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeBadRequest)
			})
		})

		Convey("When a url is given without a fetcher", func() {
			_, err := a.Analyze(ctx, analysis.Request{ImageURL: "https://example.com/face.jpg"})

			Convey("Then it should be BAD_REQUEST", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeBadRequest)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := a.Analyze(cctx, analysis.Request{Image: encodeUniform(400, 400, rgb(185, 140, 119))})

			Convey("Then it should stop with CANCELED", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeCanceled)
			})
		})

		Convey("When an unknown error is mapped", func() {
			So(analysis.CodeOf(errors.New("boom")), ShouldEqual, analysis.CodeInternal)
		})
	})
}

func TestFetch(t *testing.T) {
	Convey("Given an analyzer with a fetcher", t, func() {
		Convey("When the fetch succeeds", func() {
			f := &stubFetcher{data: encodeUniform(400, 400, rgb(102, 86, 83))}
			a := newAnalyzer(analysis.WithFetcher(f))
			res, err := a.Analyze(context.Background(), analysis.Request{ImageURL: "https://example.com/a.png"})

			Convey("Then the fetched bytes should be classified", func() {
				So(err, ShouldBeNil)
				So(f.urls, ShouldResemble, []string{"https://example.com/a.png"})
				So(res.Season, ShouldEqual, model.Winter)
			})
		})

		Convey("When the fetch fails transiently", func() {
			f := &stubFetcher{err: fmt.Errorf("%w: timeout", analysis.ErrFetchFailed)}
			a := newAnalyzer(analysis.WithFetcher(f))
			_, err := a.Analyze(context.Background(), analysis.Request{ImageURL: "https://example.com/a.png"})

			Convey("Then it should surface FETCH_FAILED as retryable", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeFetchFailed)
				So(analysis.Retryable(err), ShouldBeTrue)
			})
		})

		Convey("When both bytes and a url are given", func() {
			a := newAnalyzer(analysis.WithFetcher(&stubFetcher{}))
			_, err := a.Analyze(context.Background(), analysis.Request{Image: []byte{1}, ImageURL: "https://example.com/a.png"})

			Convey("Then it should be rejected", func() {
				So(analysis.CodeOf(err), ShouldEqual, analysis.CodeBadRequest)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given an invalid calibration", t, func() {
		cal := calibration.Default()
		cal.Attributes.CoolMax = 20

		Convey("Then New should refuse it", func() {
			_, err := analysis.New(cal)
			So(errors.Is(err, calibration.ErrInvalidCalibration), ShouldBeTrue)
		})
	})
}
