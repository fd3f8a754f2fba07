package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writePNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readResults(t *testing.T, out *bytes.Buffer) []Result {
	t.Helper()
	var res []Result
	sc := bufio.NewScanner(out)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var r Result
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatal(err)
		}
		res = append(res, r)
	}
	return res
}

func TestParsers(t *testing.T) {
	Convey("Given command line values", t, func() {
		Convey("When a crop is parsed", func() {
			r, err := ParseRegion("10, 20,300,310")
			So(err, ShouldBeNil)
			So(*r, ShouldResemble, model.Region{X: 10, Y: 20, Width: 300, Height: 310})

			_, err = ParseRegion("10,20,300")
			So(err, ShouldNotBeNil)
			_, err = ParseRegion("a,b,c,d")
			So(err, ShouldNotBeNil)
		})

		Convey("When a face box is parsed", func() {
			b, err := ParseBox("0.25,0.2,0.5,0.6")
			So(err, ShouldBeNil)
			So(*b, ShouldResemble, model.NormalizedBox{X: 0.25, Y: 0.2, Width: 0.5, Height: 0.6})

			_, err = ParseBox("x,0,1,1")
			So(err, ShouldNotBeNil)
		})

		Convey("When garments are parsed", func() {
			g, err := ParseGarments("#1F3A5F, #ff7f50")
			So(err, ShouldBeNil)
			So(g, ShouldResemble, []model.PixelSample{{R: 0x1F, G: 0x3A, B: 0x5F}, {R: 0xFF, G: 0x7F, B: 0x50}})

			g, err = ParseGarments("")
			So(err, ShouldBeNil)
			So(g, ShouldBeNil)

			_, err = ParseGarments("#nothex")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given photos on disk", t, func() {
		dir := t.TempDir()
		skin := writePNG(t, dir, "skin.png", color.NRGBA{R: 185, G: 140, B: 119, A: 255})
		blue := writePNG(t, dir, "blue.png", color.NRGBA{R: 20, G: 40, B: 200, A: 255})
		missing := filepath.Join(dir, "missing.png")

		Convey("When they are classified with garments", func() {
			var out bytes.Buffer
			failed, err := Run(context.Background(), Config{
				Files:    []string{skin, blue, missing},
				Garments: []model.PixelSample{{R: 0xFF, G: 0x7F, B: 0x50}},
				Workers:  2,
				Timeout:  time.Minute,
			}, &out)
			So(err, ShouldBeNil)
			res := readResults(t, &out)

			Convey("Then one line per file is written in input order", func() {
				So(failed, ShouldEqual, 2)
				So(res, ShouldHaveLength, 3)

				So(res[0].File, ShouldEqual, skin)
				So(res[0].Error, ShouldBeNil)
				So(res[0].Classification.Season, ShouldEqual, model.Spring)
				So(res[0].Garments, ShouldHaveLength, 1)
				So(res[0].Garments[0].Season, ShouldEqual, model.Spring)

				So(res[1].Error.Code, ShouldEqual, string(analysis.CodeFaceNotDetected))
				So(res[2].Error.Code, ShouldEqual, string(analysis.CodeBadRequest))
			})
		})

		Convey("When the context is already canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			var out bytes.Buffer
			failed, err := Run(ctx, Config{Files: []string{skin}, Workers: 1}, &out)
			So(err, ShouldBeNil)
			res := readResults(t, &out)

			Convey("Then the file is reported as canceled", func() {
				So(failed, ShouldEqual, 1)
				So(res, ShouldHaveLength, 1)
				So(res[0].Error.Code, ShouldEqual, string(analysis.CodeCanceled))
			})
		})
	})
}
