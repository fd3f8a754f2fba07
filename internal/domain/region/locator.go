// Package region decides which pixel rectangle of a photo is sampled for skin.
//
// Priority: an explicit crop, then a normalized face box, then a heuristic
// skin-density scan over a downsampled copy of the image.
package region

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/skin"
)

// Method records how the region was chosen.
type Method string

// Region selection methods.
const (
	MethodCrop    Method = "crop"
	MethodFaceBox Method = "face_box"
	MethodScan    Method = "scan"
)

// Request carries the optional caller hints.
type Request struct {
	Crop    *model.Region
	FaceBox *model.NormalizedBox
}

// Result is the located region plus the whole-image lighting signal.
type Result struct {
	Region    model.Region `json:"region"`
	Method    Method       `json:"method"`
	Candidate string       `json:"candidate,omitempty"`
	SkinRatio float64      `json:"skin_ratio,omitempty"`

	// LightingBias is the warm-cast severity in [0,1] measured on non-skin pixels.
	LightingBias float64 `json:"lighting_bias"`
}

// candidate is a scan window in fractions of the downsampled image.
type candidate struct {
	name           string
	x0, y0, x1, y1 float64
}

var scanCandidates = []candidate{
	{name: "center", x0: 0.20, y0: 0.15, x1: 0.80, y1: 0.85},
	{name: "upper", x0: 0.20, y0: 0.05, x1: 0.80, y1: 0.60},
	{name: "middle", x0: 0.25, y0: 0.25, x1: 0.75, y1: 0.75},
	{name: "wide", x0: 0.10, y0: 0.10, x1: 0.90, y1: 0.90},
}

// Locator finds the sampling region.
type Locator struct {
	cfg    calibration.Region
	filter *skin.Filter
}

// NewLocator creates a Locator.
func NewLocator(cfg calibration.Region, filter *skin.Filter) *Locator {
	return &Locator{cfg: cfg, filter: filter}
}

// Locate picks the region for img. img must start at (0,0), as returned by Decode.
func (l *Locator) Locate(img *image.NRGBA, req Request) (Result, error) {
	bounds := img.Bounds()
	thumb := imaging.Fit(img, l.cfg.ScanMaxSide, l.cfg.ScanMaxSide, imaging.Box)
	mask := l.skinMask(thumb)
	bias := l.lightingBias(thumb, mask)

	switch {
	case req.Crop != nil:
		if req.Crop.Width <= 0 || req.Crop.Height <= 0 {
			return Result{}, fmt.Errorf("%w: crop %dx%d has non-positive size", ErrInvalidCropBox, req.Crop.Width, req.Crop.Height)
		}
		r, err := l.accept(req.Crop.Clamp(bounds), "crop")
		if err != nil {
			return Result{}, err
		}
		return Result{Region: r, Method: MethodCrop, LightingBias: bias}, nil

	case req.FaceBox != nil:
		if !req.FaceBox.Valid() {
			return Result{}, fmt.Errorf("%w: face box %+v is not a normalized rectangle", ErrInvalidCropBox, *req.FaceBox)
		}
		box := req.FaceBox.ToRegion(bounds.Dx(), bounds.Dy())
		r, err := l.accept(box.Clamp(bounds), "face box")
		if err != nil {
			return Result{}, err
		}
		return Result{Region: r, Method: MethodFaceBox, LightingBias: bias}, nil
	}

	res, err := l.scan(thumb, mask, bounds)
	if err != nil {
		return Result{}, err
	}
	res.LightingBias = bias
	return res, nil
}

func (l *Locator) accept(r model.Region, what string) (model.Region, error) {
	if !r.AtLeast(l.cfg.MinSize) {
		return model.Region{}, fmt.Errorf("%w: %s is %dx%d after clamping, need at least %dx%d",
			ErrInvalidCropBox, what, r.Width, r.Height, l.cfg.MinSize, l.cfg.MinSize)
	}
	return r, nil
}

// skinMask marks skin-candidate pixels of the thumbnail.
func (l *Locator) skinMask(thumb *image.NRGBA) [][]bool {
	b := thumb.Bounds()
	mask := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		mask[y] = make([]bool, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			mask[y][x] = l.filter.IsSkin(skin.PixelAt(thumb, b.Min.X+x, b.Min.Y+y))
		}
	}
	return mask
}

func (l *Locator) scan(thumb *image.NRGBA, mask [][]bool, bounds image.Rectangle) (Result, error) {
	tw, th := thumb.Bounds().Dx(), thumb.Bounds().Dy()

	var (
		best      image.Rectangle
		bestName  string
		bestScore = -1.0
		bestRatio float64
	)
	for _, c := range scanCandidates {
		r := image.Rect(
			int(math.Round(c.x0*float64(tw))), int(math.Round(c.y0*float64(th))),
			int(math.Round(c.x1*float64(tw))), int(math.Round(c.y1*float64(th))),
		)
		if r.Empty() {
			continue
		}
		aspect := float64(r.Dx()) / float64(r.Dy())
		if aspect < l.cfg.MinAspect || aspect > l.cfg.MaxAspect {
			continue
		}
		count := 0
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if mask[y][x] {
					count++
				}
			}
		}
		ratio := float64(count) / float64(r.Dx()*r.Dy())
		if ratio < l.cfg.MinSkinRatio || count < l.cfg.MinSkinCount {
			continue
		}
		if score := ratio * float64(count); score > bestScore {
			best, bestName, bestScore, bestRatio = r, c.name, score, ratio
		}
	}
	if bestScore < 0 {
		return Result{}, fmt.Errorf("%w: no scan window reached %.2f skin ratio", ErrFaceNotDetected, l.cfg.MinSkinRatio)
	}

	box := skinBounds(mask, best)
	padded := model.RegionFromRect(box).Pad(l.cfg.Padding).Clamp(thumb.Bounds())

	sx := float64(bounds.Dx()) / float64(tw)
	sy := float64(bounds.Dy()) / float64(th)
	full := padded.Scale(sx, sy).Clamp(bounds)

	full, ok := grow(full, bounds, l.cfg.MinSize)
	if !ok {
		return Result{}, fmt.Errorf("%w: image %dx%d is smaller than %dpx", ErrFaceNotDetected, bounds.Dx(), bounds.Dy(), l.cfg.MinSize)
	}
	return Result{Region: full, Method: MethodScan, Candidate: bestName, SkinRatio: bestRatio}, nil
}

// skinBounds returns the bounding box of skin pixels inside r.
func skinBounds(mask [][]bool, r image.Rectangle) image.Rectangle {
	out := image.Rectangle{}
	found := false
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !mask[y][x] {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if !found {
				out, found = px, true
				continue
			}
			out = out.Union(px)
		}
	}
	if !found {
		return r
	}
	return out
}

// grow expands r around its center until both sides reach minSide, staying in bounds.
func grow(r model.Region, bounds image.Rectangle, minSide int) (model.Region, bool) {
	if bounds.Dx() < minSide || bounds.Dy() < minSide {
		return r, false
	}
	if r.AtLeast(minSide) {
		return r, true
	}
	cx, cy := r.Center()
	w, h := max(r.Width, minSide), max(r.Height, minSide)
	x := int(math.Round(cx - float64(w)/2))
	y := int(math.Round(cy - float64(h)/2))
	x = min(max(x, bounds.Min.X), bounds.Max.X-w)
	y = min(max(y, bounds.Min.Y), bounds.Max.Y-h)
	return model.Region{X: x, Y: y, Width: w, Height: h}, true
}

// lightingBias measures the warm cast of the non-skin part of the image.
func (l *Locator) lightingBias(thumb *image.NRGBA, mask [][]bool) float64 {
	b := thumb.Bounds()
	var sr, sg, sb float64
	n := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask[y][x] {
				continue
			}
			p := skin.PixelAt(thumb, b.Min.X+x, b.Min.Y+y).Float()
			sr += p.R
			sg += p.G
			sb += p.B
			n++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 || float64(n)/float64(total) < l.cfg.BiasMinNonSkin {
		return 0
	}
	mr, mg, mb := sr/float64(n), sg/float64(n), sb/float64(n)
	mean := (mr + mg + mb) / 3
	if mean < 1 {
		return 0
	}
	cast := (mr - mb) / mean
	return math.Max(0, math.Min(1, (cast-l.cfg.BiasCastFloor)/l.cfg.BiasCastSpan))
}
