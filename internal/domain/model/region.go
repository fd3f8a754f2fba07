package model

import (
	"image"
	"math"
)

// Region is a rectangle in source-image pixel coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts an image.Rectangle to a Region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns width times height, or 0 for degenerate regions.
func (r Region) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the region center.
func (r Region) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

// Clamp intersects the region with bounds.
func (r Region) Clamp(bounds image.Rectangle) Region {
	return RegionFromRect(r.Rect().Intersect(bounds))
}

// Within reports whether the region lies fully inside bounds.
func (r Region) Within(bounds image.Rectangle) bool {
	return r.Area() > 0 && r.Rect().In(bounds)
}

// AtLeast reports whether both sides are at least minSide pixels.
func (r Region) AtLeast(minSide int) bool {
	return r.Width >= minSide && r.Height >= minSide
}

// Pad grows the region by frac of its size on every side.
func (r Region) Pad(frac float64) Region {
	dx := int(math.Round(float64(r.Width) * frac))
	dy := int(math.Round(float64(r.Height) * frac))
	return Region{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Scale multiplies x coordinates by fx and y coordinates by fy, rounding outward.
func (r Region) Scale(fx, fy float64) Region {
	x0 := int(math.Floor(float64(r.X) * fx))
	y0 := int(math.Floor(float64(r.Y) * fy))
	x1 := int(math.Ceil(float64(r.X+r.Width) * fx))
	y1 := int(math.Ceil(float64(r.Y+r.Height) * fy))
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// NormalizedBox is a face box in relative [0,1] image coordinates.
type NormalizedBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the box has positive size and starts inside [0,1].
func (b NormalizedBox) Valid() bool {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Width > 0 && b.Height > 0 &&
		b.X >= 0 && b.Y >= 0 && b.X < 1 && b.Y < 1 &&
		b.Width <= 1 && b.Height <= 1
}

// ToRegion converts the box to pixel coordinates for an image of w×h.
func (b NormalizedBox) ToRegion(w, h int) Region {
	x0 := int(math.Round(b.X * float64(w)))
	y0 := int(math.Round(b.Y * float64(h)))
	x1 := int(math.Round((b.X + b.Width) * float64(w)))
	y1 := int(math.Round((b.Y + b.Height) * float64(h)))
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
