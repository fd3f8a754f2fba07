// Package cli implements swatch-classify, which classifies local photos
// without running the HTTP service.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// Config holds the options of one run.
type Config struct {
	Files    []string      // Image files to classify
	Crop     *model.Region // Optional pixel crop applied to every file
	FaceBox  *model.NormalizedBox
	Garments []model.PixelSample // Garment colors scored against each result
	NearFace bool                // Score garments as worn near the face
	Workers  int                 // Files classified concurrently
	Timeout  time.Duration       // Per-file deadline
	Pretty   bool                // Indent JSON output
}

// Result is one output line.
type Result struct {
	File           string                    `json:"file"`
	Classification *analysis.Classification  `json:"classification,omitempty"`
	Garments       []model.GarmentColorScore `json:"garments,omitempty"`
	Error          *ResultError              `json:"error,omitempty"`
}

// ResultError mirrors the HTTP error body.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseRegion parses "x,y,w,h" in pixels.
func ParseRegion(s string) (*model.Region, error) {
	v, err := splitN(s, 4)
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	ints := make([]int, 4)
	for i, f := range v {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("crop: %q is not an integer", f)
		}
		ints[i] = n
	}
	return &model.Region{X: ints[0], Y: ints[1], Width: ints[2], Height: ints[3]}, nil
}

// ParseBox parses "x,y,w,h" in relative [0,1] coordinates.
func ParseBox(s string) (*model.NormalizedBox, error) {
	v, err := splitN(s, 4)
	if err != nil {
		return nil, fmt.Errorf("face box: %w", err)
	}
	fs := make([]float64, 4)
	for i, f := range v {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("face box: %q is not a number", f)
		}
		fs[i] = n
	}
	return &model.NormalizedBox{X: fs[0], Y: fs[1], Width: fs[2], Height: fs[3]}, nil
}

// ParseGarments parses a comma separated list of hex colors.
func ParseGarments(s string) ([]model.PixelSample, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []model.PixelSample
	for _, h := range strings.Split(s, ",") {
		px, err := colorspace.ParseHex(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("garments: %w", err)
		}
		out = append(out, px)
	}
	return out, nil
}

func splitN(s string, n int) ([]string, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated values, got %d", n, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
