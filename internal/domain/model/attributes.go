package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when parsing an unrecognized enum value.
var ErrUnknownValue = errors.New("unknown value")

// Undertone is the warm/cool/neutral lean of a color.
type Undertone string

// Undertone values. Olive only ever describes garments.
const (
	UndertoneWarm    Undertone = "warm"
	UndertoneCool    Undertone = "cool"
	UndertoneNeutral Undertone = "neutral"
	UndertoneOlive   Undertone = "olive"
)

// Lean is the side a neutral undertone tilts toward.
type Lean string

// Lean values.
const (
	LeanWarm Lean = "warm"
	LeanCool Lean = "cool"
	LeanNone Lean = "none"
)

// Depth is the lightness category.
type Depth string

// Depth values.
const (
	DepthLight  Depth = "light"
	DepthMedium Depth = "medium"
	DepthDeep   Depth = "deep"
)

// Index orders depths from light (0) to deep (2).
func (d Depth) Index() int {
	switch d {
	case DepthLight:
		return 0
	case DepthDeep:
		return 2
	default:
		return 1
	}
}

// Clarity is how muted or vivid a color reads.
type Clarity string

// Clarity values.
const (
	ClarityMuted Clarity = "muted"
	ClarityClear Clarity = "clear"
	ClarityVivid Clarity = "vivid"
)

// Index orders clarities from muted (0) to vivid (2).
func (c Clarity) Index() int {
	switch c {
	case ClarityMuted:
		return 0
	case ClarityVivid:
		return 2
	default:
		return 1
	}
}

// ParseUndertone parses a person undertone. Olive is rejected.
func ParseUndertone(s string) (Undertone, error) {
	switch u := Undertone(strings.ToLower(strings.TrimSpace(s))); u {
	case UndertoneWarm, UndertoneCool, UndertoneNeutral:
		return u, nil
	}
	return "", fmt.Errorf("undertone %q: %w", s, ErrUnknownValue)
}

// ParseDepth parses a depth category.
func ParseDepth(s string) (Depth, error) {
	switch d := Depth(strings.ToLower(strings.TrimSpace(s))); d {
	case DepthLight, DepthMedium, DepthDeep:
		return d, nil
	}
	return "", fmt.Errorf("depth %q: %w", s, ErrUnknownValue)
}

// ParseClarity parses a clarity category. "clear-ish" is accepted as clear.
func ParseClarity(s string) (Clarity, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "clear-ish" {
		v = string(ClarityClear)
	}
	switch c := Clarity(v); c {
	case ClarityMuted, ClarityClear, ClarityVivid:
		return c, nil
	}
	return "", fmt.Errorf("clarity %q: %w", s, ErrUnknownValue)
}

// Confidence holds one confidence per attribute, each in [0,1].
type Confidence struct {
	Undertone float64 `json:"undertone"`
	Depth     float64 `json:"depth"`
	Clarity   float64 `json:"clarity"`
}

// AttributeProfile is the categorical reading of a skin or garment color.
type AttributeProfile struct {
	Undertone     Undertone  `json:"undertone"`
	UndertoneLean Lean       `json:"undertone_lean,omitempty"`
	Depth         Depth      `json:"depth"`
	Clarity       Clarity    `json:"clarity"`
	Confidence    Confidence `json:"confidence"`

	// WarmthAxis, Lightness and Chroma are the measurements the categories were cut from.
	WarmthAxis float64 `json:"warmth_axis"`
	Lightness  float64 `json:"lightness"`
	Chroma     float64 `json:"chroma"`
}

// Rounded returns p with confidences at 0.01 and measurements at 0.1.
func (p AttributeProfile) Rounded() AttributeProfile {
	p.Confidence = Confidence{
		Undertone: Round2(p.Confidence.Undertone),
		Depth:     Round2(p.Confidence.Depth),
		Clarity:   Round2(p.Confidence.Clarity),
	}
	p.WarmthAxis = Round1(p.WarmthAxis)
	p.Lightness = Round1(p.Lightness)
	p.Chroma = Round1(p.Chroma)
	return p
}
