package model

import (
	"fmt"
	"strings"
)

// Season is one of the four classical color seasons.
type Season string

// Season values.
const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Seasons lists every season in a fixed order used for tie-breaking.
var Seasons = []Season{Spring, Summer, Autumn, Winter}

// ParseSeason parses a season name; "fall" is accepted for autumn.
func ParseSeason(s string) (Season, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "fall" {
		v = string(Autumn)
	}
	switch season := Season(v); season {
	case Spring, Summer, Autumn, Winter:
		return season, nil
	}
	return "", fmt.Errorf("season %q: %w", s, ErrUnknownValue)
}

// Undertone returns the undertone family of the season.
func (s Season) Undertone() Undertone {
	switch s {
	case Spring, Autumn:
		return UndertoneWarm
	case Summer, Winter:
		return UndertoneCool
	}
	return UndertoneNeutral
}

// Profile returns the nominal attribute profile of the season.
func (s Season) Profile() AttributeProfile {
	p := AttributeProfile{Undertone: s.Undertone(), UndertoneLean: LeanNone}
	switch s {
	case Spring:
		p.Depth, p.Clarity = DepthLight, ClarityClear
	case Summer:
		p.Depth, p.Clarity = DepthLight, ClarityMuted
	case Autumn:
		p.Depth, p.Clarity = DepthDeep, ClarityMuted
	case Winter:
		p.Depth, p.Clarity = DepthDeep, ClarityVivid
	}
	return p
}

// SeasonCandidate is one scored season.
type SeasonCandidate struct {
	Season Season  `json:"season"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Decision is the outcome of season scoring for one request.
type Decision struct {
	Season            Season            `json:"season"`
	Alternate         *SeasonCandidate  `json:"alternate,omitempty"`
	Candidates        []SeasonCandidate `json:"candidates"`
	Confidence        float64           `json:"confidence"`
	NeedsConfirmation bool              `json:"needs_confirmation"`
	Branch            string            `json:"branch"`
	Penalties         []string          `json:"penalties,omitempty"`
}
