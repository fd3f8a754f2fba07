package garment

import "github.com/okian/swatch/internal/domain/model"

// Profile is a caller-supplied person profile. Empty fields are unset; on
// top of a season they override the season defaults.
type Profile struct {
	Undertone model.Undertone `json:"undertone,omitempty"`
	Depth     model.Depth     `json:"depth,omitempty"`
	Clarity   model.Clarity   `json:"clarity,omitempty"`
}

// Complete reports whether every attribute is set.
func (p Profile) Complete() bool {
	return p.Undertone != "" && p.Depth != "" && p.Clarity != ""
}

// Over returns base with every set field of p applied on top.
func (p Profile) Over(base model.AttributeProfile) model.AttributeProfile {
	if p.Undertone != "" {
		base.Undertone = p.Undertone
	}
	if p.Depth != "" {
		base.Depth = p.Depth
	}
	if p.Clarity != "" {
		base.Clarity = p.Clarity
	}
	return base
}

// SeasonFor maps a complete attribute profile to a season with a fixed table.
//
//	warm:    deep → autumn; medium+muted → autumn; otherwise spring
//	cool:    deep → winter; medium+vivid → winter; otherwise summer
//	neutral: light → summer if muted else spring
//	         medium → autumn if muted, winter if vivid, else spring
//	         deep → winter if vivid else autumn
func SeasonFor(u model.Undertone, d model.Depth, c model.Clarity) model.Season {
	switch u {
	case model.UndertoneWarm, model.UndertoneOlive:
		if d == model.DepthDeep || (d == model.DepthMedium && c == model.ClarityMuted) {
			return model.Autumn
		}
		return model.Spring
	case model.UndertoneCool:
		if d == model.DepthDeep || (d == model.DepthMedium && c == model.ClarityVivid) {
			return model.Winter
		}
		return model.Summer
	}
	switch d {
	case model.DepthLight:
		if c == model.ClarityMuted {
			return model.Summer
		}
		return model.Spring
	case model.DepthDeep:
		if c == model.ClarityVivid {
			return model.Winter
		}
		return model.Autumn
	}
	switch c {
	case model.ClarityMuted:
		return model.Autumn
	case model.ClarityVivid:
		return model.Winter
	}
	return model.Spring
}
