// Package season decides a color season from an attribute profile.
//
// A decision runs through three states: no decision, candidates scored and
// decided. Scoring takes one of two named branches. The formula branch
// blends smooth ramps of warmth, lightness and chroma with fixed per-season
// weights, optionally gated to the undertone-compatible pair. The degenerate
// branch handles near-achromatic neutral readings with a lightness tiebreak
// between summer and autumn.
package season

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/model"
)

// Branch names.
const (
	BranchFormula    = "formula"
	BranchDegenerate = "degenerate"
)

// Penalty names reported on a Decision.
const (
	PenaltyNoisy        = "noisy_samples"
	PenaltyClamped      = "gains_clamped"
	PenaltyLowUndertone = "low_undertone_confidence"
	PenaltyCloseScores  = "close_candidates"
	PenaltyDegenerate   = "degenerate_branch"
)

// Quality carries the sample-quality flags that penalize a decision.
type Quality struct {
	Noisy   bool
	Clamped bool
}

// Ramps are the six [0,1] sub-scores a decision is built from.
type Ramps struct {
	Warm  float64 `json:"warm"`
	Cool  float64 `json:"cool"`
	Light float64 `json:"light"`
	Deep  float64 `json:"deep"`
	Vivid float64 `json:"vivid"`
	Muted float64 `json:"muted"`
}

// Decider scores seasons.
type Decider struct {
	cfg   calibration.Season
	attrs calibration.Attributes
}

// New creates a Decider. The attribute breakpoints anchor the ramps.
func New(cfg calibration.Season, attrs calibration.Attributes) *Decider {
	return &Decider{cfg: cfg, attrs: attrs}
}

// Ramps computes the sub-scores for p.
func (d *Decider) Ramps(p model.AttributeProfile) Ramps {
	a, c := d.attrs, d.cfg
	return Ramps{
		Warm:  ramp(p.WarmthAxis, a.WarmMin-c.RampUndertone, a.WarmMin+c.RampUndertone),
		Cool:  1 - ramp(p.WarmthAxis, a.CoolMax-c.RampUndertone, a.CoolMax+c.RampUndertone),
		Light: ramp(p.Lightness, a.LightMin-c.RampDepth, a.LightMin+c.RampDepth),
		Deep:  1 - ramp(p.Lightness, a.DeepMax-c.RampDepth, a.DeepMax+c.RampDepth),
		Vivid: ramp(p.Chroma, a.VividMin-c.RampChroma, a.VividMin+c.RampChroma),
		Muted: 1 - ramp(p.Chroma, a.MutedMax-c.RampChroma, a.MutedMax+c.RampChroma),
	}
}

// Decide always resolves to a season. Weak evidence shows up as a low
// confidence and NeedsConfirmation, never as an empty answer.
func (d *Decider) Decide(p model.AttributeProfile, q Quality) model.Decision {
	var (
		scores map[model.Season]float64
		reason map[model.Season]string
		branch string
	)
	if d.degenerate(p) {
		branch = BranchDegenerate
		scores, reason = d.scoreDegenerate(p)
	} else {
		branch = BranchFormula
		scores, reason = d.scoreFormula(p)
	}

	top := 0.0
	for _, s := range scores {
		top = math.Max(top, s)
	}
	cands := make([]model.SeasonCandidate, 0, len(model.Seasons))
	for _, s := range model.Seasons {
		v := scores[s]
		if top > 0 {
			v /= top
		}
		cands = append(cands, model.SeasonCandidate{Season: s, Score: v, Reason: reason[s]})
	}
	slices.SortStableFunc(cands, func(x, y model.SeasonCandidate) int {
		switch {
		case x.Score > y.Score:
			return -1
		case x.Score < y.Score:
			return 1
		}
		return 0
	})

	dec := model.Decision{
		Season:     cands[0].Season,
		Candidates: cands,
		Branch:     branch,
	}
	alt := cands[1]
	dec.Alternate = &alt

	conf := 0.45*p.Confidence.Undertone + 0.30*p.Confidence.Depth + 0.25*p.Confidence.Clarity
	penalize := func(name string, amount float64) {
		dec.Penalties = append(dec.Penalties, name)
		conf -= amount
	}
	if q.Noisy {
		penalize(PenaltyNoisy, d.cfg.PenaltyNoisy)
	}
	if q.Clamped {
		penalize(PenaltyClamped, d.cfg.PenaltyClamped)
	}
	if p.Confidence.Undertone < d.cfg.LowUndertone {
		penalize(PenaltyLowUndertone, d.cfg.PenaltyLowTone)
	}
	if cands[0].Score-cands[1].Score < d.cfg.CloseGap {
		penalize(PenaltyCloseScores, d.cfg.PenaltyClose)
	}
	if branch == BranchDegenerate {
		penalize(PenaltyDegenerate, d.cfg.PenaltyDegenerate)
	}

	dec.Confidence = math.Max(0, math.Min(1, conf))
	dec.NeedsConfirmation = dec.Confidence < d.cfg.ConfirmBar || len(dec.Penalties) > 0
	return dec
}

func (d *Decider) degenerate(p model.AttributeProfile) bool {
	return p.Chroma < d.cfg.DegenerateChroma && p.Undertone == model.UndertoneNeutral
}

// gate returns the undertone-compatible pair when the undertone reading is
// confident enough, or nil for no gating.
func (d *Decider) gate(p model.AttributeProfile) []model.Season {
	if p.Confidence.Undertone < d.cfg.GateConfidence {
		return nil
	}
	switch p.Undertone {
	case model.UndertoneWarm:
		return []model.Season{model.Spring, model.Autumn}
	case model.UndertoneCool:
		return []model.Season{model.Summer, model.Winter}
	}
	return nil
}

func (d *Decider) scoreFormula(p model.AttributeProfile) (map[model.Season]float64, map[model.Season]string) {
	r := d.Ramps(p)
	c := d.cfg
	scores := map[model.Season]float64{
		model.Spring: blend(c.Spring, r.Warm, r.Light, r.Vivid),
		model.Summer: blend(c.Summer, r.Cool, r.Light, r.Muted),
		model.Autumn: blend(c.Autumn, r.Warm, 1-r.Light, r.Muted),
		model.Winter: blend(c.Winter, r.Cool, r.Deep, r.Vivid),
	}
	reasons := map[model.Season]string{
		model.Spring: fmt.Sprintf("warm %.2f, light %.2f, vivid %.2f", r.Warm, r.Light, r.Vivid),
		model.Summer: fmt.Sprintf("cool %.2f, light %.2f, muted %.2f", r.Cool, r.Light, r.Muted),
		model.Autumn: fmt.Sprintf("warm %.2f, not light %.2f, muted %.2f", r.Warm, 1-r.Light, r.Muted),
		model.Winter: fmt.Sprintf("cool %.2f, deep %.2f, vivid %.2f", r.Cool, r.Deep, r.Vivid),
	}

	if allowed := d.gate(p); allowed != nil {
		for _, s := range model.Seasons {
			if !slices.Contains(allowed, s) {
				scores[s] = 0
				reasons[s] = fmt.Sprintf("excluded: %s undertone", p.Undertone)
			}
		}
	}
	return scores, reasons
}

// scoreDegenerate splits summer and autumn by lightness around the middle of
// the medium band. The lean nudges a near-tie; spring and winter keep a
// down-weighted formula score so they can never win on weak color signal.
func (d *Decider) scoreDegenerate(p model.AttributeProfile) (map[model.Season]float64, map[model.Season]string) {
	c := d.cfg
	formula, _ := d.scoreFormula(p)
	mid := (d.attrs.DeepMax + d.attrs.LightMin) / 2
	s := ramp(p.Lightness, mid-c.DegenerateSpan, mid+c.DegenerateSpan)

	summer := 0.5 + 0.5*s
	autumn := 0.5 + 0.5*(1-s)
	switch p.UndertoneLean {
	case model.LeanCool:
		summer += c.DegenerateLeanBonus
	case model.LeanWarm:
		autumn += c.DegenerateLeanBonus
	}

	scores := map[model.Season]float64{
		model.Spring: formula[model.Spring] * c.DegenerateOffScale,
		model.Summer: summer,
		model.Autumn: autumn,
		model.Winter: formula[model.Winter] * c.DegenerateOffScale,
	}
	tiebreak := fmt.Sprintf("low chroma %.1f, lightness %.1f", p.Chroma, p.Lightness)
	reasons := map[model.Season]string{
		model.Spring: "unlikely at low chroma",
		model.Summer: tiebreak,
		model.Autumn: tiebreak,
		model.Winter: "unlikely at low chroma",
	}
	return scores, reasons
}

func blend(w calibration.Weights, tone, depth, clarity float64) float64 {
	return w.Undertone*tone + w.Depth*depth + w.Clarity*clarity
}

// ramp rises linearly from 0 at lo to 1 at hi.
func ramp(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
}
