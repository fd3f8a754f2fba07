package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
)

// RGB is a garment color given as channels.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// GarmentColor is one garment color; Hex and RGB are alternatives.
type GarmentColor struct {
	Hex      string `json:"hex,omitempty"`
	RGB      *RGB   `json:"rgb,omitempty"`
	NearFace *bool  `json:"near_face,omitempty"`
}

// ProfileInput is a caller-supplied person profile.
type ProfileInput struct {
	Undertone string `json:"undertone,omitempty"`
	Depth     string `json:"depth,omitempty"`
	Clarity   string `json:"clarity,omitempty"`
}

// personInput is shared by single and batch requests.
type personInput struct {
	Season          string        `json:"season,omitempty"`
	SecondarySeason string        `json:"secondary_season,omitempty"`
	Profile         *ProfileInput `json:"profile,omitempty"`
	NearFace        bool          `json:"near_face,omitempty"`
}

// ScoreRequest is the body of POST /v1/garments/score.
type ScoreRequest struct {
	Garment GarmentColor `json:"garment"`
	personInput
}

// BatchScoreRequest is the body of POST /v1/garments/score/batch.
type BatchScoreRequest struct {
	Garments []GarmentColor `json:"garments"`
	personInput
}

// BatchScoreResponse wraps batch results in request order.
type BatchScoreResponse struct {
	Results []model.GarmentColorScore `json:"results"`
}

// GarmentHandler handles garment scoring requests.
type GarmentHandler struct {
	deps Dependencies
}

// NewGarmentHandler creates a new garment handler.
func NewGarmentHandler(deps Dependencies) *GarmentHandler {
	return &GarmentHandler{deps: deps}
}

// HandleScore handles POST /v1/garments/score.
func (h *GarmentHandler) HandleScore(c *gin.Context) {
	const op = "garments.score"

	var body ScoreRequest
	if err := decodeStrict(c, &body); err != nil {
		h.fail(c, op, err)
		return
	}
	base, err := body.personInput.request()
	if err != nil {
		h.fail(c, op, err)
		return
	}
	req, err := body.Garment.apply(base)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.ScoreGarment(c.Request.Context(), req))
}

// HandleBatch handles POST /v1/garments/score/batch.
func (h *GarmentHandler) HandleBatch(c *gin.Context) {
	const op = "garments.batch"

	var body BatchScoreRequest
	if err := decodeStrict(c, &body); err != nil {
		h.fail(c, op, err)
		return
	}
	if len(body.Garments) == 0 {
		h.fail(c, op, fmt.Errorf("%w: garments must not be empty", ErrBadRequest))
		return
	}
	base, err := body.personInput.request()
	if err != nil {
		h.fail(c, op, err)
		return
	}

	reqs := make([]garment.Request, len(body.Garments))
	for i, g := range body.Garments {
		req, err := g.apply(base)
		if err != nil {
			h.fail(c, op, fmt.Errorf("garments[%d]: %w", i, err))
			return
		}
		reqs[i] = req
	}

	results, err := h.deps.ScoreBatch(c.Request.Context(), reqs)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, BatchScoreResponse{Results: results})
}

func (h *GarmentHandler) fail(c *gin.Context, op string, err error) {
	err = wrapOp(c, op, err)
	_ = c.Error(err)
	writeError(c, err)
}

// request validates the person fields once; the result is copied per garment.
func (p personInput) request() (garment.Request, error) {
	var req garment.Request
	if p.Season != "" {
		s, err := model.ParseSeason(p.Season)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		req.Season = s
	}
	if p.SecondarySeason != "" {
		s, err := model.ParseSeason(p.SecondarySeason)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		req.Secondary = s
	}
	if p.Profile != nil {
		prof, err := p.Profile.parse()
		if err != nil {
			return req, err
		}
		req.Profile = prof
	}
	req.NearFace = p.NearFace
	return req, nil
}

func (p ProfileInput) parse() (garment.Profile, error) {
	var prof garment.Profile
	var err error
	if p.Undertone != "" {
		if prof.Undertone, err = model.ParseUndertone(p.Undertone); err != nil {
			return prof, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	if p.Depth != "" {
		if prof.Depth, err = model.ParseDepth(p.Depth); err != nil {
			return prof, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	if p.Clarity != "" {
		if prof.Clarity, err = model.ParseClarity(p.Clarity); err != nil {
			return prof, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	return prof, nil
}

// apply sets the garment color on base. A garment with neither hex nor rgb
// keeps a nil color and scores as insufficient_data.
func (g GarmentColor) apply(base garment.Request) (garment.Request, error) {
	if g.NearFace != nil {
		base.NearFace = *g.NearFace
	}
	switch {
	case g.Hex != "" && g.RGB != nil:
		return base, fmt.Errorf("%w: hex and rgb are mutually exclusive", ErrBadRequest)
	case g.Hex != "":
		px, err := colorspace.ParseHex(g.Hex)
		if err != nil {
			return base, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		base.Color = &px
	case g.RGB != nil:
		px, err := g.RGB.sample()
		if err != nil {
			return base, err
		}
		base.Color = &px
	}
	return base, nil
}

func (c RGB) sample() (model.PixelSample, error) {
	for _, v := range []int{c.R, c.G, c.B} {
		if v < 0 || v > 255 {
			return model.PixelSample{}, fmt.Errorf("%w: rgb channel %d out of range [0,255]", ErrBadRequest, v)
		}
	}
	return model.PixelSample{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B)}, nil
}

// decodeStrict decodes a JSON body rejecting unknown fields.
func decodeStrict(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}
