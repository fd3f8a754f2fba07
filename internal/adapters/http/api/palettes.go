package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
)

// PaletteHandler serves the reference palettes.
type PaletteHandler struct {
	deps Dependencies
}

// NewPaletteHandler creates a new palette handler.
func NewPaletteHandler(deps Dependencies) *PaletteHandler {
	return &PaletteHandler{deps: deps}
}

// HandleList handles GET /v1/palettes.
func (h *PaletteHandler) HandleList(c *gin.Context) {
	out := make([]garment.Palette, 0, len(model.Seasons))
	for _, s := range model.Seasons {
		p, err := h.deps.Palette(string(s))
		if err != nil {
			err = wrapOp(c, "palettes.list", err)
			_ = c.Error(err)
			writeError(c, err)
			return
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, gin.H{"palettes": out})
}

// HandleGet handles GET /v1/palettes/:season.
func (h *PaletteHandler) HandleGet(c *gin.Context) {
	name := c.Param("season")
	if _, err := model.ParseSeason(name); err != nil {
		writeError(c, wrapOp(c, "palettes.get", fmt.Errorf("%w: season %q", ErrNotFound, name)))
		return
	}
	p, err := h.deps.Palette(name)
	if err != nil {
		err = wrapOp(c, "palettes.get", err)
		_ = c.Error(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
