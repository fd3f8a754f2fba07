package garment

import (
	"github.com/okian/swatch/internal/domain/colorspace"
	"github.com/okian/swatch/internal/domain/model"
)

// PaletteColor is one reference color of a season palette.
type PaletteColor struct {
	Name string         `json:"name"`
	Hex  string         `json:"hex"`
	Lab  model.LabColor `json:"lab"`
}

// Palette is the reference palette of one season.
type Palette struct {
	Season model.Season   `json:"season"`
	Colors []PaletteColor `json:"colors"`
}

var paletteSource = map[model.Season][][2]string{
	model.Spring: {
		{"coral", "#FF7F50"},
		{"light salmon", "#FFA07A"},
		{"peach", "#FFDAB9"},
		{"golden yellow", "#FFD700"},
		{"turquoise", "#40E0D0"},
		{"ivory", "#FFFFF0"},
		{"light green", "#90EE90"},
		{"sand", "#E1C699"},
		{"poppy", "#E35335"},
		{"aquamarine", "#7FFFD4"},
		{"sandy brown", "#F4A460"},
		{"apricot", "#FFB347"},
	},
	model.Summer: {
		{"light steel blue", "#B0C4DE"},
		{"lavender", "#E6E6FA"},
		{"thistle", "#D8BFD8"},
		{"lilac", "#C8A2C8"},
		{"dusty blue", "#6A8EAE"},
		{"seafoam gray", "#9DC3C1"},
		{"powder pink", "#F4C2C2"},
		{"cool gray", "#8C92AC"},
		{"slate gray", "#778899"},
		{"rose", "#DB7093"},
		{"cadet blue", "#5F9EA0"},
		{"soft white", "#F5F5F5"},
		{"steel blue", "#4682B4"},
		{"lavender purple", "#967BB6"},
	},
	model.Autumn: {
		{"saddle brown", "#8B4513"},
		{"cinnamon", "#D2691E"},
		{"ochre", "#CC7722"},
		{"olive", "#808000"},
		{"dark olive", "#556B2F"},
		{"dark goldenrod", "#B8860B"},
		{"sienna", "#A0522D"},
		{"rust", "#B7410E"},
		{"camel", "#C19A6B"},
		{"teal", "#008080"},
		{"maroon", "#800000"},
		{"olive drab", "#6B8E23"},
		{"wheat", "#F5DEB3"},
		{"sage", "#8A9A5B"},
	},
	model.Winter: {
		{"black", "#000000"},
		{"pure white", "#FFFFFF"},
		{"navy", "#1C2D5A"},
		{"cobalt", "#0047AB"},
		{"crimson", "#DC143C"},
		{"magenta", "#C71585"},
		{"indigo", "#4B0082"},
		{"dark cyan", "#008B8B"},
		{"charcoal", "#36454F"},
		{"silver", "#C0C0C0"},
		{"burgundy", "#800020"},
		{"icy blue", "#E0FFFF"},
	},
}

// palettes is built once at startup and never written again.
var palettes = buildPalettes()

func buildPalettes() map[model.Season]Palette {
	out := make(map[model.Season]Palette, len(paletteSource))
	for season, src := range paletteSource {
		p := Palette{Season: season, Colors: make([]PaletteColor, 0, len(src))}
		for _, c := range src {
			px, err := colorspace.ParseHex(c[1])
			if err != nil {
				panic("garment: bad palette color " + c[1])
			}
			p.Colors = append(p.Colors, PaletteColor{Name: c[0], Hex: c[1], Lab: colorspace.RGBToLab(px.R, px.G, px.B)})
		}
		out[season] = p
	}
	return out
}

// PaletteFor returns the reference palette of s. The returned colors must not be modified.
func PaletteFor(s model.Season) (Palette, bool) {
	p, ok := palettes[s]
	return p, ok
}

// nearest returns the palette color closest to lab.
func (p Palette) nearest(lab model.LabColor) (PaletteColor, float64) {
	var (
		best   PaletteColor
		bestDE = -1.0
	)
	for _, c := range p.Colors {
		if de := colorspace.DeltaE(lab, c.Lab); bestDE < 0 || de < bestDE {
			best, bestDE = c, de
		}
	}
	return best, bestDE
}
