package render

import (
	"image/color"

	"golang.org/x/image/colornames"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// CountyAlpha is the fill opacity of county polygons on the reference map.
const CountyAlpha = 0.25

// countyPalette cycles by sorted county position.
var countyPalette = []color.RGBA{
	{R: 0, G: 128, B: 0, A: 255}, // g
	colornames.Mediumseagreen,
	colornames.Mediumaquamarine,
	colornames.Mediumturquoise,
	colornames.Slateblue,
	{R: 0, G: 191, B: 191, A: 255}, // c
	colornames.Maroon,
	colornames.Darkolivegreen,
}

var (
	riverColor       = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	riverLegendColor = colornames.Royalblue
	roadColor        = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	boundaryColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	gridColor        = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 255}
)

// PaletteColor returns the opaque palette color for position i.
func PaletteColor(i int) color.RGBA {
	n := len(countyPalette)
	return countyPalette[((i%n)+n)%n]
}

// WithAlpha returns c with straight alpha a, premultiplied for image/color.
func WithAlpha(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(255*a + 0.5),
	}
}

// DisplayName title-cases a county name for the legend.
func DisplayName(name string) string {
	return cases.Title(language.Und).String(name)
}

func textStyle(size vg.Length) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, size),
		Handler: plot.DefaultTextHandler,
	}
}
