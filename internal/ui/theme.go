package ui

import (
	"image"
	"image/color"

	gfont "gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/oligo/gioview/theme"
)

// loadIcon decodes a material design icon, returning nil on bad data so
// callers can lay out without it.
func loadIcon(data []byte) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		return nil
	}
	return icon
}

// applyPalette installs the light or dark palette on gv.
func applyPalette(gv *theme.Theme, dark bool) {
	if gv == nil {
		return
	}
	if dark {
		gv.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 21, G: 23, B: 30, A: 255},
			Fg:         color.NRGBA{R: 230, G: 233, B: 242, A: 255},
			ContrastBg: color.NRGBA{R: 110, G: 145, B: 250, A: 255},
			ContrastFg: color.NRGBA{R: 14, G: 17, B: 25, A: 255},
			Bg2:        color.NRGBA{R: 32, G: 36, B: 46, A: 255},
		})
	} else {
		gv.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 247, G: 248, B: 252, A: 255},
			Fg:         color.NRGBA{R: 32, G: 35, B: 46, A: 255},
			ContrastBg: color.NRGBA{R: 76, G: 112, B: 245, A: 255},
			ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			Bg2:        color.NRGBA{R: 228, G: 232, B: 243, A: 255},
		})
	}
}

// filterMonoFaces returns the Go Mono faces from the bundled collection,
// used for URL and log read-outs.
func filterMonoFaces() []gfont.FontFace {
	var mono []gfont.FontFace
	for _, face := range gofont.Collection() {
		if face.Font.Typeface == gfont.Typeface("Go Mono") {
			mono = append(mono, face)
		}
	}
	return mono
}

// fillMax paints the full constraint area in col.
func fillMax(gtx layout.Context, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Rect{Max: gtx.Constraints.Max}.Op())
}

// roundedCard paints a rounded rectangle of size in col.
func roundedCard(gtx layout.Context, col color.NRGBA, size image.Point, radius unit.Dp) {
	r := gtx.Dp(radius)
	paint.FillShape(gtx.Ops, col, clip.RRect{
		Rect: image.Rectangle{Max: size},
		NW:   r, NE: r, SW: r, SE: r,
	}.Op(gtx.Ops))
}

// errAccent marks failed scans and error toasts in both palettes.
var errAccent = color.NRGBA{R: 0xCB, G: 0x44, B: 0x4A, A: 0xFF}

// mutedFg derives a secondary text color from fg.
func mutedFg(fg color.NRGBA) color.NRGBA {
	fg.A = 0xA0
	return fg
}

// opaque returns fg with full alpha, for text over tinted fills.
func opaque(fg color.NRGBA) color.NRGBA {
	fg.A = 0xFF
	return fg
}
