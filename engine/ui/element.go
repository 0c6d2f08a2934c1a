// Package ui holds small on-screen widgets rendered as text.
package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// Element is the placement and visibility shared by every widget.
type Element struct {
	Position image.Point
	Colour   color.Color
	hidden   bool
}

func (e *Element) SetPosition(p image.Point) { e.Position = p }
func (e *Element) Show()                     { e.hidden = false }
func (e *Element) Hide()                     { e.hidden = true }
func (e *Element) Visible() bool             { return !e.hidden }

func (e *Element) colour() color.Color {
	if e.Colour == nil {
		return color.White
	}
	return e.Colour
}

// drawText writes s with its top left corner at the element position.
func (e *Element) drawText(dst draw.Image, s string) {
	if e.hidden {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(e.colour()),
		Face: face,
		Dot:  fixed.P(e.Position.X, e.Position.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// TextBounds is the area drawText covers for s at p.
func TextBounds(p image.Point, s string) image.Rectangle {
	width := font.MeasureString(face, s).Ceil()
	return image.Rect(p.X, p.Y, p.X+width, p.Y+face.Metrics().Height.Ceil())
}
