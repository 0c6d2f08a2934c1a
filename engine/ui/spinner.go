package ui

import "image/draw"

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner signals that loading is in progress. It starts hidden.
type Spinner struct {
	Element
	frame int
}

func NewSpinner() *Spinner {
	s := &Spinner{}
	s.Hide()
	return s
}

func (s *Spinner) Start() {
	s.frame = 0
	s.Show()
}

func (s *Spinner) Stop() {
	s.Hide()
}

// Tick advances the animation while the spinner is visible.
func (s *Spinner) Tick() {
	if s.Visible() {
		s.frame = (s.frame + 1) % len(spinnerFrames)
	}
}

// Frame is the current animation glyph, or "" when hidden.
func (s *Spinner) Frame() string {
	if !s.Visible() {
		return ""
	}
	return spinnerFrames[s.frame]
}

func (s *Spinner) Draw(dst draw.Image) {
	s.drawText(dst, s.Frame())
}
