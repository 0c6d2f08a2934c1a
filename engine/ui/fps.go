package ui

import (
	"fmt"
	"image/draw"
	"time"
)

// FpsCounter shows a frame rate, refreshed at most once per interval so the number
// stays readable.
type FpsCounter struct {
	Element
	interval   time.Duration
	lastUpdate time.Time
	text       string
}

func NewFpsCounter(interval time.Duration, now time.Time) *FpsCounter {
	return &FpsCounter{
		interval:   interval,
		lastUpdate: now,
		text:       "0 fps",
	}
}

// Update sets the label from fps unless the previous update was less than one interval
// ago. It reports whether the label changed.
func (f *FpsCounter) Update(fps float64, now time.Time) bool {
	if now.Sub(f.lastUpdate) < f.interval {
		return false
	}
	f.text = fmt.Sprintf("%d fps", int64(fps))
	f.lastUpdate = now
	return true
}

func (f *FpsCounter) Text() string {
	return f.text
}

func (f *FpsCounter) Draw(dst draw.Image) {
	f.drawText(dst, f.text)
}
