// Package crop implements the crop geometry and rendering for photo slots.
// All rectangles are in source-image pixel space.
package crop

import "github.com/copiiworld/cajita-go/internal/models"

// OutputSize is the side of the square raster each committed crop is
// rendered to. Must match what the order service expects: a mismatch is
// accepted silently on the far side and only shows up in print.
const OutputSize = 1000

// DefaultSquare returns the centered square crop for an image of the given
// natural size: side = min(w, h), centered on the longer axis, flush on the
// shorter one.
func DefaultSquare(w, h int) models.CropRect {
	side := w
	if h < w {
		side = h
	}
	return models.CropRect{
		X:      (w - side) / 2,
		Y:      (h - side) / 2,
		Width:  side,
		Height: side,
	}
}

// Clamp constrains a crop rectangle to the bounds of a w×h source image.
// Degenerate input comes back degenerate; callers check Valid separately.
func Clamp(r models.CropRect, w, h int) models.CropRect {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.X+r.Width > w {
		r.Width = w - r.X
	}
	if r.Y+r.Height > h {
		r.Height = h - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
