// Package viewport tracks focus and the visible window over table rows.
package viewport

import (
	nt "tableau/entity"
)

// Viewport is a window of rows around a focused position.
type Viewport struct {
	focus  int
	origin int
	width  int
	height int
}

// New creates a viewport with no focus.
func New(width, height int) *Viewport {
	return &Viewport{
		focus:  nt.NoFocus,
		width:  width,
		height: max(height, 1),
	}
}

// Focus returns the focused position, or NoFocus.
func (vp *Viewport) Focus() int {
	return vp.focus
}

// Origin returns the position of the first row in the window.
func (vp *Viewport) Origin() int {
	return vp.origin
}

func (vp *Viewport) Width() int {
	return vp.width
}

func (vp *Viewport) Height() int {
	return vp.height
}

// SetSize changes the window dimensions.
func (vp *Viewport) SetSize(width, height, count int) {
	vp.width = width
	vp.height = max(height, 1)
	vp.Clamp(count)
}

// Clamp keeps focus within count rows, focusing the first row when there
// was none and dropping focus when there are no rows.
func (vp *Viewport) Clamp(count int) {

	if count <= 0 {
		vp.focus = nt.NoFocus
		vp.origin = 0
		return
	}

	vp.focus = min(max(vp.focus, 0), count-1)
	vp.follow(count)
}

// SetFocus moves focus to position, clamped. It reports whether focus moved.
func (vp *Viewport) SetFocus(position, count int) bool {

	if count <= 0 {
		vp.Clamp(count)
		return false
	}

	before := vp.focus
	vp.focus = position
	vp.Clamp(count)
	return vp.focus != before
}

// ScrollBy moves focus by delta rows, clamped.
func (vp *Viewport) ScrollBy(delta, count int) bool {

	if count <= 0 {
		return false
	}
	return vp.SetFocus(max(vp.focus, 0)+delta, count)
}

// PageUp moves focus up a window.
func (vp *Viewport) PageUp(count int) bool {
	return vp.ScrollBy(-vp.height, count)
}

// PageDown moves focus down a window.
func (vp *Viewport) PageDown(count int) bool {
	return vp.ScrollBy(vp.height, count)
}

// Home focuses the first row.
func (vp *Viewport) Home(count int) bool {
	return vp.SetFocus(0, count)
}

// End focuses the last row.
func (vp *Viewport) End(count int) bool {
	return vp.SetFocus(count-1, count)
}

// Window returns the positions shown, start inclusive and end exclusive.
func (vp *Viewport) Window(count int) (start, end int) {

	start = min(vp.origin, max(count, 0))
	end = min(start+vp.height, max(count, 0))
	return
}

// BottomVisible reports whether the window reaches the last row.
func (vp *Viewport) BottomVisible(count int) bool {
	return vp.origin+vp.height >= count
}

// Scrollbar returns the indicator position and size within the window
// height, and false when every row fits.
func (vp *Viewport) Scrollbar(total int) (position, size int, ok bool) {

	if total <= vp.height {
		return
	}

	position = max(vp.focus, 0) * vp.height / total
	size = max(vp.height*vp.height/total, 1)
	ok = true
	return
}

// ScrollbarColumn renders the indicator as one glyph per window row.
func (vp *Viewport) ScrollbarColumn(total int, track, thumb string) []string {

	position, size, ok := vp.Scrollbar(total)
	if !ok {
		return nil
	}

	glyphs := make([]string, vp.height)
	for i := range glyphs {
		glyphs[i] = track
		if i >= position && i < position+size {
			glyphs[i] = thumb
		}
	}
	return glyphs
}

// unexported

// follow moves the window to keep focus visible.
func (vp *Viewport) follow(count int) {

	switch {
	case vp.focus < vp.origin:
		vp.origin = vp.focus
	case vp.focus >= vp.origin+vp.height:
		vp.origin = vp.focus - vp.height + 1
	}
	vp.origin = max(min(vp.origin, count-vp.height), 0)
}
