package viewport

import (
	"math"
	"slices"
)

// Hit locates a header x coordinate.
type Hit struct {
	// Column indexes all visible columns, dividers included.
	Column int
	// Data indexes data columns; for a divider, the column to its left.
	Data int
	// Offset is the x coordinate within the column.
	Offset int
	// Divider is set when the hit is on a divider.
	Divider bool
}

// HitTest finds the column under x given visible column widths.
func HitTest(widths []int, dividers []bool, x int) (hit Hit, ok bool) {

	if x < 0 {
		return
	}

	left := 0
	data := -1
	for i, width := range widths {
		divider := i < len(dividers) && dividers[i]
		if !divider {
			data++
		}

		if x < left+width {
			hit = Hit{Column: i, Data: max(data, 0), Offset: x - left, Divider: divider}
			ok = true
			return
		}
		left += width
	}
	return
}

// DragResize turns a header drag from start to end into new data column
// widths. A drag on a divider, or on the right third of a column, moves
// the column's right edge. A drag on the left third moves its left edge.
// Drags in the middle, or on an outer edge, change nothing.
func DragResize(hit Hit, widths, mins []int, start, end int) (resized []int, ok bool) {

	index := hit.Data
	if index < 0 || index >= len(widths) {
		return
	}

	width := widths[index]
	delta := end - start
	dir := 1

	switch {
	case hit.Divider:
	case index == 0 && hit.Offset <= width/3:
		return
	case index != 0 && hit.Offset <= roundDiv(width, 3):
		dir = -1
		delta = -delta
	case index != len(widths)-1 && hit.Offset >= roundDiv(2*width, 3):
	default:
		return
	}

	resized = Cascade(widths, mins, index, delta, dir)
	ok = !slices.Equal(resized, widths)
	return
}

// Cascade moves one edge of column index by delta, positive growing the
// column. The edge is its right one when dir is positive, else its left.
//
// A growing column takes width from its neighbours beyond the edge, nearest
// first, each down to its minimum. A shrinking column gives width to the
// neighbour beyond the edge; once it is at its minimum the shrink carries on
// to the columns behind it. Total width never changes: whatever cannot be
// taken or given, including any delta against the outer edge, is dropped.
func Cascade(widths, mins []int, index, delta, dir int) []int {

	resized := slices.Clone(widths)
	if index < 0 || index >= len(widths) || delta == 0 {
		return resized
	}
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}

	neighbour := index + dir
	if neighbour < 0 || neighbour >= len(widths) {
		return resized
	}

	slack := func(i int) int {
		floor := 0
		if i < len(mins) {
			floor = mins[i]
		}
		return max(resized[i]-floor, 0)
	}

	if delta > 0 {
		taken := 0
		for i := neighbour; i >= 0 && i < len(resized) && taken < delta; i += dir {
			take := min(slack(i), delta-taken)
			resized[i] -= take
			taken += take
		}
		resized[index] += taken
		return resized
	}

	given := 0
	for i := index; i >= 0 && i < len(resized) && given < -delta; i -= dir {
		give := min(slack(i), -delta-given)
		resized[i] -= give
		given += give
	}
	resized[neighbour] += given
	return resized
}

// unexported

func roundDiv(num, den int) int {
	return int(math.Round(float64(num) / float64(den)))
}
