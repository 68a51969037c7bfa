package tableau

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	nt "tableau/entity"
	"tableau/style"
)

// RenderFooter renders a footer with metadata about the table.
func RenderFooter(current, total int, sort *nt.Sort, name string, width int, pal style.Palette) string {

	left := fmt.Sprintf("%d/%d", current, total)
	if sort != nil {
		dir := "asc"
		if sort.Desc {
			dir = "desc"
		}
		left += fmt.Sprintf("  by %s %s", sort.Field, dir)
	}
	right := name

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return pal.MutedStyle().Render(left + strings.Repeat(" ", padding) + right)
}
