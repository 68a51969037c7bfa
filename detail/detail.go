// Package detail shows every field of a single record.
package detail

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	nt "tableau/entity"
	"tableau/style"
)

const (
	chrome   = 4 // border and padding rows
	maxWidth = 80
)

// Panel holds the record view's display state
type Panel struct {
	names []string // field order, others follow sorted

	record nt.Record
	lines  []string // rendered record, cached

	palette style.Palette
	width   int
	height  int
	offset  int
}

// NewPanel creates a panel listing fields in the order of names.
func NewPanel(names []string, pal style.Palette) Panel {
	return Panel{
		names:   names,
		palette: pal,
	}
}

func (pnl Panel) Update(msg tea.Msg) (Panel, tea.Cmd) {

	switch msg := msg.(type) {

	case RecordMsg:
		pnl.record = msg.Record
		pnl.offset = 0
		pnl.lines = pnl.render()

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height
		pnl.offset = min(pnl.offset, pnl.maxOffset())

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			pnl.offset = max(pnl.offset-1, 0)
		case "down", "j":
			pnl.offset = min(pnl.offset+1, pnl.maxOffset())
		case "pgup", "ctrl+u":
			pnl.offset = max(pnl.offset-pnl.bodyHeight(), 0)
		case "pgdown", "ctrl+d":
			pnl.offset = min(pnl.offset+pnl.bodyHeight(), pnl.maxOffset())
		case "home", "g":
			pnl.offset = 0
		case "esc", "enter", "q":
			return pnl, func() tea.Msg { return CloseMsg{} }
		}
	}

	return pnl, nil
}

func (pnl Panel) View() tea.View {
	return tea.NewView(pnl.Layer())
}

// Layer renders the panel centered in its size.
func (pnl Panel) Layer() *lipgloss.Layer {

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(pnl.palette.Border)).
		Padding(1, 2).
		Render(pnl.Content())

	layer := lipgloss.NewLayer("detail", box)
	if pnl.width > 0 && pnl.height > 0 {
		layer = layer.
			X(max((pnl.width-lipgloss.Width(box))/2, 0)).
			Y(max((pnl.height-lipgloss.Height(box))/2, 0))
	}
	return layer
}

// Content returns the visible portion of the rendered record.
func (pnl Panel) Content() string {

	if pnl.lines == nil {
		return "No record"
	}

	lines := pnl.lines[pnl.offset:]
	if pnl.height > 0 {
		lines = lines[:min(len(lines), pnl.bodyHeight())]
	}

	width := pnl.bodyWidth()
	visible := make([]string, len(lines))
	for i, line := range lines {
		visible[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(visible, "\n")
}

// Offset returns the first line shown.
func (pnl Panel) Offset() int {
	return pnl.offset
}

// unexported

// render lays the record out as yaml, fields in panel order
func (pnl Panel) render() []string {

	data, err := marshal(pnl.record, pnl.order())
	if err != nil {
		return []string{pnl.palette.ErrorStyle().Render(err.Error())}
	}

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func (pnl Panel) order() []string {

	extra := []string{}
	for name := range pnl.record.Values {
		if !slices.Contains(pnl.names, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)

	return append(slices.Clone(pnl.names), extra...)
}

func (pnl Panel) bodyHeight() int {
	return max(pnl.height-chrome, 1)
}

func (pnl Panel) bodyWidth() int {

	if pnl.width == 0 {
		return maxWidth
	}
	return min(max(pnl.width-2*chrome, 1), maxWidth)
}

func (pnl Panel) maxOffset() int {

	if pnl.height == 0 {
		return max(len(pnl.lines)-1, 0)
	}
	return max(len(pnl.lines)-pnl.bodyHeight(), 0)
}

func marshal(rec nt.Record, names []string) (data []byte, err error) {

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		if !rec.Has(name) {
			continue
		}

		val := &yaml.Node{}
		err = val.Encode(rec.Get(name).Raw)
		if err != nil {
			err = errors.Wrapf(err, "failed to encode field %s", name)
			return
		}

		key := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		doc.Content = append(doc.Content, key, val)
	}

	data, err = yaml.Marshal(doc)
	err = errors.Wrapf(err, "failed to marshal record")
	return
}
