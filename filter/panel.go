package filter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	nt "tableau/entity"
	"tableau/message"
	"tableau/style"
)

// Panel displays a modal dialog for editing filters
type Panel struct {
	filters       []nt.Filter
	fields        []string
	selected      int       // Which filter is selected
	selectedField fieldType // Which field within row is selected

	palette style.Palette
	width   int
	height  int

	ctx    context.Context
	logger nt.Logger
}

type fieldType int

const (
	fieldEnabled fieldType = iota
	fieldDelete
	fieldName
	fieldOperator
	fieldValue
)

var opNames = map[nt.FilterOp]string{
	nt.Eq:       "==",
	nt.Ne:       "!=",
	nt.Gt:       ">",
	nt.Gte:      ">=",
	nt.Lt:       "<",
	nt.Lte:      "<=",
	nt.Contains: "contains",
	nt.Match:    "matches",
	nt.Similar:  "like",
}

var opList = []nt.FilterOp{
	nt.Eq,
	nt.Ne,
	nt.Contains,
	nt.Match,
	nt.Similar,
	nt.Gt,
	nt.Gte,
	nt.Lt,
	nt.Lte,
}

// NewPanel creates a dialog editing filters over fields.
func NewPanel(ctx context.Context, fields []string, filters []nt.Filter, pal style.Palette, lgr nt.Logger) Panel {
	return Panel{
		filters:       slices.Clone(filters),
		fields:        fields,
		selectedField: fieldEnabled,
		palette:       pal,
		ctx:           ctx,
		logger:        lgr,
	}
}

// Filters returns the filters being edited.
func (pnl Panel) Filters() []nt.Filter {
	return slices.Clone(pnl.filters)
}

func (pnl Panel) Init() tea.Cmd {
	return nil
}

func (pnl Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case message.OpenFilterMsg: // invoked, not routed msg
		pnl.filters = append(pnl.filters, nt.Filter{
			Op:      nt.Eq,
			Field:   msg.Field,
			Value:   nt.NewValue(msg.Value).String(),
			Enabled: true,
		})
		pnl.selected = len(pnl.filters) - 1
		pnl.selectedField = fieldValue

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height

	case tea.KeyPressMsg:
		return pnl.handleKey(msg)
	}

	return pnl, nil
}

func (pnl Panel) View() tea.View {
	return tea.NewView(pnl.Layer())
}

// Layer renders the dialog centered in the panel's size.
func (pnl Panel) Layer() *lipgloss.Layer {
	var content strings.Builder

	hl := lipgloss.NewStyle().Background(lipgloss.Color(pal(pnl.palette).Cell))
	mark := func(field fieldType, row bool, text string) string {
		if row && pnl.selectedField == field {
			return hl.Render(text)
		}
		return text
	}

	if len(pnl.filters) == 0 {
		content.WriteString("No filters, press a to add one\n")
	} else {
		content.WriteString("Filters:\n")
	}

	for i, f := range pnl.filters {
		row := i == pnl.selected

		enabled := " "
		if f.Enabled {
			enabled = "x"
		}
		prefix := "  "
		if row {
			prefix = "> "
		}

		fmt.Fprintf(&content, "%s%s %s %s %s %s\n",
			prefix,
			mark(fieldEnabled, row, "["+enabled+"]"),
			mark(fieldDelete, row, "[del]"),
			mark(fieldName, row, f.Field),
			mark(fieldOperator, row, opNames[f.Op]),
			mark(fieldValue, row, fmt.Sprintf("%v", f.Value)),
		)
	}

	var helpText string
	switch pnl.selectedField {
	case fieldEnabled:
		helpText = "t: toggle  Tab: next field  ↑↓: change row  a: add  p: apply  Esc: cancel"
	case fieldDelete:
		helpText = "d: delete  Tab: next field  ↑↓: change row  p: apply  Esc: cancel"
	case fieldName, fieldOperator:
		helpText = "←→: change  Tab: next field  ↑↓: change row  p: apply  Esc: cancel"
	case fieldValue:
		helpText = "type to edit  Tab: next field  ↑↓: change row  Enter: apply  Esc: cancel"
	}
	content.WriteString("\n" + pal(pnl.palette).MutedStyle().Render(helpText))

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(pal(pnl.palette).Border)).
		Padding(1, 2).
		Width(60).
		Render(content.String())

	layer := lipgloss.NewLayer("filter", dialog)
	if pnl.width > 0 && pnl.height > 0 {
		vPad := max((pnl.height-lipgloss.Height(dialog))/2, 0)
		hPad := max((pnl.width-lipgloss.Width(dialog))/2, 0)
		layer = layer.X(hPad).Y(vPad)
	}
	return layer
}

// unexported

func (pnl Panel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	key := msg.String()
	if pnl.selectedField == fieldValue && pnl.editValue(msg) {
		return pnl, nil
	}

	switch key {
	case "esc":
		return pnl, func() tea.Msg { return message.CloseFilterMsg{} }

	case "p", "enter":
		return pnl, tea.Batch(
			message.SetFilterCmd(Combine(pnl.filters)),
			func() tea.Msg { return message.CloseFilterMsg{} },
		)

	case "a":
		field := ""
		if len(pnl.fields) > 0 {
			field = pnl.fields[0]
		}
		pnl.filters = append(pnl.filters, nt.Filter{Op: nt.Eq, Field: field, Enabled: true})
		pnl.selected = len(pnl.filters) - 1
		pnl.selectedField = fieldName

	case "tab":
		pnl.selectedField = (pnl.selectedField + 1) % (fieldValue + 1)

	case "shift+tab":
		pnl.selectedField = (pnl.selectedField + fieldValue) % (fieldValue + 1)

	case "left":
		pnl.cycle(-1)

	case "right":
		pnl.cycle(1)

	case "up":
		if pnl.selected > 0 {
			pnl.selected--
			pnl.selectedField = fieldEnabled
		}

	case "down":
		if pnl.selected < len(pnl.filters)-1 {
			pnl.selected++
			pnl.selectedField = fieldEnabled
		}

	case "d":
		if pnl.selectedField == fieldDelete && pnl.valid() {
			pnl.filters = slices.Delete(pnl.filters, pnl.selected, pnl.selected+1)
			pnl.selected = min(pnl.selected, len(pnl.filters)-1)
			pnl.selected = max(pnl.selected, 0)
		}

	case "t":
		if pnl.selectedField == fieldEnabled && pnl.valid() {
			pnl.filters[pnl.selected].Enabled = !pnl.filters[pnl.selected].Enabled
		}
	}

	return pnl, nil
}

// editValue handles typing into the value field, reporting whether the key was used.
func (pnl *Panel) editValue(msg tea.KeyPressMsg) bool {

	if !pnl.valid() {
		return false
	}
	f := &pnl.filters[pnl.selected]
	text := fmt.Sprintf("%v", f.Value)
	if f.Value == nil {
		text = ""
	}

	switch msg.String() {
	case "enter", "esc", "tab", "shift+tab", "up", "down", "left", "right":
		return false
	}

	switch {
	case msg.String() == "backspace":
		runes := []rune(text)
		if len(runes) > 0 {
			f.Value = string(runes[:len(runes)-1])
		}
		return true
	case msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0:
		f.Value = text + msg.Text
		return true
	}
	return false
}

func (pnl *Panel) cycle(step int) {

	if !pnl.valid() {
		return
	}
	f := &pnl.filters[pnl.selected]

	switch pnl.selectedField {
	case fieldOperator:
		idx := slices.Index(opList, f.Op)
		f.Op = opList[(idx+step+len(opList))%len(opList)]
	case fieldName:
		if len(pnl.fields) == 0 {
			return
		}
		idx := slices.Index(pnl.fields, f.Field)
		f.Field = pnl.fields[(idx+step+len(pnl.fields))%len(pnl.fields)]
	}
}

func (pnl Panel) valid() bool {
	return pnl.selected >= 0 && pnl.selected < len(pnl.filters)
}

// help

func pal(p style.Palette) style.Palette {
	return p.Merge(style.DefaultPalette())
}
