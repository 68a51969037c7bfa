package table

import (
	tea "charm.land/bubbletea/v2"

	"tableau/message"
)

func (tbl *Table) selectCmd() tea.Cmd {

	rec, ok := tbl.Selection()
	if !ok {
		return nil
	}

	position := tbl.view.Focus()
	return func() tea.Msg {
		return SelectMsg{
			Position: position,
			Record:   rec,
		}
	}
}

func (tbl *Table) filterCmd() tea.Cmd {

	rec, ok := tbl.Selection()
	names := tbl.columns.VisibleNames()
	if !ok || tbl.focusColumn < 0 || tbl.focusColumn >= len(names) {
		return nil
	}

	field := names[tbl.focusColumn]
	value := rec.Get(field)

	return func() tea.Msg {
		return message.OpenFilterMsg{
			Field: field,
			Value: value.Raw,
		}
	}
}

// focusCmds signals blur and focus when focus has moved from before.
func (tbl *Table) focusCmds(before int) tea.Cmd {

	after := tbl.view.Focus()
	if after == before {
		return nil
	}

	var cmds []tea.Cmd
	if before >= 0 {
		cmds = append(cmds, func() tea.Msg { return BlurMsg{Position: before} })
	}
	if after >= 0 {
		cmds = append(cmds, func() tea.Msg { return FocusMsg{Position: after} })
	}
	return tea.Batch(cmds...)
}

func (tbl *Table) refreshCmd(err error) tea.Cmd {

	if err != nil {
		return message.ErrorCmd(err)
	}

	count := len(tbl.visible)
	return func() tea.Msg {
		return RefreshMsg{Count: count}
	}
}

func (tbl *Table) errorCmd(err error) tea.Cmd {
	return message.ErrorCmd(err)
}
