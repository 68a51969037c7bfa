package tableau

import (
	tea "charm.land/bubbletea/v2"

	"tableau/message"
	"tableau/table"
)

// resetCmd reloads the table from the start
func resetCmd(sort bool) tea.Cmd {
	return func() tea.Msg {
		return table.ResetMsg{Sort: sort}
	}
}

// saveCmd saves rows to the layout's save path
func saveCmd() tea.Cmd {
	return func() tea.Msg {
		return message.SaveMsg{}
	}
}
