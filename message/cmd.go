package message

import (
	tea "charm.land/bubbletea/v2"

	nt "tableau/entity"
)

// ErrorCmd returns a command reporting err, or nil when there is none
func ErrorCmd(err error) tea.Cmd {

	if err == nil {
		return nil
	}
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// SetFilterCmd returns a command to apply a filter
func SetFilterCmd(filter nt.Filter) tea.Cmd {
	return func() tea.Msg {
		return SetFilterMsg{Filter: filter}
	}
}
