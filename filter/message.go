package filter

// PanelMsg is handled by the panel itself rather than routed to the host.
type PanelMsg interface {
	isPanelMsg()
}

func (SizeMsg) isPanelMsg() {}

// SizeMsg gives the area the dialog is centered in.
type SizeMsg struct {
	Width  int
	Height int
}
