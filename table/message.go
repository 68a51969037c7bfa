package table

import nt "tableau/entity"

type TableMsg interface {
	isTableMsg()
}

func (SizeMsg) isTableMsg()         {}
func (ResetMsg) isTableMsg()        {}
func (SelectMsg) isTableMsg()       {}
func (RefreshMsg) isTableMsg()      {}
func (FocusMsg) isTableMsg()        {}
func (BlurMsg) isTableMsg()         {}
func (DragStartMsg) isTableMsg()    {}
func (DragContinueMsg) isTableMsg() {}
func (DragStopMsg) isTableMsg()     {}

// SizeMsg places the table on screen
type SizeMsg struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// ResetMsg signals to reload rows from the start
type ResetMsg struct {
	Sort bool // restore the initial sort too
}

// SelectMsg signals the focused row was activated
type SelectMsg struct {
	Position int
	Record   nt.Record
}

// RefreshMsg signals rows were reloaded
type RefreshMsg struct {
	Count int
}

// FocusMsg signals a row gained focus
type FocusMsg struct {
	Position int
}

// BlurMsg signals a row lost focus
type BlurMsg struct {
	Position int
}

// DragStartMsg signals a header drag began at x
type DragStartMsg struct {
	From int
}

// DragContinueMsg signals a header drag moved
type DragContinueMsg struct {
	From int
	To   int
}

// DragStopMsg signals a header drag ended
type DragStopMsg struct {
	From int
	To   int
}
