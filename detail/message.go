package detail

import nt "tableau/entity"

type DetailMsg interface {
	isDetailMsg()
}

func (SizeMsg) isDetailMsg()   {}
func (RecordMsg) isDetailMsg() {}
func (CloseMsg) isDetailMsg()  {}

type SizeMsg struct {
	Width  int
	Height int
}

// RecordMsg sets the record shown
type RecordMsg struct {
	Record nt.Record
}

// CloseMsg signals the panel is done
type CloseMsg struct{}
