// Package tableau hosts an interactive table with a filter dialog and footer.
package tableau

import (
	nt "tableau/entity"
)

// Filterer is a source that narrows rows before they are paged in.
type Filterer interface {
	SetFilter(f nt.Filter) (err error)
}

// Namer is a source that can name where its rows come from.
type Namer interface {
	Name() string
}
