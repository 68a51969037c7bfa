// Package message holds messages passed between the table and its host.
package message

import (
	nt "tableau/entity"
)

// ErrorMsg contains an error
type ErrorMsg struct {
	Err error
}

// OpenFilterMsg signals to open the filter dialog seeded with a field and value
type OpenFilterMsg struct {
	Field string
	Value any
}

// SetFilterMsg signals to apply a filter to the table
type SetFilterMsg struct {
	Filter nt.Filter
}

// CloseFilterMsg signals the filter dialog is done
type CloseFilterMsg struct{}

// SaveMsg signals to save rows to the configured path
type SaveMsg struct{}
