package entity

import (
	"fmt"
	"strings"
)

// DuplicateRowIdError rejects an append whose ids collide.
type DuplicateRowIdError struct {
	Ids []RowId
}

func (err DuplicateRowIdError) Error() string {

	ids := make([]string, len(err.Ids))
	for i, id := range err.Ids {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("duplicate row ids: %s", strings.Join(ids, ","))
}

// InvalidColumnError rejects an unknown column name or index.
type InvalidColumnError struct {
	Ref any
}

func (err InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column: %v", err.Ref)
}

// RowNotFoundError rejects an operation on an unknown row id.
type RowNotFoundError struct {
	Id RowId
}

func (err RowNotFoundError) Error() string {
	return fmt.Sprintf("row not found: %d", err.Id)
}

// QuerySourceError wraps a failure of the external row source.
type QuerySourceError struct {
	Offset int
	Limit  int
	Err    error
}

func (err QuerySourceError) Error() string {
	return fmt.Sprintf("query offset %d limit %d failed: %v", err.Offset, err.Limit, err.Err)
}

func (err QuerySourceError) Cause() error  { return err.Err }
func (err QuerySourceError) Unwrap() error { return err.Err }
