// Package pager loads rows from an external source a page at a time.
package pager

import (
	"context"

	nt "tableau/entity"
)

// Source is the external provider of rows.
type Source interface {
	// Query returns up to limit rows from offset, all rows when limit is zero.
	Query(offset, limit int, sort *nt.Sort) ([]nt.Record, error)
	// RowCount returns the total number of rows, when known.
	RowCount() (count int, known bool, err error)
}

// Sink receives loaded rows.
type Sink interface {
	Len() int
	Merge(recs []nt.Record) ([]nt.RowId, error)
	Replace(recs []nt.Record) ([]nt.RowId, error)
	Clear()
}

// Mode selects how fetched pages are kept.
type Mode string

const (
	// Accumulate merges each page into rows already loaded.
	Accumulate Mode = "accumulate"
	// Windowed keeps only the most recently fetched page.
	Windowed Mode = "windowed"
)

// State is the coordinator's position in a load.
type State int

const (
	Idle State = iota
	Loading
)

// Config is configurable options for paging.
type Config struct {
	Limit int  `yaml:"limit"`
	Mode  Mode `yaml:"mode"`
}

// Coordinator drives paged queries against a source.
type Coordinator struct {
	limit     int
	mode      Mode
	page      int
	state     State
	sort      *nt.Sort
	exhausted bool

	source Source
	sink   Sink

	ctx    context.Context
	logger nt.Logger
}

// New creates a coordinator loading from src into sink.
func (cfg *Config) New(ctx context.Context, src Source, sink Sink, lgr nt.Logger) *Coordinator {

	mode := cfg.Mode
	if mode == "" {
		mode = Accumulate
	}

	return &Coordinator{
		limit:  max(cfg.Limit, 0),
		mode:   mode,
		source: src,
		sink:   sink,
		ctx:    ctx,
		logger: lgr,
	}
}

// Limit returns the page size, zero when unpaged.
func (crd *Coordinator) Limit() int {
	return crd.limit
}

// Mode returns how pages are kept.
func (crd *Coordinator) Mode() Mode {
	return crd.mode
}

// Page returns the number of the next page to fetch.
func (crd *Coordinator) Page() int {
	return crd.page
}

// State returns Loading while a query is in flight.
func (crd *Coordinator) State() State {
	return crd.state
}

// Paged reports whether rows are loaded incrementally.
func (crd *Coordinator) Paged() bool {
	return crd.source != nil && crd.limit > 0
}

// SetSort sets the sort passed to the source, nil for none.
func (crd *Coordinator) SetSort(sort *nt.Sort) {
	crd.sort = sort
}

// LoadMore fetches the page after those loaded.
// It returns false without querying while a load is in flight, when
// position is past the loaded rows, or when every row is loaded.
func (crd *Coordinator) LoadMore(position int) (loaded bool, err error) {

	if crd.state == Loading || crd.source == nil || crd.exhausted {
		return
	}

	size := crd.sink.Len()
	if position > size {
		return
	}

	if crd.limit == 0 {
		if crd.page > 0 {
			return
		}
		err = crd.fetch(0, 0)
		loaded = err == nil
		return
	}

	if crd.mode == Accumulate {
		crd.page = size / crd.limit
	}
	offset := crd.page * crd.limit

	count, known, err := crd.rowCount(offset)
	if err != nil {
		return
	}
	if known && (size >= count || offset >= count) {
		return
	}

	err = crd.fetch(offset, crd.limit)
	loaded = err == nil
	return
}

// LoadPrevious fetches the page before the current window.
// Only windowed coordinators go back.
func (crd *Coordinator) LoadPrevious() (loaded bool, err error) {

	if crd.state == Loading || crd.mode != Windowed || crd.limit == 0 || crd.page < 2 {
		return
	}

	crd.exhausted = false
	crd.page -= 2
	err = crd.fetch(crd.page*crd.limit, crd.limit)
	if err != nil {
		crd.page += 2
		return
	}
	loaded = true
	return
}

// LoadAll fetches pages until every row is loaded.
func (crd *Coordinator) LoadAll() (err error) {

	if crd.mode == Windowed {
		return
	}

	for {
		size := crd.sink.Len()

		var loaded bool
		loaded, err = crd.LoadMore(size)
		if err != nil || !loaded || crd.sink.Len() == size {
			return
		}
	}
}

// Requery refetches the page holding offset.
func (crd *Coordinator) Requery(offset int) (err error) {

	if crd.state == Loading || crd.source == nil {
		return
	}

	limit := crd.limit
	if limit > 0 {
		crd.page = offset / limit
		offset = crd.page * limit
	} else {
		offset = 0
	}

	err = crd.fetch(offset, limit)
	return
}

// Reload refetches, from the start, at least the rows already loaded.
func (crd *Coordinator) Reload() (err error) {

	if crd.state == Loading || crd.source == nil {
		return
	}
	if crd.limit == 0 || crd.mode == Windowed {
		return crd.Requery(max(crd.page-1, 0) * crd.limit)
	}

	pages := max((crd.sink.Len()+crd.limit-1)/crd.limit, 1)
	crd.page = 0
	crd.exhausted = false
	err = crd.fetch(0, pages*crd.limit)
	return
}

// Reset drops loaded rows and fetches the first page.
// Without a source, rows are left alone.
func (crd *Coordinator) Reset() (err error) {

	if crd.state == Loading || crd.source == nil {
		return
	}

	crd.sink.Clear()
	crd.page = 0
	crd.exhausted = false

	_, err = crd.LoadMore(0)
	return
}

// unexported

func (crd *Coordinator) rowCount(offset int) (count int, known bool, err error) {

	count, known, err = crd.source.RowCount()
	if err != nil {
		err = nt.QuerySourceError{Offset: offset, Limit: crd.limit, Err: err}
		crd.logger.Error(crd.ctx, "failed to count rows", err)
	}
	return
}

// fetch queries one page and hands it to the sink, returning to idle either way.
func (crd *Coordinator) fetch(offset, limit int) (err error) {

	crd.state = Loading
	defer func() { crd.state = Idle }()

	crd.logger.Info(crd.ctx, "querying rows", "offset", offset, "limit", limit)

	recs, err := crd.source.Query(offset, limit, crd.sort)
	if err != nil {
		err = nt.QuerySourceError{Offset: offset, Limit: limit, Err: err}
		crd.logger.Error(crd.ctx, "failed to query rows", err)
		return
	}

	if crd.mode == Windowed {
		_, err = crd.sink.Replace(recs)
	} else {
		_, err = crd.sink.Merge(recs)
	}
	if err != nil {
		return
	}

	if limit > 0 {
		crd.page = offset/crd.limit + max(limit/crd.limit, 1)
	} else {
		crd.page = 1
	}
	crd.exhausted = limit == 0 || len(recs) < limit
	return
}
