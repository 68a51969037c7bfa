package tableau

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/pkg/errors"

	nt "tableau/entity"
	"tableau/detail"
	"tableau/filter"
	"tableau/message"
	"tableau/pager"
	"tableau/style"
	"tableau/table"
)

const (
	footerHeight = 2
)

// Model is the bubbletea model hosting a table.
type Model struct {
	Table  *table.Table
	Filter filter.Panel
	Detail detail.Panel

	layout    *Layout
	source    pager.Source
	filters   []nt.Filter
	filtering bool
	detailing bool
	palette   style.Palette

	errorString string
	width       int
	height      int

	ctx    context.Context
	logger nt.Logger
}

// NewModel creates a host for rows from src laid out per layout.
// Offered columns not in the layout are added hidden.
func NewModel(ctx context.Context, layout *Layout, offered []nt.Column, src pager.Source, lgr nt.Logger) (model Model, err error) {

	filterer, pushdown := src.(Filterer)
	if pushdown && !layout.Filter.IsZero() {
		err = filterer.SetFilter(layout.Filter)
		if err != nil {
			err = errors.Wrapf(err, "failed to set filter on source")
			return
		}
	}

	tbl, err := layout.Table.New(ctx, layout.columns(offered), src, lgr)
	if err != nil {
		return
	}

	if !pushdown && !layout.Filter.IsZero() {
		err = tbl.ApplyFilter(layout.Filter)
		if err != nil {
			return
		}
	}

	palette := layout.Table.Palette.Merge(style.DefaultPalette())
	model = Model{
		Table:   tbl,
		Filter:  filter.NewPanel(ctx, tbl.Columns().Names(), nil, palette, lgr),
		Detail:  detail.NewPanel(append([]string{tbl.Store().IndexColumn()}, tbl.Columns().Names()...), palette),
		layout:  layout,
		source:  src,
		filters: filters(layout.Filter),
		palette: palette,
		ctx:     ctx,
		logger:  lgr,
	}
	return
}

func (m Model) Init() tea.Cmd {
	return m.Table.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		pnl, _ := m.Filter.Update(filter.SizeMsg{Width: msg.Width, Height: msg.Height})
		m.Filter = pnl.(filter.Panel)
		m.Detail, _ = m.Detail.Update(detail.SizeMsg{Width: msg.Width, Height: msg.Height})

		_, cmd := m.Table.Update(table.SizeMsg{
			Width:  msg.Width,
			Height: msg.Height - footerHeight,
		})
		return m, cmd

	case message.ErrorMsg:
		m.logger.Error(m.ctx, "error msg", msg.Err)
		m.errorString = msg.Err.Error()
		return m, nil

	case message.OpenFilterMsg:
		m = m.openFilter()
		pnl, cmd := m.Filter.Update(msg)
		m.Filter = pnl.(filter.Panel)
		return m, cmd

	case message.SetFilterMsg:
		err := m.applyFilter(msg.Filter)
		return m, message.ErrorCmd(err)

	case message.CloseFilterMsg:
		m.filtering = false
		return m, nil

	case message.SaveMsg:
		return m, message.ErrorCmd(m.save())

	case table.SelectMsg:
		m.logger.Info(m.ctx, "selected row", "position", msg.Position, "id", msg.Record.Id)
		if msg.Record.Details.Disabled {
			return m, nil
		}

		m.detailing = true
		m.Detail, _ = m.Detail.Update(detail.RecordMsg{Record: msg.Record})
		return m, nil

	case detail.CloseMsg:
		m.detailing = false
		return m, nil

	case tea.KeyPressMsg:
		m.errorString = ""

		if m.filtering {
			pnl, cmd := m.Filter.Update(msg)
			m.Filter = pnl.(filter.Panel)
			return m, cmd
		}
		if m.detailing {
			var cmd tea.Cmd
			m.Detail, cmd = m.Detail.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			m = m.openFilter()
			return m, nil

		case "c":
			err := m.applyFilter(nt.Filter{})
			return m, message.ErrorCmd(err)

		case "r":
			return m, resetCmd(true)

		case "ctrl+s":
			return m, saveCmd()

		case "w":
			err := m.writeLayout()
			return m, message.ErrorCmd(err)
		}
	}

	_, cmd := m.Table.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {

	if m.width == 0 {
		return tea.NewView("Loading...")
	}

	tableLayer := lipgloss.NewLayer("table", m.Table.Render())

	footerContent := RenderFooter(
		m.Table.FocusPosition()+1, m.Table.Len(), m.Table.SortState(), m.name(), m.width, m.palette)
	if m.errorString != "" {
		footerContent = m.palette.ErrorStyle().Render(m.errorString)
	}
	footerLayer := lipgloss.NewLayer("footer", footerContent).Y(m.height - footerHeight + 1)

	canvas := lipgloss.NewCanvas(m.width, m.height)
	canvas.Compose(tableLayer)
	canvas.Compose(footerLayer)

	switch {
	case m.filtering:
		canvas.Compose(m.Filter.Layer())
	case m.detailing:
		canvas.Compose(m.Detail.Layer())
	}

	view := tea.NewView(canvas)
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	return view
}

// Filtering reports whether the filter dialog is open.
func (m Model) Filtering() bool {
	return m.filtering
}

// Detailing reports whether a record is open in the detail panel.
func (m Model) Detailing() bool {
	return m.detailing
}

// unexported

func (m Model) openFilter() Model {

	m.filtering = true
	m.Filter = filter.NewPanel(m.ctx, m.Table.Columns().Names(), m.filters, m.palette, m.logger)

	pnl, _ := m.Filter.Update(filter.SizeMsg{Width: m.width, Height: m.height})
	m.Filter = pnl.(filter.Panel)
	return m
}

// applyFilter pushes the filter to the source when it can take it and
// otherwise filters loaded rows.
func (m *Model) applyFilter(f nt.Filter) (err error) {

	m.filters = filters(f)

	filterer, ok := m.source.(Filterer)
	if !ok {
		err = m.Table.ApplyFilter(f)
		return
	}

	err = filterer.SetFilter(f)
	if err != nil {
		return
	}
	err = m.Table.Reset(false)
	return
}

func (m Model) save() (err error) {

	if m.layout.SavePath == "" {
		err = errors.Errorf("no save path in layout")
		return
	}

	err = m.Table.Store().SaveFile(m.layout.SavePath)
	if err != nil {
		return
	}

	m.logger.Info(m.ctx, "saved rows", "path", m.layout.SavePath, "count", m.Table.Total())
	return
}

// writeLayout saves the columns and filters as they are now over the layout file.
func (m Model) writeLayout() (err error) {

	layout := m.layout.snapshot(m.Table.Columns().DataColumns(), m.filters)
	err = layout.Write()
	if err != nil {
		return
	}

	m.logger.Info(m.ctx, "wrote layout", "path", layout.Path)
	return
}

func (m Model) name() string {

	namer, ok := m.source.(Namer)
	if !ok {
		return ""
	}
	return namer.Name()
}
