package table

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"tableau/render"
	"tableau/sorter"
	"tableau/viewport"
)

const (
	headerHeight = 2
	wheelRatio   = 0.5
	detailIndent = "  "

	scrollTrack = "│"
	scrollThumb = "┃"
	sortUp      = "▲"
	sortDown    = "▼"
)

// drag tracks a header press until release.
type drag struct {
	hit    viewport.Hit
	start  int
	last   int
	widths []int
	moved  bool
}

func (tbl *Table) Init() tea.Cmd {
	return func() tea.Msg {
		return ResetMsg{}
	}
}

func (tbl *Table) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	var cmd tea.Cmd
	switch msg := msg.(type) {

	case SizeMsg:
		tbl.left = msg.Left
		tbl.top = msg.Top
		tbl.view.SetSize(msg.Width, msg.Height-headerHeight, len(tbl.visible))
		tbl.relayout()

	case ResetMsg:
		err := tbl.Reset(msg.Sort)
		cmd = tbl.refreshCmd(err)

	case tea.KeyPressMsg:
		_, cmd = tbl.HandleKey(msg)

	case tea.MouseMsg:
		_, cmd = tbl.HandleMouse(msg)

	default:
		return tbl, nil
	}

	return tbl, tea.Batch(cmd, tbl.autoLoad())
}

func (tbl *Table) View() tea.View {
	return tea.NewView(tbl.Render())
}

// Render draws the header and the rows in the window.
func (tbl *Table) Render() string {

	cols := tbl.columns.VisibleColumns()
	widths := tbl.cache.Widths()

	headers := make([]string, len(cols))
	for i, col := range cols {
		width := col.Width
		if i < len(widths) {
			width = widths[i]
		}
		headers[i] = render.Fit(tbl.title(col.Field, col.Title(), col.IsDivider()), width)
	}

	start, end := tbl.view.Window(len(tbl.visible))
	lgt := table.New().Headers(headers...)

	drawn := []int{}
	for position := start; position < end; position++ {
		cells, err := tbl.cache.Row(tbl.visible[position])
		if err != nil {
			tbl.logger.Error(tbl.ctx, "failed to render row", err, "position", position)
			continue
		}
		lgt.Row(cells...)
		drawn = append(drawn, position)
	}

	lgt.StyleFunc(tbl.palette.CellStyler(tbl.view.Focus()-start, tbl.focusCell()))
	tbl.palette.StyleTable(lgt)

	lines := tbl.expand(strings.Split(lgt.Render(), "\n"), drawn)
	switch {
	case tbl.err != nil:
		lines = append(lines, tbl.palette.ErrorStyle().Render(tbl.err.Error()))
	case len(tbl.visible) == 0 && tbl.cfg.EmptyMessage != "":
		lines = append(lines, tbl.palette.MutedStyle().Render(tbl.cfg.EmptyMessage))
	}

	if tbl.cfg.Scrollbar {
		lines = tbl.scrollbar(lines)
	}
	return strings.Join(lines, "\n")
}

// HandleKey moves focus, sorts or opens the filter, reporting whether the key was used.
func (tbl *Table) HandleKey(msg tea.KeyPressMsg) (handled bool, cmd tea.Cmd) {

	before := tbl.view.Focus()
	count := len(tbl.visible)
	handled = true

	first := before == 0
	last := before == count-1

	switch msg.String() {
	case "up", "k":
		if first && tbl.windowed() {
			cmd = tbl.turnPage(tbl.LoadPrevious)
			break
		}
		tbl.view.ScrollBy(-1, count)

	case "down", "j":
		if last && tbl.windowed() {
			cmd = tbl.turnPage(tbl.LoadMore)
			break
		}
		if last && tbl.pager.Paged() {
			_, err := tbl.LoadMore()
			if err != nil {
				cmd = tbl.refreshCmd(err)
				return
			}
		}
		tbl.view.ScrollBy(1, len(tbl.visible))

	case "pgup", "ctrl+u":
		if first && tbl.windowed() {
			cmd = tbl.turnPage(tbl.LoadPrevious)
			break
		}
		tbl.view.PageUp(count)

	case "pgdown", "ctrl+d":
		if last && tbl.windowed() {
			cmd = tbl.turnPage(tbl.LoadMore)
			break
		}
		tbl.view.PageDown(count)

	case "home", "g":
		tbl.view.Home(count)

	case "end", "G":
		tbl.view.End(count)

	case "left", "h":
		tbl.moveFocusColumn(-1)

	case "right", "l":
		tbl.moveFocusColumn(1)

	case "<":
		cmd = tbl.errorCmd(tbl.CycleSortColumn(-1))

	case ">":
		cmd = tbl.errorCmd(tbl.CycleSortColumn(1))

	case "enter":
		cmd = tbl.selectCmd()
		return

	case "space", " ":
		if count > 0 {
			_, err := tbl.ToggleDetails(before)
			cmd = tbl.errorCmd(err)
		}
		return

	case "f":
		cmd = tbl.filterCmd()
		return

	default:
		handled = false
		return
	}

	cmd = tea.Batch(cmd, tbl.focusCmds(before))
	return
}

// HandleMouse resizes or sorts from the header and focuses or scrolls the body.
func (tbl *Table) HandleMouse(msg tea.MouseMsg) (handled bool, cmd tea.Cmd) {

	mouse := msg.Mouse()
	x := mouse.X - tbl.left
	y := mouse.Y - tbl.top
	before := tbl.view.Focus()

	switch msg := msg.(type) {

	case tea.MouseClickMsg:
		if mouse.Button != tea.MouseLeft {
			return
		}
		if y == 0 {
			return tbl.pressHeader(x)
		}
		if y >= headerHeight {
			handled = true
			tbl.view.SetFocus(tbl.bodyPosition(y-headerHeight), len(tbl.visible))
			cmd = tbl.focusCmds(before)
		}

	case tea.MouseMotionMsg:
		if tbl.drag == nil {
			return
		}
		return tbl.dragHeader(x)

	case tea.MouseReleaseMsg:
		if tbl.drag == nil {
			return
		}
		return tbl.releaseHeader(x)

	case tea.MouseWheelMsg:
		step := max(int(float64(tbl.view.Height())*wheelRatio), 1)
		switch msg.Button {
		case tea.MouseWheelUp:
			step = -step
		case tea.MouseWheelDown:
		default:
			return
		}
		handled = true
		tbl.view.ScrollBy(step, len(tbl.visible))
		cmd = tbl.focusCmds(before)
	}
	return
}

// unexported

func (tbl *Table) pressHeader(x int) (handled bool, cmd tea.Cmd) {

	widths := tbl.cache.Widths()
	hit, ok := viewport.HitTest(widths, tbl.dividers(), x)
	if !ok {
		return
	}

	tbl.drag = &drag{
		hit:    hit,
		start:  x,
		last:   x,
		widths: tbl.dataWidths(),
	}
	handled = true
	cmd = func() tea.Msg {
		return DragStartMsg{From: x}
	}
	return
}

func (tbl *Table) dragHeader(x int) (handled bool, cmd tea.Cmd) {

	drg := tbl.drag
	if x == drg.last {
		return
	}
	drg.last = x
	drg.moved = true
	handled = true

	resized, ok := viewport.DragResize(drg.hit, drg.widths, tbl.minWidths(), drg.start, x)
	if ok {
		tbl.applyWidths(resized)
	}

	from := drg.start
	cmd = func() tea.Msg {
		return DragContinueMsg{From: from, To: x}
	}
	return
}

func (tbl *Table) releaseHeader(x int) (handled bool, cmd tea.Cmd) {

	drg := tbl.drag
	tbl.drag = nil
	handled = true

	from := drg.start
	stop := func() tea.Msg {
		return DragStopMsg{From: from, To: x}
	}

	if drg.moved || drg.hit.Divider {
		cmd = stop
		return
	}

	err := tbl.SortByColumn(sorter.Index(drg.hit.Data), nil, true)
	cmd = tea.Batch(stop, tbl.errorCmd(err))
	return
}

// applyWidths fixes data columns whose width differs from the layout.
func (tbl *Table) applyWidths(widths []int) {

	current := tbl.dataWidths()
	for i, col := range tbl.columns.VisibleDataColumns() {
		if i >= len(widths) || i >= len(current) || widths[i] == current[i] {
			continue
		}
		err := tbl.columns.Resize(col.Field, widths[i])
		if err != nil {
			tbl.logger.Error(tbl.ctx, "failed to resize column", err, "column", col.Field)
		}
	}
	tbl.relayout()
}

func (tbl *Table) moveFocusColumn(step int) {

	count := len(tbl.columns.VisibleNames())
	if count == 0 {
		return
	}

	tbl.focusColumn = min(max(tbl.focusColumn+step, 0), count-1)
	tbl.store.SetFocusColumn(tbl.focusColumn)
}

// turnPage moves a windowed table to another page, signalling a refresh when it did.
func (tbl *Table) turnPage(load func() (bool, error)) tea.Cmd {

	loaded, err := load()
	if !loaded && err == nil {
		return nil
	}
	return tbl.refreshCmd(err)
}

// autoLoad fetches the next page once the last row is in view.
// Windowed tables only change page from the keyboard.
// After a failed load it waits for a refresh.
func (tbl *Table) autoLoad() tea.Cmd {

	if tbl.err != nil || !tbl.pager.Paged() || tbl.windowed() || !tbl.view.BottomVisible(len(tbl.visible)) {
		return nil
	}

	loaded, err := tbl.LoadMore()
	if !loaded && err == nil {
		return nil
	}
	return tbl.refreshCmd(err)
}

// title adds the sort arrow to the sorted column's header.
func (tbl *Table) title(name, title string, divider bool) string {

	if divider || tbl.sort == nil || tbl.sort.Field != name {
		return title
	}
	if tbl.sort.Desc {
		return title + " " + sortDown
	}
	return title + " " + sortUp
}

// focusCell is the focused column's index among the columns drawn.
func (tbl *Table) focusCell() int {

	data := -1
	for i, col := range tbl.columns.VisibleColumns() {
		if col.IsDivider() {
			continue
		}
		data++
		if data == tbl.focusColumn {
			return i
		}
	}
	return -1
}

// expand inserts detail lines under open rows, trimming the body to the
// viewport height with the focused row and its details in view.
func (tbl *Table) expand(lines []string, drawn []int) []string {

	tbl.lineRows = nil
	if len(lines) < headerHeight {
		return lines
	}
	head, rows := lines[:headerHeight], lines[headerHeight:]

	width := lipgloss.Width(head[0])
	muted := tbl.palette.MutedStyle()
	focus := tbl.view.Focus()

	body := []string{}
	positions := []int{}
	focusFirst, focusLast := 0, 0
	for i, line := range rows {
		if i >= len(drawn) {
			body = append(body, line)
			continue
		}
		position := drawn[i]
		if position == focus {
			focusFirst = len(body)
		}
		body = append(body, line)
		positions = append(positions, position)

		for _, detail := range tbl.details(position) {
			body = append(body, muted.Render(render.Fit(detailIndent+detail, width)))
			positions = append(positions, position)
		}
		if position == focus {
			focusLast = len(body) - 1
		}
	}

	height := tbl.view.Height()
	if len(positions) > height {
		skip := min(max(focusLast-height+1, 0), focusFirst)
		body = body[skip:min(skip+height, len(body))]
		positions = positions[skip:min(skip+height, len(positions))]
	}

	tbl.lineRows = positions
	return append(slices.Clone(head), body...)
}

// bodyPosition is the row drawn at line of the body.
func (tbl *Table) bodyPosition(line int) int {

	if line < len(tbl.lineRows) {
		return tbl.lineRows[line]
	}
	return tbl.view.Origin() + line
}

func (tbl *Table) scrollbar(lines []string) []string {

	glyphs := tbl.view.ScrollbarColumn(len(tbl.visible), scrollTrack, scrollThumb)
	muted := tbl.palette.MutedStyle()

	for i := range lines {
		glyph := " "
		if body := i - headerHeight; body >= 0 && body < len(glyphs) {
			glyph = muted.Render(glyphs[body])
		}
		lines[i] += glyph
	}
	return lines
}

func (tbl *Table) dividers() []bool {

	cols := tbl.columns.VisibleColumns()
	dividers := make([]bool, len(cols))
	for i, col := range cols {
		dividers[i] = col.IsDivider()
	}
	return dividers
}

func (tbl *Table) dataWidths() []int {

	widths := tbl.cache.Widths()
	data := []int{}
	for i, col := range tbl.columns.VisibleColumns() {
		if col.IsDivider() {
			continue
		}
		width := col.Width
		if i < len(widths) {
			width = widths[i]
		}
		data = append(data, width)
	}
	return data
}

func (tbl *Table) minWidths() []int {

	mins := []int{}
	for _, col := range tbl.columns.VisibleDataColumns() {
		mins = append(mins, col.MinWidth)
	}
	return mins
}
