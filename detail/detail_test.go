package detail

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "tableau/entity"
	"tableau/style"
)

func record() nt.Record {

	rec := nt.NewRecord(map[string]any{
		"id":     0,
		"name":   "rent",
		"amount": 30,
		"memo":   nil,
		"bank":   "first",
	})
	rec.Id = 0
	return rec
}

func TestContent(t *testing.T) {

	pnl := NewPanel([]string{"id", "name", "amount", "missing"}, style.DefaultPalette())
	assert.Equal(t, "No record", pnl.Content())

	pnl, cmd := pnl.Update(RecordMsg{Record: record()})
	assert.Nil(t, cmd)

	assert.Equal(t, strings.Join([]string{
		"id: 0",
		"name: rent",
		"amount: 30",
		"bank: first",
		"memo: null",
	}, "\n"), pnl.Content())
}

func TestScroll(t *testing.T) {

	pnl := NewPanel([]string{"id", "name", "amount"}, style.DefaultPalette())
	pnl, _ = pnl.Update(RecordMsg{Record: record()})
	pnl, _ = pnl.Update(SizeMsg{Width: 40, Height: chrome + 2})

	assert.Equal(t, "id: 0\nname: rent", pnl.Content())

	down := tea.KeyPressMsg{Code: 'j', Text: "j"}
	for range 5 {
		pnl, _ = pnl.Update(down)
	}
	assert.Equal(t, 3, pnl.Offset())
	assert.Equal(t, "bank: first\nmemo: null", pnl.Content())

	pnl, _ = pnl.Update(tea.KeyPressMsg{Code: tea.KeyPgUp})
	assert.Equal(t, 1, pnl.Offset())

	pnl, _ = pnl.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	assert.Equal(t, 0, pnl.Offset())

	pnl, _ = pnl.Update(RecordMsg{Record: record()})
	assert.Equal(t, 0, pnl.Offset())
}

func TestTruncate(t *testing.T) {

	rec := nt.NewRecord(map[string]any{"memo": strings.Repeat("x", 60)})

	pnl := NewPanel(nil, style.DefaultPalette())
	pnl, _ = pnl.Update(SizeMsg{Width: 40, Height: 20})
	pnl, _ = pnl.Update(RecordMsg{Record: rec})

	content := pnl.Content()
	assert.Equal(t, 40-2*chrome, lipgloss.Width(content))
	assert.True(t, strings.HasSuffix(content, "…"))
}

func TestClose(t *testing.T) {

	pnl := NewPanel(nil, style.DefaultPalette())

	for _, key := range []tea.KeyPressMsg{
		{Code: tea.KeyEscape},
		{Code: tea.KeyEnter},
		{Code: 'q', Text: "q"},
	} {
		_, cmd := pnl.Update(key)
		require.NotNil(t, cmd)
		assert.Equal(t, CloseMsg{}, cmd())
	}
}
