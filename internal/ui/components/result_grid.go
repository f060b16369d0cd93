package components

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/ui/theme"
)

// ResultGrid displays a query result with a cell-level cursor and
// virtual scrolling.
type ResultGrid struct {
	Width  int
	Height int
	Theme  theme.Theme

	result *models.QueryResult
	pkCols map[string]bool

	// cursor
	Row int
	Col int

	topRow      int
	visibleRows int

	colWidths []int
}

// NewResultGrid creates an empty grid.
func NewResultGrid(th theme.Theme) *ResultGrid {
	return &ResultGrid{Theme: th}
}

// SetResult replaces the grid content and resets the cursor. defs marks
// primary key columns in the header.
func (g *ResultGrid) SetResult(result *models.QueryResult, defs []models.ColumnDefinition) {
	g.result = result
	g.Row = 0
	g.Col = 0
	g.topRow = 0
	g.pkCols = make(map[string]bool)
	for _, d := range defs {
		if d.IsPK {
			g.pkCols[d.Name] = true
		}
	}
	g.calcColumnWidths()
}

// Empty reports whether the grid has nothing to show.
func (g *ResultGrid) Empty() bool {
	return g.result == nil || len(g.result.Columns) == 0
}

// CurrentCell returns the cursor position and the column name under it.
func (g *ResultGrid) CurrentCell() (row int, column string, ok bool) {
	if g.Empty() || g.Row >= len(g.result.Rows) || g.Col >= len(g.result.Columns) {
		return 0, "", false
	}
	return g.Row, g.result.Columns[g.Col], true
}

// CurrentValue returns the raw value under the cursor.
func (g *ResultGrid) CurrentValue() (any, bool) {
	if g.Empty() || g.Row >= len(g.result.Rows) || g.Col >= len(g.result.Rows[g.Row]) {
		return nil, false
	}
	return g.result.Rows[g.Row][g.Col], true
}

// CopyCell writes the cell under the cursor to the system clipboard.
func (g *ResultGrid) CopyCell() error {
	v, ok := g.CurrentValue()
	if !ok {
		return nil
	}
	return clipboard.WriteAll(FormatCell(v))
}

// Move moves the cell cursor, clamped to the result bounds.
func (g *ResultGrid) Move(dRow, dCol int) {
	if g.Empty() {
		return
	}
	g.Row += dRow
	g.Col += dCol
	if g.Row < 0 {
		g.Row = 0
	}
	if g.Row >= len(g.result.Rows) {
		g.Row = len(g.result.Rows) - 1
	}
	if g.Row < 0 {
		g.Row = 0
	}
	if g.Col < 0 {
		g.Col = 0
	}
	if g.Col >= len(g.result.Columns) {
		g.Col = len(g.result.Columns) - 1
	}

	if g.Row < g.topRow {
		g.topRow = g.Row
	}
	if g.visibleRows > 0 && g.Row >= g.topRow+g.visibleRows {
		g.topRow = g.Row - g.visibleRows + 1
	}
}

// PageUp moves the cursor one page up.
func (g *ResultGrid) PageUp() { g.Move(-g.pageSize(), 0) }

// PageDown moves the cursor one page down.
func (g *ResultGrid) PageDown() { g.Move(g.pageSize(), 0) }

func (g *ResultGrid) pageSize() int {
	if g.visibleRows > 0 {
		return g.visibleRows
	}
	return 10
}

// View renders the grid.
func (g *ResultGrid) View() string {
	if g.result == nil {
		return lipgloss.NewStyle().Foreground(g.Theme.Metadata).Render("Run a query to see results")
	}
	if len(g.result.Columns) == 0 {
		msg := fmt.Sprintf("%s: %d row(s) affected", g.result.QueryType, g.result.AffectedRows)
		return lipgloss.NewStyle().Foreground(g.Theme.Success).Render(msg)
	}

	var b strings.Builder
	b.WriteString(g.renderHeader())
	b.WriteString("\n")
	b.WriteString(g.renderSeparator())
	b.WriteString("\n")

	g.visibleRows = g.Height - 3
	if g.visibleRows < 1 {
		g.visibleRows = 1
	}

	end := g.topRow + g.visibleRows
	if end > len(g.result.Rows) {
		end = len(g.result.Rows)
	}
	for i := g.topRow; i < end; i++ {
		b.WriteString(g.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString(g.renderStatus())
	return b.String()
}

func (g *ResultGrid) renderHeader() string {
	var parts []string
	for i, col := range g.result.Columns {
		label := col
		if g.pkCols[col] {
			label += " 🔑"
		}
		parts = append(parts, pad(label, g.colWidths[i]))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(g.Theme.TableHeader).
		Render(" " + strings.Join(parts, " │ ") + " ")
}

func (g *ResultGrid) renderSeparator() string {
	var parts []string
	for _, w := range g.colWidths {
		parts = append(parts, strings.Repeat("─", w))
	}
	return lipgloss.NewStyle().Foreground(g.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (g *ResultGrid) renderRow(idx int) string {
	row := g.result.Rows[idx]
	nullStyle := lipgloss.NewStyle().Foreground(g.Theme.Metadata).Italic(true)
	cellCursor := lipgloss.NewStyle().
		Background(g.Theme.TableRowSelected).
		Foreground(lipgloss.Color("15")).
		Bold(true)

	var parts []string
	for i := range g.result.Columns {
		var cell string
		if i < len(row) {
			cell = FormatCell(row[i])
		}
		text := pad(cell, g.colWidths[i])
		switch {
		case idx == g.Row && i == g.Col:
			text = cellCursor.Render(text)
		case i < len(row) && row[i] == nil:
			text = nullStyle.Render(text)
		}
		parts = append(parts, text)
	}

	line := " " + strings.Join(parts, " │ ") + " "
	if idx == g.Row {
		return lipgloss.NewStyle().Background(g.Theme.Selection).Render(line)
	}
	return line
}

func (g *ResultGrid) renderStatus() string {
	end := g.topRow + g.visibleRows
	if end > len(g.result.Rows) {
		end = len(g.result.Rows)
	}
	status := fmt.Sprintf(" %d-%d of %d rows", g.topRow+1, end, len(g.result.Rows))
	return lipgloss.NewStyle().Foreground(g.Theme.Metadata).Italic(true).Render(status)
}

func (g *ResultGrid) calcColumnWidths() {
	if g.result == nil || len(g.result.Columns) == 0 {
		g.colWidths = nil
		return
	}
	g.colWidths = make([]int, len(g.result.Columns))
	for i, col := range g.result.Columns {
		g.colWidths[i] = runewidth.StringWidth(col)
		if g.pkCols[col] {
			g.colWidths[i] += 3
		}
	}
	for _, row := range g.result.Rows {
		for i, cell := range row {
			if i >= len(g.colWidths) {
				break
			}
			if l := runewidth.StringWidth(FormatCell(cell)); l > g.colWidths[i] {
				g.colWidths[i] = l
			}
		}
	}
	for i := range g.colWidths {
		if g.colWidths[i] > 40 {
			g.colWidths[i] = 40
		}
		if g.colWidths[i] < 4 {
			g.colWidths[i] = 4
		}
	}
}

// pad fits s into a cell of the given display width. Truncation and
// padding count terminal columns, not bytes, so wide and multibyte
// characters keep the grid aligned.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// FormatCell renders a result value for display and clipboard use.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case map[string]any, []any:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
