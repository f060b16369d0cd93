package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/ui/theme"
	"github.com/pgdeck/pgdeck/internal/workspace"
)

// TreeEntryKind identifies what a cursor row in the connection tree
// points at.
type TreeEntryKind int

const (
	EntryConnection TreeEntryKind = iota
	EntrySchema
	EntryTable
)

// TreeEntry is one visible row of the flattened connection tree.
type TreeEntry struct {
	Kind    TreeEntryKind
	SavedID string
	Schema  string
	Table   string
}

// ConnTree renders the saved-connection tree: connections at the top
// level, schemas under a connected one, tables under an open schema.
// The tree is rebuilt from the workspace snapshot on every state change;
// only the cursor lives here.
type ConnTree struct {
	Width  int
	Height int
	Theme  theme.Theme

	nodes   []workspace.ConnectionNode
	entries []TreeEntry
	cursor  int
	offset  int
}

// NewConnTree creates an empty tree.
func NewConnTree(th theme.Theme) *ConnTree {
	return &ConnTree{Theme: th}
}

// SetNodes replaces the tree content and reflattens it, keeping the
// cursor on the same row index where possible.
func (t *ConnTree) SetNodes(nodes []workspace.ConnectionNode) {
	t.nodes = nodes
	t.entries = t.entries[:0]
	for _, node := range nodes {
		t.entries = append(t.entries, TreeEntry{Kind: EntryConnection, SavedID: node.Conn.ID})
		if !node.IsOpen {
			continue
		}
		for _, schema := range node.Schemas {
			t.entries = append(t.entries, TreeEntry{Kind: EntrySchema, SavedID: node.Conn.ID, Schema: schema.Name})
			if !schema.IsOpen {
				continue
			}
			for _, table := range schema.Tables {
				t.entries = append(t.entries, TreeEntry{
					Kind: EntryTable, SavedID: node.Conn.ID, Schema: schema.Name, Table: table,
				})
			}
		}
	}
	if t.cursor >= len(t.entries) {
		t.cursor = len(t.entries) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// Current returns the entry under the cursor.
func (t *ConnTree) Current() (TreeEntry, bool) {
	if t.cursor < 0 || t.cursor >= len(t.entries) {
		return TreeEntry{}, false
	}
	return t.entries[t.cursor], true
}

// MoveCursor moves the cursor by delta rows, clamped.
func (t *ConnTree) MoveCursor(delta int) {
	t.cursor += delta
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(t.entries) {
		t.cursor = len(t.entries) - 1
	}
}

// View renders the tree inside the current dimensions.
func (t *ConnTree) View() string {
	if len(t.entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.Theme.Metadata).
			Render("No connections\n\n[a] add connection")
	}

	viewHeight := t.Height - 2
	if viewHeight < 1 {
		viewHeight = 1
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+viewHeight {
		t.offset = t.cursor - viewHeight + 1
	}

	end := t.offset + viewHeight
	if end > len(t.entries) {
		end = len(t.entries)
	}

	var lines []string
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderEntry(t.entries[i], i == t.cursor))
	}
	return strings.Join(lines, "\n")
}

func (t *ConnTree) renderEntry(entry TreeEntry, selected bool) string {
	node := t.findNode(entry.SavedID)
	if node == nil {
		return ""
	}

	var line string
	switch entry.Kind {
	case EntryConnection:
		icon := "▸"
		if node.IsOpen {
			icon = "▾"
		}
		dot := lipgloss.NewStyle().Foreground(t.Theme.ConnDead).Render("○")
		if node.Handle != "" {
			dot = lipgloss.NewStyle().Foreground(t.Theme.ConnLive).Render("●")
		}
		label := node.Conn.Name
		if node.IsLoading {
			label += " (connecting…)"
		}
		meta := lipgloss.NewStyle().Foreground(t.Theme.Metadata).
			Render(fmt.Sprintf(" %s", node.Conn.Config.DBName))
		line = fmt.Sprintf("%s %s %s%s", icon, dot, label, meta)
	case EntrySchema:
		schema := findSchema(node, entry.Schema)
		icon := "▸"
		if schema != nil && schema.IsOpen {
			icon = "▾"
		}
		name := lipgloss.NewStyle().Foreground(t.Theme.SchemaIcon).Render(entry.Schema)
		line = fmt.Sprintf("  %s %s", icon, name)
	case EntryTable:
		name := lipgloss.NewStyle().Foreground(t.Theme.TableIcon).Render(entry.Table)
		line = fmt.Sprintf("    • %s", name)
	}

	if selected {
		return lipgloss.NewStyle().Background(t.Theme.Selection).Bold(true).
			Width(t.Width - 2).Render(line)
	}
	return line
}

func (t *ConnTree) findNode(savedID string) *workspace.ConnectionNode {
	for i := range t.nodes {
		if t.nodes[i].Conn.ID == savedID {
			return &t.nodes[i]
		}
	}
	return nil
}

func findSchema(node *workspace.ConnectionNode, name string) *workspace.SchemaNode {
	for _, s := range node.Schemas {
		if s.Name == name {
			return s
		}
	}
	return nil
}
