// Package ui is the terminal frontend over the workspace controller.
// The App model never touches the database itself: every action becomes
// a workspace call run as a background command, and every workspace
// event becomes a message that triggers a state re-sync.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgdeck/pgdeck/internal/config"
	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/sqlgen"
	"github.com/pgdeck/pgdeck/internal/ui/components"
	"github.com/pgdeck/pgdeck/internal/ui/help"
	"github.com/pgdeck/pgdeck/internal/ui/theme"
	"github.com/pgdeck/pgdeck/internal/workspace"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusEditor
	focusResults
)

type promptKind int

const (
	promptNone promptKind = iota
	promptRenameTab
	promptEditCell
)

// EventMsg wraps a workspace event into a bubbletea message. The main
// function wires the workspace's event handler to program.Send with
// this type.
type EventMsg struct {
	Event workspace.Event
}

type restoreDoneMsg struct{ err error }

// opDoneMsg completes a background workspace call. Failures the
// workspace already reported through an event carry reported=true so
// the modal is not shown twice.
type opDoneMsg struct {
	err      error
	reported bool
}

// App is the root bubbletea model.
type App struct {
	ws  *workspace.Workspace
	cfg *config.Config
	th  theme.Theme

	width  int
	height int
	focus  focusArea

	tree   *components.ConnTree
	tabBar components.TabBar
	editor *components.Editor
	grid   *components.ResultGrid

	leftPanel   components.Panel
	editorPanel components.Panel
	resultPanel components.Panel

	// modal state; at most one is active
	showHelp   bool
	form       *components.ConnForm
	prompt     *components.Prompt
	promptFor  promptKind
	errModal   *components.ErrorModal
	confirmRow int // pending row delete, -1 when none

	// editorTab tracks which tab's text is in the textarea, lastResults
	// which result set is in the grid.
	editorTab   string
	lastResults *models.QueryResult
}

// New creates the root model over a workspace.
func New(ws *workspace.Workspace, cfg *config.Config) *App {
	th := theme.GetTheme(cfg.UI.Theme)
	app := &App{
		ws:         ws,
		cfg:        cfg,
		th:         th,
		focus:      focusEditor,
		tree:       components.NewConnTree(th),
		tabBar:     components.TabBar{Theme: th},
		editor:     components.NewEditor(th),
		grid:       components.NewResultGrid(th),
		confirmRow: -1,
	}
	app.leftPanel = components.Panel{Title: "Connections", Theme: th}
	app.editorPanel = components.Panel{Title: "SQL", Theme: th}
	app.resultPanel = components.Panel{Title: "Results", Theme: th}
	app.updatePanelFocus()
	return app
}

/// Init implements tea.Model: it restores the previous session in the
// background and focuses the editor.
func (a *App) Init() tea.Cmd {
	restore := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return restoreDoneMsg{err: a.ws.RestoreSession(ctx)}
	}
	return tea.Batch(restore, a.editor.Focus())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case restoreDoneMsg:
		if msg.err != nil {
			a.errModal = components.NewErrorModal(a.th,
				"Session Restore Failed",
				msg.err.Error()+"\n\nChanges made now will not be persisted.", "")
		}
		a.sync()
		return a, nil

	case EventMsg:
		return a.handleEvent(msg.Event)

	case opDoneMsg:
		if msg.err != nil && !msg.reported && a.errModal == nil {
			a.errModal = components.NewErrorModal(a.th, "Error", msg.err.Error(), "")
		}
		a.sync()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.focus == focusEditor && a.editor.Focused() {
		cmd := a.editor.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleEvent(ev workspace.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case workspace.QueryFailedEvent:
		a.errModal = components.NewErrorModal(a.th, "Query Failed", ev.Err.Error(), ev.SQL)
	case workspace.EditFailedEvent:
		a.errModal = components.NewErrorModal(a.th, "Edit Failed", ev.Err.Error(), ev.SQL)
	}
	a.sync()
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Modals swallow input first.
	if a.errModal != nil {
		if key == "esc" || key == "enter" || key == "ctrl+c" {
			a.errModal = nil
			if key == "ctrl+c" {
				return a, a.quit()
			}
		}
		return a, nil
	}
	if a.showHelp {
		if key == "?" || key == "esc" || key == "q" {
			a.showHelp = false
		}
		return a, nil
	}
	if a.form != nil {
		return a.handleFormKey(msg)
	}
	if a.prompt != nil {
		return a.handlePromptKey(msg)
	}
	if a.confirmRow >= 0 {
		return a.handleConfirmKey(key)
	}

	switch key {
	case "ctrl+c":
		return a, a.quit()
	case "tab":
		a.cycleFocus()
		return a, nil
	case "ctrl+t":
		a.ws.NewTab()
		a.sync()
		return a, nil
	case "ctrl+w":
		a.ws.CloseTab(a.ws.ActiveTabID())
		a.sync()
		return a, nil
	case "ctrl+right":
		a.switchTab(1)
		return a, nil
	case "ctrl+left":
		a.switchTab(-1)
		return a, nil
	case "ctrl+g":
		a.prompt = components.NewPrompt(a.th, "Rename tab", a.ws.ActiveTab().Title, false)
		a.promptFor = promptRenameTab
		return a, nil
	case "ctrl+r":
		return a, a.runQuery()
	}

	switch a.focus {
	case focusTree:
		return a.handleTreeKey(key)
	case focusEditor:
		return a.handleEditorKey(msg)
	case focusResults:
		return a.handleResultsKey(key)
	}
	return a, nil
}

func (a *App) handleTreeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "?":
		a.showHelp = true
	case "up", "k":
		a.tree.MoveCursor(-1)
	case "down", "j":
		a.tree.MoveCursor(1)
	case "a":
		a.form = components.NewConnForm(a.th, nil)
	case "e":
		if entry, ok := a.tree.Current(); ok && entry.Kind == components.EntryConnection {
			if conn := a.findSaved(entry.SavedID); conn != nil {
				a.form = components.NewConnForm(a.th, conn)
			}
		}
	case "x":
		if entry, ok := a.tree.Current(); ok && entry.Kind == components.EntryConnection {
			savedID := entry.SavedID
			return a, a.op(func(ctx context.Context) error {
				return a.ws.DeleteConnection(ctx, savedID)
			})
		}
	case "enter", " ":
		entry, ok := a.tree.Current()
		if !ok {
			return a, nil
		}
		switch entry.Kind {
		case components.EntryConnection:
			savedID := entry.SavedID
			return a, a.op(func(ctx context.Context) error {
				return a.ws.Toggle(ctx, savedID)
			})
		case components.EntrySchema:
			savedID, schema := entry.SavedID, entry.Schema
			return a, a.op(func(ctx context.Context) error {
				return a.ws.ToggleSchema(ctx, savedID, schema)
			})
		case components.EntryTable:
			savedID, schema, table := entry.SavedID, entry.Schema, entry.Table
			return a, a.queryOp(func(ctx context.Context) error {
				return a.ws.SelectTable(ctx, savedID, schema, table)
			})
		}
	}
	return a, nil
}

func (a *App) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+y" {
		if err := a.editor.Copy(); err != nil {
			a.errModal = components.NewErrorModal(a.th, "Clipboard Error", err.Error(), "")
		}
		return a, nil
	}
	cmd := a.editor.Update(msg)
	if err := a.ws.SetSQL(a.ws.ActiveTabID(), a.editor.Value()); err == nil {
		a.editorTab = a.ws.ActiveTabID()
	}
	return a, cmd
}

func (a *App) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "?":
		a.showHelp = true
	case "up", "k":
		a.grid.Move(-1, 0)
	case "down", "j":
		a.grid.Move(1, 0)
	case "left", "h":
		a.grid.Move(0, -1)
	case "right", "l":
		a.grid.Move(0, 1)
	case "ctrl+u":
		a.grid.PageUp()
	case "ctrl+d":
		a.grid.PageDown()
	case "y":
		if err := a.grid.CopyCell(); err != nil {
			a.errModal = components.NewErrorModal(a.th, "Clipboard Error", err.Error(), "")
		}
	case "enter":
		return a.startCellEdit()
	case "d":
		return a.startRowDelete()
	}
	return a, nil
}

func (a *App) startCellEdit() (tea.Model, tea.Cmd) {
	tabID := a.ws.ActiveTabID()
	if !a.ws.CanEdit(tabID) {
		return a, nil
	}
	row, column, ok := a.grid.CurrentCell()
	if !ok {
		return a, nil
	}
	value, _ := a.grid.CurrentValue()
	label := fmt.Sprintf("Edit %s (row %d)", column, row+1)
	a.prompt = components.NewPrompt(a.th, label, components.FormatCell(value), true)
	if value == nil {
		a.prompt.IsNull = true
	}
	a.promptFor = promptEditCell
	return a, nil
}

func (a *App) startRowDelete() (tea.Model, tea.Cmd) {
	tabID := a.ws.ActiveTabID()
	if !a.ws.CanEdit(tabID) {
		return a, nil
	}
	row, _, ok := a.grid.CurrentCell()
	if !ok {
		return a, nil
	}
	if a.cfg.General.ConfirmDestructiveOps {
		a.confirmRow = row
		return a, nil
	}
	return a, a.deleteRow(row)
}

func (a *App) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	row := a.confirmRow
	a.confirmRow = -1
	if key == "y" || key == "enter" {
		return a, a.deleteRow(row)
	}
	return a, nil
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.form = nil
		return a, nil
	case "enter":
		conn, err := a.form.Connection()
		if err != nil {
			a.errModal = components.NewErrorModal(a.th, "Invalid Connection", err.Error(), "")
			return a, nil
		}
		a.form = nil
		return a, a.op(func(ctx context.Context) error {
			return a.ws.SaveConnection(ctx, conn)
		})
	}
	cmd := a.form.Update(msg)
	return a, cmd
}

func (a *App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.prompt = nil
		a.promptFor = promptNone
		return a, nil
	case "enter":
		prompt, kind := a.prompt, a.promptFor
		a.prompt = nil
		a.promptFor = promptNone
		switch kind {
		case promptRenameTab:
			if v := prompt.Value(); v != nil {
				_ = a.ws.RenameTab(a.ws.ActiveTabID(), *v)
			}
			a.sync()
			return a, nil
		case promptEditCell:
			row, column, ok := a.grid.CurrentCell()
			if !ok {
				return a, nil
			}
			tabID := a.ws.ActiveTabID()
			value := prompt.Value()
			return a, a.queryOp(func(ctx context.Context) error {
				return a.ws.UpdateCell(ctx, tabID, row, column, value)
			})
		}
		return a, nil
	}
	cmd := a.prompt.Update(msg)
	return a, cmd
}

// op runs a workspace call in the background; its error pops the
// generic error modal.
func (a *App) op(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.opContext()
		defer cancel()
		return opDoneMsg{err: fn(ctx)}
	}
}

// queryOp is op for calls whose failures the workspace reports through
// QueryFailedEvent or EditFailedEvent; only rejections that never
// produce an event (in-flight, refused delete) are shown directly.
func (a *App) queryOp(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.opContext()
		defer cancel()
		err := fn(ctx)
		reported := err != nil &&
			!errors.Is(err, workspace.ErrQueryInFlight) &&
			!errors.Is(err, workspace.ErrEditNotAllowed) &&
			!errors.Is(err, workspace.ErrNotConnected) &&
			!errors.Is(err, workspace.ErrTabNotFound) &&
			!errors.Is(err, sqlgen.ErrNoIdentifyingColumns)
		return opDoneMsg{err: err, reported: reported}
	}
}

func (a *App) opContext() (context.Context, context.CancelFunc) {
	if timeout := a.cfg.Performance.QueryTimeout; timeout > 0 {
		return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Millisecond)
	}
	return context.WithCancel(context.Background())
}

func (a *App) runQuery() tea.Cmd {
	tabID := a.ws.ActiveTabID()
	sql := a.editor.Value()
	return a.queryOp(func(ctx context.Context) error {
		return a.ws.Run(ctx, tabID, sql)
	})
}

func (a *App) deleteRow(row int) tea.Cmd {
	tabID := a.ws.ActiveTabID()
	return a.queryOp(func(ctx context.Context) error {
		return a.ws.DeleteRow(ctx, tabID, row)
	})
}

func (a *App) quit() tea.Cmd {
	a.ws.Flush()
	return tea.Quit
}

func (a *App) switchTab(delta int) {
	tabs := a.ws.Tabs()
	if len(tabs) < 2 {
		return
	}
	active := a.ws.ActiveTabID()
	for i, tab := range tabs {
		if tab.ID == active {
			next := (i + delta + len(tabs)) % len(tabs)
			_ = a.ws.SetActiveTab(tabs[next].ID)
			break
		}
	}
	a.sync()
}

func (a *App) cycleFocus() {
	switch a.focus {
	case focusTree:
		a.focus = focusEditor
	case focusEditor:
		a.focus = focusResults
	case focusResults:
		a.focus = focusTree
	}
	if a.focus == focusEditor {
		a.editor.Focus()
	} else {
		a.editor.Blur()
	}
	a.updatePanelFocus()
}

// sync pulls the workspace snapshot into the view components.
func (a *App) sync() {
	a.tree.SetNodes(a.ws.Nodes())

	active := a.ws.ActiveTab()
	if active.ID != a.editorTab {
		a.editor.SetValue(active.SQL)
		a.editorTab = active.ID
	}
	if active.Results != a.lastResults {
		a.grid.SetResult(active.Results, active.ColumnDefs)
		a.lastResults = active.Results
	}
}

func (a *App) findSaved(savedID string) *models.SavedConnection {
	for _, node := range a.ws.Nodes() {
		if node.Conn.ID == savedID {
			conn := node.Conn
			return &conn
		}
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}
	if a.showHelp {
		return help.Render(a.width, a.height)
	}

	base := a.renderMain()

	var overlay string
	switch {
	case a.errModal != nil:
		overlay = a.errModal.View()
	case a.form != nil:
		overlay = a.form.View()
	case a.prompt != nil:
		overlay = a.prompt.View()
	case a.confirmRow >= 0:
		overlay = a.renderConfirm()
	}
	if overlay != "" {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return base
}

func (a *App) renderMain() string {
	tabs := a.ws.Tabs()
	active := a.ws.ActiveTab()

	a.tabBar.Width = a.width
	tabLine := a.tabBar.View(tabs, active.ID)

	a.tree.Width = a.leftPanel.Width
	a.tree.Height = a.leftPanel.Height
	a.leftPanel.Content = a.tree.View()

	a.editorPanel.Content = a.editor.View()
	a.editorPanel.Title = "SQL — " + active.Title

	a.grid.Width = a.resultPanel.Width
	a.grid.Height = a.resultPanel.Height
	a.resultPanel.Content = a.grid.View()
	a.resultPanel.Title = a.resultTitle(active)

	right := lipgloss.JoinVertical(lipgloss.Left, a.editorPanel.View(), a.resultPanel.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, a.leftPanel.View(), right)

	return lipgloss.JoinVertical(lipgloss.Left, tabLine, body, a.renderStatusBar(active))
}

func (a *App) resultTitle(active workspace.Tab) string {
	title := "Results"
	if active.SelectedTable != "" {
		title += " — " + active.SelectedTable
		if a.ws.CanEdit(active.ID) {
			title += " (editable)"
		}
	}
	return title
}

func (a *App) renderStatusBar(active workspace.Tab) string {
	left := "disconnected"
	if _, savedID := a.ws.ActiveConnection(); savedID != "" {
		if conn := a.findSaved(savedID); conn != nil {
			left = fmt.Sprintf("%s (%s)", conn.Name, conn.Config.DBName)
		}
	}
	if active.IsLoading {
		left += "  running…"
	} else if active.Duration > 0 {
		left += fmt.Sprintf("  %s", active.Duration.Round(time.Millisecond))
	}

	right := "[ctrl+r] run  [tab] focus  [?] help  [ctrl+c] quit"
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	bar := " " + left + lipgloss.NewStyle().Width(gap).Render("") + right
	return lipgloss.NewStyle().
		Width(a.width).
		Background(a.th.Selection).
		Foreground(a.th.Foreground).
		Render(bar)
}

func (a *App) renderConfirm() string {
	msg := fmt.Sprintf("Delete row %d?\n\n[y] delete  [n] cancel", a.confirmRow+1)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.th.Warning).
		Padding(1, 2).
		Render(msg)
}

func (a *App) layout() {
	// tab bar + status bar
	contentHeight := a.height - 4
	if contentHeight < 6 {
		contentHeight = 6
	}

	leftWidth := a.width * 28 / 100
	if leftWidth < 24 {
		leftWidth = 24
	}
	rightWidth := a.width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
	}

	editorHeight := contentHeight * 35 / 100
	if editorHeight < 4 {
		editorHeight = 4
	}
	resultHeight := contentHeight - editorHeight - 2

	a.leftPanel.Width = leftWidth
	a.leftPanel.Height = contentHeight
	a.editorPanel.Width = rightWidth
	a.editorPanel.Height = editorHeight
	a.resultPanel.Width = rightWidth
	a.resultPanel.Height = resultHeight

	a.editor.SetSize(rightWidth-2, editorHeight-1)
}

func (a *App) updatePanelFocus() {
	a.leftPanel.Focused = a.focus == focusTree
	a.editorPanel.Focused = a.focus == focusEditor
	a.resultPanel.Focused = a.focus == focusResults
}
