// Package ui is the interactive surface: it wires key presses to
// repository calls, owns the edit-in-place state machine and renders the
// task list. Network work runs in bubbletea commands; every completed
// mutation triggers a full reload of the collection, so the rendered
// list always mirrors the server as of the last finished operation.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/prefs"
	"taskdeck/internal/state"
	"taskdeck/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
)

// Repository is the slice of the API client the controller needs.
type Repository interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, draft api.Draft) error
	Update(ctx context.Context, id string, patch api.Patch) error
	Delete(ctx context.Context, id string) error
}

// Preferences persists the display theme across runs.
type Preferences interface {
	Theme() (string, error)
	SetTheme(theme string) error
}

type addState struct {
	title    string
	priority string
	due      string
	index    int
}

type Model struct {
	repo   Repository
	prefs  Preferences
	cfg    config.Config
	logger *zap.Logger
	state  *state.Store

	theme  string
	styles Styles

	mode   mode
	input  textinput.Model
	cursor int
	status string

	loading    bool
	loadErr    string
	adding     bool
	saving     bool
	confirmDel bool
	pendingDel *task.Task
	add        *addState

	now func() time.Time
}

type tasksLoadedMsg struct {
	tasks []task.Task
	err   error
}

type createDoneMsg struct{ err error }

type editSavedMsg struct {
	id  string
	err error
}

type toggleDoneMsg struct {
	id  string
	err error
}

type deleteDoneMsg struct {
	id  string
	err error
}

type themeSavedMsg struct{ err error }

func NewModel(repo Repository, prefStore Preferences, cfg config.Config, logger *zap.Logger) Model {
	theme, err := prefStore.Theme()
	if err != nil {
		logger.Warn("reading theme preference failed", zap.Error(err))
		theme = prefs.ThemeLight
	}

	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		repo:    repo,
		prefs:   prefStore,
		cfg:     cfg,
		logger:  logger,
		state:   state.New(),
		theme:   theme,
		styles:  stylesFor(theme),
		mode:    modeList,
		input:   ti,
		status:  "Press 'a' to add, space to toggle, 'e' to edit, 'd' to delete.",
		loading: true,
		now:     time.Now,
	}
}

func Run(repo Repository, prefStore Preferences, cfg config.Config, logger *zap.Logger) error {
	program := tea.NewProgram(NewModel(repo, prefStore, cfg, logger))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadTasks()
}

// Commands. Each one carries its own timeout-bound context; responses
// come back as messages and the last reload to resolve wins.

func (m Model) loadTasks() tea.Cmd {
	repo, timeout := m.repo, m.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := repo.List(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) createTask(draft api.Draft) tea.Cmd {
	repo, timeout := m.repo, m.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return createDoneMsg{err: repo.Create(ctx, draft)}
	}
}

func (m Model) saveTitle(id, title string) tea.Cmd {
	repo, timeout := m.repo, m.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return editSavedMsg{id: id, err: repo.Update(ctx, id, api.Patch{Title: &title})}
	}
}

func (m Model) toggleTask(t task.Task) tea.Cmd {
	repo, timeout := m.repo, m.cfg.Timeout()
	completed := !t.Completed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return toggleDoneMsg{id: t.ID, err: repo.Update(ctx, t.ID, api.Patch{Completed: &completed})}
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	repo, timeout := m.repo, m.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: repo.Delete(ctx, id)}
	}
}

func (m Model) persistTheme(theme string) tea.Cmd {
	store := m.prefs
	return func() tea.Msg {
		return themeSavedMsg{err: store.SetTheme(theme)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		return m.onTasksLoaded(msg)
	case createDoneMsg:
		return m.onCreateDone(msg)
	case editSavedMsg:
		return m.onEditSaved(msg)
	case toggleDoneMsg:
		if msg.err != nil {
			m.logger.Error("toggle failed", zap.String("id", msg.id), zap.Error(msg.err))
			m.status = "Failed to update task."
			return m, nil
		}
		return m, m.loadTasks()
	case deleteDoneMsg:
		if msg.err != nil {
			m.logger.Error("delete failed", zap.String("id", msg.id), zap.Error(msg.err))
			m.status = "Failed to delete task."
			return m, nil
		}
		m.status = "Deleted task"
		return m, m.loadTasks()
	case themeSavedMsg:
		if msg.err != nil {
			m.logger.Error("saving theme failed", zap.Error(msg.err))
			m.status = "Theme switched, but saving it failed."
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
		return m, nil
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg.String(), msg)
		case modeEdit:
			return m.updateEditMode(msg.String(), msg)
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	}
	return m, nil
}

func (m Model) onTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.logger.Error("load failed", zap.Error(msg.err))
		m.loadErr = "Failed to load tasks. Please check your connection and API URL."
		return m, nil
	}
	m.loadErr = ""
	m.state.ReplaceAll(msg.tasks)
	m.cursor = clampCursor(m.cursor, len(m.state.Visible()))
	return m, nil
}

func (m Model) onCreateDone(msg createDoneMsg) (tea.Model, tea.Cmd) {
	m.adding = false
	if msg.err != nil {
		// Draft fields stay as typed so the user can retry.
		m.logger.Error("create failed", zap.Error(msg.err))
		m.status = "Failed to add task."
		return m, nil
	}
	m.add = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.status = "Added task"
	return m, m.loadTasks()
}

func (m Model) onEditSaved(msg editSavedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		// Back to Editing: input keeps the draft title.
		m.logger.Error("save failed", zap.String("id", msg.id), zap.Error(msg.err))
		m.status = "Failed to update task."
		return m, nil
	}
	m.state.ClearEditing()
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.status = "Task updated"
	return m, m.loadTasks()
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.state.Visible()) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.state.Visible()))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.state.Visible()))
		}
	case m.cfg.Keys.Add:
		m.add = &addState{priority: task.PriorityLow}
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = addFields()[0]
		m.input.Focus()
		m.status = "Add mode: enter to advance, esc to cancel"
	case m.cfg.Keys.Toggle:
		visible := m.state.Visible()
		if len(visible) == 0 {
			return m, nil
		}
		return m, m.toggleTask(visible[m.cursor])
	case m.cfg.Keys.Delete:
		visible := m.state.Visible()
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete %q? y/n", t.DisplayTitle())
	case m.cfg.Keys.Edit:
		visible := m.state.Visible()
		if len(visible) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startEdit(visible[m.cursor]), nil
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.SetValue(m.state.Filter().Search)
		m.input.Placeholder = "Search tasks"
		m.input.Focus()
		m.status = "Search: type to filter, enter/esc to close"
	case m.cfg.Keys.Priority:
		next := cyclePriority(m.state.Filter().Priority)
		m.state.SetFilter(nil, &next)
		m.cursor = clampCursor(m.cursor, len(m.state.Visible()))
		if next == "" {
			m.status = "Priority filter cleared"
		} else {
			m.status = "Priority filter: " + next
		}
	case m.cfg.Keys.Theme:
		if m.theme == prefs.ThemeDark {
			m.theme = prefs.ThemeLight
		} else {
			m.theme = prefs.ThemeDark
		}
		m.styles = stylesFor(m.theme)
		m.status = "Theme: " + m.theme
		return m, m.persistTheme(m.theme)
	case m.cfg.Keys.Reload:
		m.loading = true
		return m, m.loadTasks()
	}
	return m, nil
}

// startEdit begins editing a row. Only one row may be in edit mode
// system-wide; while one is active the request is ignored.
func (m Model) startEdit(t task.Task) Model {
	if m.state.EditingID() != "" {
		return m
	}
	m.state.SetEditing(t.ID)
	m.mode = modeEdit
	m.input.SetValue(t.Title)
	m.input.Placeholder = "Task title"
	m.input.Focus()
	m.input.CursorEnd()
	m.status = "Editing: enter to save, esc to cancel"
	return m
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.state.ClearEditing()
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Task title cannot be empty"
			return m, nil
		}
		m.saving = true
		m.status = "Saving…"
		return m, m.saveTitle(m.state.EditingID(), title)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc", m.cfg.Keys.Confirm, "enter":
		m.mode = modeList
		m.input.Blur()
		m.status = "Filter applied"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		search := m.input.Value()
		m.state.SetFilter(&search, nil)
		m.cursor = clampCursor(m.cursor, len(m.state.Visible()))
		return m, cmd
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.add = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab":
		m.add.set(m.add.index, m.input.Value())
		m.add.index = wrapIndex(m.add.index+1, len(addFields()))
		m.syncAddInput()
		return m, nil
	case "shift+tab":
		m.add.set(m.add.index, m.input.Value())
		m.add.index = wrapIndex(m.add.index-1, len(addFields()))
		m.syncAddInput()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.add.set(m.add.index, m.input.Value())
		if m.add.index < len(addFields())-1 {
			m.add.index++
			m.syncAddInput()
			return m, nil
		}
		return m.submitAdd()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) syncAddInput() {
	m.input.SetValue(m.add.value(m.add.index))
	m.input.Placeholder = addFields()[m.add.index]
	m.input.CursorEnd()
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.add.title)
	if title == "" {
		m.status = "Title cannot be empty"
		m.add.index = 0
		m.syncAddInput()
		return m, nil
	}
	priority := strings.TrimSpace(m.add.priority)
	if priority == "" {
		priority = task.PriorityLow
	}

	draft := api.Draft{Title: title, Priority: priority}
	if due := strings.TrimSpace(m.add.due); due != "" {
		parsed, err := time.Parse("2006-01-02", due)
		if err != nil {
			m.status = "Due date must be YYYY-MM-DD"
			return m, nil
		}
		today := m.now().Truncate(24 * time.Hour)
		if parsed.Before(today) {
			m.status = "Due date cannot be in the past"
			return m, nil
		}
		draft.DueDate = &due
	}

	m.adding = true
	m.status = "Adding…"
	return m, m.createTask(draft)
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel, "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		id := m.pendingDel.ID
		m.confirmDel = false
		m.pendingDel = nil
		m.status = "Deleting…"
		return m, m.deleteTask(id)
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Taskdeck"))
	b.WriteString("  ")
	b.WriteString(m.styles.Help.Render("[" + m.theme + "]"))
	b.WriteString("\n")
	s := m.state.Stats()
	b.WriteString(m.styles.Stats.Render(
		fmt.Sprintf("%d total • %d done • %d pending", s.Total, s.Completed, s.Pending)))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.styles.Empty.Render("Loading tasks…"))
		b.WriteString("\n")
	case m.loadErr != "":
		b.WriteString(m.styles.Error.Render(m.loadErr))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderTaskList())
	}

	if f := m.state.Filter(); f.Active() {
		b.WriteString("\n")
		b.WriteString(m.styles.Filter.Render(renderFilter(f)))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\n")
		b.WriteString(m.renderAddForm())
	case modeSearch:
		b.WriteString("\nSearch: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderTaskList() string {
	visible := m.state.Visible()
	if len(visible) == 0 {
		if m.state.Filter().Active() {
			return m.styles.Empty.Render("No tasks found") + "\n"
		}
		return m.styles.Empty.Render("No tasks yet. Press 'a' to add one.") + "\n"
	}

	var b strings.Builder
	for i, t := range visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = m.styles.Cursor.Render(">")
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		// Edit in place: the row's title is replaced by the input.
		if m.mode == modeEdit && m.state.EditingID() == t.ID {
			b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox, m.input.View()))
			continue
		}

		title := m.styles.TaskTitle.Render(t.DisplayTitle())
		if t.Completed {
			title = m.styles.TaskDone.Render(t.DisplayTitle())
		}
		badge := m.styles.Badge(t.DisplayPriority()).Render(t.DisplayPriority())
		meta := m.styles.Meta.Render(
			fmt.Sprintf("due: %s • added: %s", t.DisplayDueDate(), t.DisplayCreatedAt()))

		b.WriteString(fmt.Sprintf("%s %s %s %s\n      %s\n", cursor, checkbox, title, badge, meta))
	}
	return b.String()
}

func (m Model) renderAddForm() string {
	var b strings.Builder
	fields := addFields()
	for i, name := range fields {
		prefix := " "
		if i == m.add.index {
			prefix = ">"
		}
		val := m.add.value(i)
		if i == m.add.index {
			val = m.input.View()
		} else if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-32s : %s\n", prefix, name, val))
	}
	if m.adding {
		b.WriteString(m.styles.Empty.Render("Adding…"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderFilter(f task.Filter) string {
	parts := make([]string, 0, 2)
	if f.Search != "" {
		parts = append(parts, "search: "+f.Search)
	}
	if f.Priority != "" {
		parts = append(parts, "priority: "+f.Priority)
	}
	return "Filter — " + strings.Join(parts, " • ")
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit • %s delete • %s search • %s priority • %s theme • %s reload • %s quit",
		k.Up, k.Down, k.Add, k.Toggle, k.Edit, k.Delete, k.Search, k.Priority, k.Theme, k.Reload, k.Quit)
}

func addFields() []string {
	return []string{"title", "priority (Low/Medium/High)", "due date (YYYY-MM-DD, optional)"}
}

func (a addState) value(i int) string {
	switch i {
	case 0:
		return a.title
	case 1:
		return a.priority
	case 2:
		return a.due
	default:
		return ""
	}
}

func (a *addState) set(i int, v string) {
	switch i {
	case 0:
		a.title = v
	case 1:
		a.priority = v
	case 2:
		a.due = v
	}
}

func cyclePriority(cur string) string {
	switch cur {
	case "":
		return task.PriorityLow
	case task.PriorityLow:
		return task.PriorityMedium
	case task.PriorityMedium:
		return task.PriorityHigh
	default:
		return ""
	}
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
