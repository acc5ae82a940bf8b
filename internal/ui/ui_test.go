package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/task"
)

type recordedUpdate struct {
	id    string
	patch api.Patch
}

type fakeRepo struct {
	tasks     []task.Task
	listErr   error
	createErr error
	updateErr error
	deleteErr error

	creates []api.Draft
	updates []recordedUpdate
	deletes []string
}

func (f *fakeRepo) List(ctx context.Context) ([]task.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeRepo) Create(ctx context.Context, draft api.Draft) error {
	f.creates = append(f.creates, draft)
	return f.createErr
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch api.Patch) error {
	f.updates = append(f.updates, recordedUpdate{id: id, patch: patch})
	return f.updateErr
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

type fakePrefs struct {
	theme  string
	setErr error
	saved  []string
}

func (f *fakePrefs) Theme() (string, error) { return f.theme, nil }

func (f *fakePrefs) SetTheme(theme string) error {
	f.saved = append(f.saved, theme)
	return f.setErr
}

func testConfig() config.Config {
	return config.Config{
		APIBaseURL:            "http://example.test/todo",
		RequestTimeoutSeconds: 1,
		Keys: config.Keymap{
			Quit: "q", Add: "a", Up: "k", Down: "j", Toggle: " ",
			Delete: "d", Edit: "e", Search: "/", Priority: "p",
			Theme: "t", Reload: "r", Confirm: "enter", Cancel: "esc",
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press runs one key through the model and returns the new model.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	return next.(Model), cmd
}

func loaded(t *testing.T, m Model, tasks []task.Task) Model {
	t.Helper()
	next, _ := m.Update(tasksLoadedMsg{tasks: tasks})
	return next.(Model)
}

func twoTasks() []task.Task {
	return []task.Task{
		{ID: "a", Title: "Buy milk", Priority: "High"},
		{ID: "b", Title: "Walk dog", Priority: "Low"},
	}
}

func newTestModel(repo *fakeRepo) Model {
	return NewModel(repo, &fakePrefs{theme: "light"}, testConfig(), zap.NewNop())
}

func TestInitialLoadReplacesState(t *testing.T) {
	repo := &fakeRepo{tasks: twoTasks()}
	m := newTestModel(repo)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	next, _ := m.Update(msg)
	m = next.(Model)

	assert.False(t, m.loading)
	assert.Equal(t, twoTasks(), m.state.Tasks())
	assert.Contains(t, m.View(), "Buy milk")
	assert.Contains(t, m.View(), "2 total")
}

func TestLoadFailureShowsErrorPlaceholder(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("boom")}
	m := newTestModel(repo)

	msg := m.Init()()
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.Contains(t, m.View(), "Failed to load tasks")
	assert.Empty(t, m.state.Tasks(), "read failure leaves state unchanged")
}

func TestLastReloadWins(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, twoTasks())
	m = loaded(t, m, []task.Task{{ID: "c", Title: "Later snapshot"}})

	require.Len(t, m.state.Tasks(), 1)
	assert.Equal(t, "c", m.state.Tasks()[0].ID)
}

func TestToggleIssuesCompletedPatchThenReloads(t *testing.T) {
	repo := &fakeRepo{tasks: twoTasks()}
	m := newTestModel(repo)
	m = loaded(t, m, repo.tasks)

	m, cmd := press(t, m, " ")
	require.NotNil(t, cmd)
	msg := cmd()

	require.Len(t, repo.updates, 1)
	assert.Equal(t, "a", repo.updates[0].id)
	require.NotNil(t, repo.updates[0].patch.Completed)
	assert.True(t, *repo.updates[0].patch.Completed)
	assert.Nil(t, repo.updates[0].patch.Title, "toggle patches only completed")

	// A successful toggle triggers a full reload.
	next, reload := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, reload)
}

func TestEditHappyPath(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "e")
	assert.Equal(t, "a", m.state.EditingID())
	assert.Equal(t, "Buy milk", m.input.Value(), "input pre-filled with current title")

	m.input.SetValue("Buy oat milk")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	msg := cmd()

	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].patch.Title)
	assert.Equal(t, "Buy oat milk", *repo.updates[0].patch.Title)

	next, reload := m.Update(msg)
	m = next.(Model)
	assert.Empty(t, m.state.EditingID(), "editing cleared after successful save")
	assert.Equal(t, modeList, m.mode)
	assert.NotNil(t, reload)
}

func TestEditEmptyTitleIsRejectedWithoutRequest(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "e")
	m.input.SetValue("   ")
	m, cmd := press(t, m, "enter")

	assert.Nil(t, cmd)
	assert.Empty(t, repo.updates, "no write request issued")
	assert.Equal(t, "a", m.state.EditingID(), "still editing the same task")
	assert.Equal(t, modeEdit, m.mode)
}

func TestEditIsExclusive(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "e")
	require.Equal(t, "a", m.state.EditingID())

	// Starting a second edit while one is active is a no-op.
	m = m.startEdit(m.state.Tasks()[1])
	assert.Equal(t, "a", m.state.EditingID())
}

func TestEditCancelDiscardsDraft(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "e")
	m.input.SetValue("half-typed")
	m, cmd := press(t, m, "esc")

	assert.Nil(t, cmd)
	assert.Empty(t, repo.updates)
	assert.Empty(t, m.state.EditingID())
	assert.Equal(t, modeList, m.mode)
}

func TestEditSaveFailureStaysEditing(t *testing.T) {
	repo := &fakeRepo{updateErr: errors.New("503")}
	m := newTestModel(repo)
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "e")
	m.input.SetValue("New title")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	next, reload := m.Update(cmd())
	m = next.(Model)

	assert.Nil(t, reload, "no reload after a failed save")
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "a", m.state.EditingID())
	assert.Equal(t, "New title", m.input.Value(), "draft retained for retry")
}

func TestAddFlow(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, nil)

	m, _ = press(t, m, "a")
	m.input.SetValue("Buy milk")
	m, _ = press(t, m, "enter")
	m.input.SetValue("Medium")
	m, _ = press(t, m, "enter")
	m.input.SetValue("")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.adding)

	msg := cmd()
	require.Len(t, repo.creates, 1)
	assert.Equal(t, "Buy milk", repo.creates[0].Title)
	assert.Equal(t, "Medium", repo.creates[0].Priority)
	assert.False(t, repo.creates[0].Completed)
	assert.Nil(t, repo.creates[0].DueDate)

	next, reload := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, modeList, m.mode)
	assert.NotNil(t, reload, "successful create triggers a reload")
}

func TestAddEmptyTitleIsRejected(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, nil)

	m, _ = press(t, m, "a")
	m, _ = press(t, m, "enter") // title left empty
	m, _ = press(t, m, "enter") // priority
	m, cmd := press(t, m, "enter") // due date, submits

	assert.Nil(t, cmd)
	assert.Empty(t, repo.creates)
	assert.Equal(t, modeAdd, m.mode, "stay in the form for retry")
	assert.Contains(t, m.status, "Title cannot be empty")
}

func TestAddRejectsPastDueDate(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, nil)
	m.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	m, _ = press(t, m, "a")
	m.input.SetValue("Time travel")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "enter")
	m.input.SetValue("2020-01-01")
	m, cmd := press(t, m, "enter")

	assert.Nil(t, cmd)
	assert.Empty(t, repo.creates)
	assert.Contains(t, m.status, "past")
}

func TestAddFailureKeepsDraft(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("down")}
	m := newTestModel(repo)
	m = loaded(t, m, nil)

	m, _ = press(t, m, "a")
	m.input.SetValue("Buy milk")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	next, reload := m.Update(cmd())
	m = next.(Model)

	assert.Nil(t, reload)
	assert.Equal(t, modeAdd, m.mode)
	require.NotNil(t, m.add)
	assert.Equal(t, "Buy milk", m.add.title, "draft fields kept for retry")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestModel(repo)
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "d")
	assert.True(t, m.confirmDel)

	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.Empty(t, repo.deletes)

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"a"}, repo.deletes)
}

func TestSearchFiltersLive(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, twoTasks())

	m, _ = press(t, m, "/")
	for _, r := range "walk" {
		m, _ = press(t, m, string(r))
	}

	assert.Equal(t, "walk", m.state.Filter().Search)
	visible := m.state.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "b", visible[0].ID)

	// Closing search keeps the filter.
	m, _ = press(t, m, "esc")
	assert.Equal(t, "walk", m.state.Filter().Search)
	assert.Equal(t, modeList, m.mode)
}

func TestPriorityFilterCycles(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, twoTasks())

	want := []string{"Low", "Medium", "High", ""}
	for _, p := range want {
		m, _ = press(t, m, "p")
		assert.Equal(t, p, m.state.Filter().Priority)
	}
}

func TestThemeToggleRestylesAndPersists(t *testing.T) {
	store := &fakePrefs{theme: "light"}
	m := NewModel(&fakeRepo{}, store, testConfig(), zap.NewNop())

	m, cmd := press(t, m, "t")
	require.NotNil(t, cmd)
	assert.Equal(t, "dark", m.theme)

	cmd()
	assert.Equal(t, []string{"dark"}, store.saved)

	m, cmd = press(t, m, "t")
	assert.Equal(t, "light", m.theme)
	cmd()
	assert.Equal(t, []string{"dark", "light"}, store.saved)
}

func TestEmptyAndFilteredEmptyStates(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, nil)
	assert.Contains(t, m.View(), "No tasks yet")

	m = loaded(t, m, twoTasks())
	m, _ = press(t, m, "/")
	for _, r := range "zzz" {
		m, _ = press(t, m, string(r))
	}
	assert.Contains(t, m.View(), "No tasks found")
}

func TestViewShowsDisplayFallbacks(t *testing.T) {
	m := newTestModel(&fakeRepo{})
	m = loaded(t, m, []task.Task{{ID: "x"}})

	view := m.View()
	assert.Contains(t, view, "Untitled Task")
	assert.Contains(t, view, "No due date")
	assert.Contains(t, view, "Today")
	assert.True(t, strings.Contains(view, "Low"), "missing priority renders as Low")
}
