package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuido/internal/model"
)

// fakeClient implements Client in memory and records every call, so tests
// can assert both what was sent and that nothing was sent.
type fakeClient struct {
	todos  []model.Todo
	nextID int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	creates []model.Draft
	updates []model.Todo
	deletes []int64
	lists   int
}

func (f *fakeClient) List(_ context.Context) ([]model.Todo, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Todo(nil), f.todos...), nil
}

func (f *fakeClient) Create(_ context.Context, draft model.Draft) (model.Todo, error) {
	f.creates = append(f.creates, draft)
	if f.createErr != nil {
		return model.Todo{}, f.createErr
	}
	f.nextID++
	t := model.Todo{
		ID:        f.nextID,
		Title:     draft.Title,
		Completed: draft.Completed,
		Priority:  draft.Priority,
	}
	f.todos = append(f.todos, t)
	return t, nil
}

func (f *fakeClient) Update(_ context.Context, todo model.Todo) (model.Todo, error) {
	f.updates = append(f.updates, todo)
	if f.updateErr != nil {
		return model.Todo{}, f.updateErr
	}
	for i, t := range f.todos {
		if t.ID == todo.ID {
			f.todos[i] = todo
		}
	}
	return todo, nil
}

func (f *fakeClient) Delete(_ context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.todos {
		if t.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeClient) callCount() int {
	return f.lists + len(f.creates) + len(f.updates) + len(f.deletes)
}

// ---------------------------------------------------
// helpers
// ---------------------------------------------------

func newTestApp(t *testing.T, fake *fakeClient) App {
	t.Helper()
	a := New(fake, nil)
	a, _ = apply(t, a, tea.WindowSizeMsg{Width: 80, Height: 24})
	return a
}

func apply(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	require.True(t, ok, "Update must return an App")
	return next, cmd
}

// step runs the command produced by a key press and applies its result,
// which is exactly what the bubbletea runtime would do.
func step(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	a, next := apply(t, a, cmd())
	require.Nil(t, next)
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, a App, todos []model.Todo) App {
	t.Helper()
	a, _ = apply(t, a, todosLoadedMsg{todos: todos})
	return a
}

func strPtr(s string) *string { return &s }

func twoTodos() []model.Todo {
	return []model.Todo{
		{ID: 1, Title: "A", Completed: false, Priority: model.PriorityHigh,
			Description: strPtr("first"), Tags: []string{"home"}},
		{ID: 2, Title: "B", Completed: true, Priority: model.PriorityLow,
			DueDate: strPtr("2026-09-01")},
	}
}

func assertCounts(t *testing.T, a App, total, completed, active int) {
	t.Helper()
	c, p := model.Counts(a.todos())
	assert.Equal(t, total, len(a.todos()), "total")
	assert.Equal(t, completed, c, "completed")
	assert.Equal(t, active, p, "active")
	assert.Equal(t, total, c+p, "total must equal completed+active")
}

// ---------------------------------------------------
// initial load
// ---------------------------------------------------

func TestInitialLoadSuccess(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	assert.True(t, a.loading)

	a = step(t, a, a.loadCmd())

	assert.False(t, a.loading)
	assert.Empty(t, a.errMsg)
	assertCounts(t, a, 2, 1, 1)
}

func TestInitialLoadFailureShowsBanner(t *testing.T) {
	fake := &fakeClient{listErr: errors.New("boom")}
	a := newTestApp(t, fake)

	a = step(t, a, a.loadCmd())

	assert.False(t, a.loading, "loading flag must end false")
	assert.Contains(t, a.errMsg, "Failed to load todos")
	assert.Empty(t, a.todos(), "collection stays empty on first-load failure")
}

func TestEmptyListLoads(t *testing.T) {
	a := newTestApp(t, &fakeClient{})
	a = step(t, a, a.loadCmd())
	assertCounts(t, a, 0, 0, 0)
	assert.Contains(t, a.View(), "Total")
}

// ---------------------------------------------------
// add
// ---------------------------------------------------

func TestAddAppendsServerTodo(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), nextID: 2}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("a"))
	a, _ = apply(t, a, key("Buy milk"))
	a, cmd := apply(t, a, key("enter"))
	a = step(t, a, cmd)

	require.Len(t, fake.creates, 1)
	assert.Equal(t, model.Draft{Title: "Buy milk", Completed: false, Priority: model.PriorityMedium}, fake.creates[0])

	todos := a.todos()
	require.Len(t, todos, 3)
	last := todos[2]
	assert.Equal(t, int64(3), last.ID, "id comes from the server")
	assert.Equal(t, "Buy milk", last.Title)
	assert.False(t, last.Completed)

	assert.Equal(t, modeList, a.mode, "input closes on success")
	assert.Empty(t, a.input.Value(), "draft cleared on success")
	assertCounts(t, a, 3, 1, 2)
}

func TestAddWhitespaceDraftSendsNothing(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	calls := fake.callCount()

	a, _ = apply(t, a, key("a"))
	a, _ = apply(t, a, key("   "))
	a, cmd := apply(t, a, key("enter"))

	assert.Nil(t, cmd, "no request for an all-whitespace draft")
	assert.Equal(t, calls, fake.callCount())
	assert.Equal(t, modeAdd, a.mode, "input stays open")
	assertCounts(t, a, 2, 1, 1)
}

func TestAddFailureKeepsDraft(t *testing.T) {
	fake := &fakeClient{createErr: errors.New("boom")}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("a"))
	a, _ = apply(t, a, key("Buy milk"))
	a, cmd := apply(t, a, key("enter"))
	a = step(t, a, cmd)

	assert.Contains(t, a.errMsg, "Failed to add todo")
	assert.Equal(t, modeAdd, a.mode, "input stays open on failure")
	assert.Equal(t, "Buy milk", a.input.Value(), "typed input is not lost")
	assert.Empty(t, a.todos())
}

// ---------------------------------------------------
// toggle
// ---------------------------------------------------

func TestToggleIsNotOptimistic(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	before := a.todos()[0]

	a, cmd := apply(t, a, key(" "))
	require.NotNil(t, cmd)
	assert.Equal(t, before, a.todos()[0], "row unchanged until the server echoes")

	a = step(t, a, cmd)
	assert.True(t, a.todos()[0].Completed)
}

func TestDoubleToggleRestoresOriginal(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	original := a.todos()[0]

	for i := 0; i < 2; i++ {
		var cmd tea.Cmd
		a, cmd = apply(t, a, key(" "))
		a = step(t, a, cmd)
	}

	assert.Equal(t, original, a.todos()[0], "two toggles land back on the starting record")

	// Every field beyond completed passed through unchanged on the wire.
	require.Len(t, fake.updates, 2)
	sent := fake.updates[0]
	assert.Equal(t, original.Title, sent.Title)
	assert.Equal(t, original.Priority, sent.Priority)
	assert.Equal(t, original.Description, sent.Description)
	assert.Equal(t, original.Tags, sent.Tags)
	assert.NotEqual(t, original.Completed, sent.Completed)
}

func TestToggleFailureLeavesRow(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), updateErr: errors.New("boom")}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	before := a.todos()[0]

	a, cmd := apply(t, a, key(" "))
	a = step(t, a, cmd)

	assert.Contains(t, a.errMsg, "Failed to update todo")
	assert.Equal(t, before, a.todos()[0], "no toggled state survives a failure")
	assertCounts(t, a, 2, 1, 1)
}

// ---------------------------------------------------
// edit
// ---------------------------------------------------

func TestStartEditSeedsDraft(t *testing.T) {
	a := newTestApp(t, &fakeClient{todos: twoTodos()})
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("e"))

	assert.Equal(t, modeEdit, a.mode)
	assert.Equal(t, int64(1), a.editID)
	assert.Equal(t, "A", a.input.Value())
}

func TestMovingEditCursorDiscardsDraft(t *testing.T) {
	a := newTestApp(t, &fakeClient{todos: twoTodos()})
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("e"))
	a, _ = apply(t, a, key(" typed junk"))
	a, _ = apply(t, a, key("down"))

	assert.Equal(t, modeEdit, a.mode, "still exactly one edit target")
	assert.Equal(t, int64(2), a.editID, "cursor moved to the other row")
	assert.Equal(t, "B", a.input.Value(), "previous unsaved draft discarded")
}

func TestSaveEditEmptyDraftStaysInEdit(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	calls := fake.callCount()

	a, _ = apply(t, a, key("e"))
	a.input.SetValue("   ")
	a, cmd := apply(t, a, key("enter"))

	assert.Nil(t, cmd, "no request for an all-whitespace title")
	assert.Equal(t, calls, fake.callCount())
	assert.Equal(t, modeEdit, a.mode, "stays in edit mode")
	assert.Equal(t, "A", a.todos()[0].Title, "local title unchanged")
}

func TestSaveEditReplacesInPlace(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("e"))
	a.input.SetValue("Renamed")
	a, cmd := apply(t, a, key("enter"))
	a = step(t, a, cmd)

	todos := a.todos()
	assert.Equal(t, "Renamed", todos[0].Title)
	assert.Equal(t, int64(1), todos[0].ID, "order preserved, no reinsert")
	assert.Equal(t, strPtr("first"), todos[0].Description, "optional fields pass through")
	assert.Equal(t, modeList, a.mode, "edit mode cleared")

	require.Len(t, fake.updates, 1)
	assert.Equal(t, []string{"home"}, fake.updates[0].Tags, "full record sent")
}

func TestSaveEditFailureStaysInEdit(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), updateErr: errors.New("boom")}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, _ = apply(t, a, key("e"))
	a.input.SetValue("Renamed")
	a, cmd := apply(t, a, key("enter"))
	a = step(t, a, cmd)

	assert.Contains(t, a.errMsg, "Failed to update todo")
	assert.Equal(t, modeEdit, a.mode, "remains in edit mode")
	assert.Equal(t, "Renamed", a.input.Value(), "draft intact")
	assert.Equal(t, "A", a.todos()[0].Title, "server title untouched locally")
}

func TestCancelEditNeverCallsNetwork(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	calls := fake.callCount()

	a, _ = apply(t, a, key("e"))
	a, _ = apply(t, a, key(" junk"))
	a, cmd := apply(t, a, key("esc"))

	assert.Nil(t, cmd)
	assert.Equal(t, calls, fake.callCount(), "cancel is purely local")
	assert.Equal(t, modeList, a.mode)
	assert.Zero(t, a.editID)
	assert.Empty(t, a.input.Value())
}

// ---------------------------------------------------
// delete
// ---------------------------------------------------

func TestDeleteRemovesById(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, cmd := apply(t, a, key("d"))
	a = step(t, a, cmd)

	require.Len(t, fake.deletes, 1)
	assert.Equal(t, int64(1), fake.deletes[0])
	todos := a.todos()
	require.Len(t, todos, 1)
	assert.Equal(t, int64(2), todos[0].ID, "only id=2 remains")
	assertCounts(t, a, 1, 1, 0)
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), deleteErr: errors.New("boom")}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, cmd := apply(t, a, key("d"))
	a = step(t, a, cmd)

	assert.Contains(t, a.errMsg, "Failed to delete todo")
	assertCounts(t, a, 2, 1, 1)
}

// ---------------------------------------------------
// error banner and counts
// ---------------------------------------------------

func TestDismissErrorClearsOnlyBanner(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), deleteErr: errors.New("boom")}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, cmd := apply(t, a, key("d"))
	a = step(t, a, cmd)
	require.NotEmpty(t, a.errMsg)

	a, _ = apply(t, a, key("esc"))

	assert.Empty(t, a.errMsg)
	assertCounts(t, a, 2, 1, 1)
}

func TestCountsInvariantAcrossMutations(t *testing.T) {
	fake := &fakeClient{todos: twoTodos(), nextID: 2}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())
	assertCounts(t, a, 2, 1, 1)

	// Add one.
	a, _ = apply(t, a, key("a"))
	a, _ = apply(t, a, key("C"))
	a, cmd := apply(t, a, key("enter"))
	a = step(t, a, cmd)
	assertCounts(t, a, 3, 1, 2)

	// Toggle the first row.
	a, cmd = apply(t, a, key(" "))
	a = step(t, a, cmd)
	assertCounts(t, a, 3, 2, 1)

	// Delete the first row.
	a, cmd = apply(t, a, key("d"))
	a = step(t, a, cmd)
	assertCounts(t, a, 2, 1, 1)
}

func TestHeaderShowsTotals(t *testing.T) {
	a := newTestApp(t, &fakeClient{todos: []model.Todo{
		{ID: 1, Title: "A", Completed: false},
		{ID: 2, Title: "B", Completed: true},
	}})
	a = step(t, a, a.loadCmd())

	view := a.View()
	assert.Contains(t, view, "Total")
	assert.Contains(t, view, "2")
}

// Late responses overwrite earlier state: fire two toggles on the same row
// and apply the echoes out of order.
func TestLastResponseWins(t *testing.T) {
	fake := &fakeClient{todos: twoTodos()}
	a := newTestApp(t, fake)
	a = step(t, a, a.loadCmd())

	a, first := apply(t, a, key(" "))
	a, second := apply(t, a, key(" "))

	firstMsg := first()
	secondMsg := second()

	a, _ = apply(t, a, secondMsg)
	a, _ = apply(t, a, firstMsg)

	// Whatever landed last is what the list shows.
	assert.True(t, a.todos()[0].Completed)
	assertCounts(t, a, 2, 2, 0)
}
