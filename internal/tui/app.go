package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	bkey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tuido/internal/model"
)

// Client is the slice of the API the list screen needs. Every user intent
// maps to exactly one of these calls.
type Client interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, draft model.Draft) (model.Todo, error)
	Update(ctx context.Context, todo model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

// Result messages produced by network commands. State only ever changes when
// one of these is applied, so a late response simply overwrites whatever an
// earlier one wrote: last response wins.
type (
	todosLoadedMsg struct{ todos []model.Todo }
	todoCreatedMsg struct{ todo model.Todo }
	todoUpdatedMsg struct {
		todo     model.Todo
		fromEdit bool
	}
	todoDeletedMsg struct{ id int64 }
	opFailedMsg    struct {
		op  string
		err error
	}
)

const (
	opLoad   = "load"
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

// bannerFor maps a failed operation to its user-visible message. The HTTP
// detail goes to the log file only.
func bannerFor(op string) string {
	switch op {
	case opLoad:
		return "Failed to load todos. Is the server running?"
	case opAdd:
		return "Failed to add todo"
	case opUpdate:
		return "Failed to update todo"
	case opDelete:
		return "Failed to delete todo"
	}
	return "Something went wrong"
}

// listItem adapts a Todo to bubbles/list.Item.
type listItem struct{ todo model.Todo }

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate: single-line rows, checkbox plus title.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Title
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	switch it.todo.Priority {
	case model.PriorityHigh:
		text += " " + pendingStyle.Render("!")
	case model.PriorityLow:
		text += " " + mutedStyle.Render("~")
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// App is the interactive list screen. It owns all client-side state: the
// collection (in server order, appended on create), the add/edit drafts, the
// single edit target, the startup loading flag and the dismissible error
// banner. Mutations are applied from server responses, never optimistically.
type App struct {
	client Client
	log    *zap.Logger

	list  list.Model
	input textinput.Model
	spin  spinner.Model

	mode    mode
	editID  int64
	loading bool
	errMsg  string

	width  int
	height int
}

func New(client Client, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("todo", "todos")
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.AdditionalShortHelpKeys = extraKeys
	l.AdditionalFullHelpKeys = extraKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return App{
		client:  client,
		log:     log,
		list:    l,
		input:   ti,
		spin:    sp,
		loading: true,
	}
}

func extraKeys() []bkey.Binding {
	return []bkey.Binding{
		bkey.NewBinding(bkey.WithKeys("a"), bkey.WithHelp("a", "add")),
		bkey.NewBinding(bkey.WithKeys("e"), bkey.WithHelp("e", "edit")),
		bkey.NewBinding(bkey.WithKeys(" "), bkey.WithHelp("space", "toggle")),
		bkey.NewBinding(bkey.WithKeys("d"), bkey.WithHelp("d", "delete")),
	}
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(client Client, log *zap.Logger) error {
	p := tea.NewProgram(New(client, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ---------------------------------------------------
// Commands (one network round trip each, no retries)
// ---------------------------------------------------

func (a App) loadCmd() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		todos, err := c.List(context.Background())
		if err != nil {
			return opFailedMsg{op: opLoad, err: err}
		}
		return todosLoadedMsg{todos: todos}
	}
}

func (a App) createCmd(title string) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		todo, err := c.Create(context.Background(), model.Draft{
			Title:     title,
			Completed: false,
			Priority:  model.PriorityMedium,
		})
		if err != nil {
			return opFailedMsg{op: opAdd, err: err}
		}
		return todoCreatedMsg{todo: todo}
	}
}

// updateCmd sends the full record; the caller prepares the mutated copy.
func (a App) updateCmd(todo model.Todo, fromEdit bool) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		echo, err := c.Update(context.Background(), todo)
		if err != nil {
			return opFailedMsg{op: opUpdate, err: err}
		}
		return todoUpdatedMsg{todo: echo, fromEdit: fromEdit}
	}
}

func (a App) deleteCmd(id int64) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		if err := c.Delete(context.Background(), id); err != nil {
			return opFailedMsg{op: opDelete, err: err}
		}
		return todoDeletedMsg{id: id}
	}
}

// ---------------------------------------------------
// Bubble Tea model
// ---------------------------------------------------

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.loadCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.resize()
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case todosLoadedMsg:
		a.loading = false
		items := make([]list.Item, 0, len(msg.todos))
		for _, t := range msg.todos {
			items = append(items, listItem{todo: t})
		}
		a.list.SetItems(items)
		return a, nil

	case todoCreatedMsg:
		a.list.InsertItem(len(a.list.Items()), listItem{todo: msg.todo})
		if a.mode == modeAdd {
			a.closeInput()
		}
		return a, nil

	case todoUpdatedMsg:
		a.replaceByID(msg.todo)
		if msg.fromEdit && a.mode == modeEdit && a.editID == msg.todo.ID {
			a.closeInput()
		}
		return a, nil

	case todoDeletedMsg:
		if idx, ok := a.indexByID(msg.id); ok {
			a.list.RemoveItem(idx)
		}
		return a, nil

	case opFailedMsg:
		if msg.op == opLoad {
			a.loading = false
		}
		a.errMsg = bannerFor(msg.op)
		a.log.Warn("operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case modeAdd:
			return a.updateAdd(msg)
		case modeEdit:
			return a.updateEdit(msg)
		default:
			return a.updateList(msg)
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

// updateAdd handles keys while the new-todo input is open. A whitespace-only
// draft sends nothing; a failed create leaves the draft in place so typed
// input is not lost.
func (a App) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(a.input.Value())
		if title == "" {
			return a, nil
		}
		return a, a.createCmd(title)
	case "esc":
		a.closeInput()
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// updateEdit handles keys while a row is in inline edit. Moving the
// selection re-targets the single edit cursor and discards the old draft.
func (a App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(a.input.Value())
		if title == "" {
			return a, nil
		}
		if it, ok := a.itemByID(a.editID); ok {
			next := it.todo
			next.Title = title
			return a, a.updateCmd(next, true)
		}
		a.closeInput()
		return a, nil
	case "esc":
		a.closeInput()
		return a, nil
	case "up", "down":
		if msg.String() == "up" {
			a.list.CursorUp()
		} else {
			a.list.CursorDown()
		}
		if it, ok := a.selected(); ok {
			a.editID = it.todo.ID
			a.input.SetValue(it.todo.Title)
			a.input.CursorEnd()
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "esc":
		if a.errMsg != "" {
			a.errMsg = ""
			return a, nil
		}
		return a, tea.Quit

	case "a":
		a.mode = modeAdd
		a.input.SetValue("")
		a.input.Placeholder = "New todo title..."
		a.input.Focus()
		return a, nil

	case "e":
		if it, ok := a.selected(); ok {
			a.mode = modeEdit
			a.editID = it.todo.ID
			a.input.SetValue(it.todo.Title)
			a.input.CursorEnd()
			a.input.Placeholder = "Edit todo title..."
			a.input.Focus()
		}
		return a, nil

	case " ":
		if it, ok := a.selected(); ok {
			next := it.todo
			next.Completed = !next.Completed
			// No optimistic flip: the row changes when the echo lands.
			return a, a.updateCmd(next, false)
		}
		return a, nil

	case "d":
		if it, ok := a.selected(); ok {
			return a, a.deleteCmd(it.todo.ID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a App) View() string {
	var b strings.Builder

	completed, active := model.Counts(a.todos())
	total := completed + active
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), completed,
		pendingStyle.Render("•"), active,
		accentStyle.Render("Total"), total,
	)
	b.WriteString(header + "\n")
	b.WriteString(mutedStyle.Render(progressBar(completed, total, 28)) + "\n\n")

	if a.loading {
		b.WriteString(a.spin.View() + " loading todos...\n")
		return b.String()
	}

	b.WriteString(a.list.View())

	if a.mode == modeAdd || a.mode == modeEdit {
		label := "Add new todo"
		if a.mode == modeEdit {
			label = "Edit todo"
		}
		b.WriteString("\n" + inputBarStyle.Render(label+"\n"+a.input.View()))
	}

	if a.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("✖ "+a.errMsg) + helpStyle.Render("  (esc to dismiss)"))
	}

	return b.String()
}

// ---------------------------------------------------
// state helpers
// ---------------------------------------------------

func (a *App) resize() {
	h := a.height - 6
	if a.mode != modeList {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	a.list.SetSize(a.width-2, h)
}

func (a *App) closeInput() {
	a.mode = modeList
	a.editID = 0
	a.input.SetValue("")
	a.input.Blur()
}

func (a App) todos() []model.Todo {
	items := a.list.Items()
	out := make([]model.Todo, 0, len(items))
	for _, it := range items {
		if li, ok := it.(listItem); ok {
			out = append(out, li.todo)
		}
	}
	return out
}

func (a App) selected() (listItem, bool) {
	i := a.list.Index()
	items := a.list.Items()
	if i < 0 || i >= len(items) {
		return listItem{}, false
	}
	li, ok := items[i].(listItem)
	return li, ok
}

func (a App) indexByID(id int64) (int, bool) {
	for i, it := range a.list.Items() {
		if li, ok := it.(listItem); ok && li.todo.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (a App) itemByID(id int64) (listItem, bool) {
	if idx, ok := a.indexByID(id); ok {
		return a.list.Items()[idx].(listItem), true
	}
	return listItem{}, false
}

// replaceByID swaps the matching row in place so server order is preserved.
func (a *App) replaceByID(todo model.Todo) {
	if idx, ok := a.indexByID(todo.ID); ok {
		a.list.SetItem(idx, listItem{todo: todo})
	}
}
