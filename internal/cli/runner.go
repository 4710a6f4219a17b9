package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tuido/internal/api"
	"tuido/internal/model"
	"tuido/internal/tui"
)

// Options tune behavior from root flags.
type Options struct {
	Plain bool // `ls` prints a static panel instead of opening the TUI
	Group bool // group plain output by pending/done
}

// ---------------------------------------------------
// CLI router
// ---------------------------------------------------

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(client *api.Client, log *zap.Logger, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(client, log, opt)

	case "add":
		if len(a) == 0 {
			fail("usage: tuido add <title...>")
			return 2
		}
		return doAdd(client, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			fail("usage: tuido done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail("done: not a number: " + a[0])
			return 2
		}
		return doToggle(client, n)

	case "rm":
		if len(a) != 1 {
			fail("usage: tuido rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail("rm: not a number: " + a[0])
			return 2
		}
		return doRemove(client, n)

	case "show":
		if len(a) != 1 {
			fail("usage: tuido show <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail("show: not a number: " + a[0])
			return 2
		}
		return doShow(client, n)

	case "edit":
		if len(a) < 2 {
			fail("usage: tuido edit <index> <title...>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail("edit: not a number: " + a[0])
			return 2
		}
		return doEdit(client, n, strings.Join(a[1:], " "))

	case "auth":
		if len(a) == 0 {
			fail("usage: tuido auth <login|logout|status>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin()
		case "logout":
			return doAuthLogout()
		case "status":
			return doAuthStatus()
		default:
			fail("usage: tuido auth <login|logout|status>")
			return 2
		}
	}

	fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`tuido - a terminal client for your todo server

Usage:
  tuido <subcommand> [args]

Subcommands:
  ls                        Open the interactive list (use -plain for a one-shot print)
  add <title...>            Add a new todo (title can be multiple words)
  show <index>              Print every field of the todo at 1-based index
  done <index>              Toggle completion for the todo at 1-based index
  rm <index>                Delete the todo at 1-based index
  edit <index> <title...>   Replace the title of the todo at 1-based index
  auth <login|logout|status>   Bearer token for servers that require one

Examples:
  tuido add "Buy milk"
  tuido ls
  tuido done 2
  tuido rm 3
`)
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// resolve maps a user-facing 1-based index onto the server's list order.
func resolve(todos []model.Todo, userIndex int) (model.Todo, bool) {
	if userIndex < 1 || userIndex > len(todos) {
		fail(fmt.Sprintf("index out of range: have %d, got %d", len(todos), userIndex))
		fmt.Fprintln(os.Stderr, mutedStyle.Render("Hint: run `tuido ls -plain` to see valid indexes"))
		return model.Todo{}, false
	}
	return todos[userIndex-1], true
}

// ---------------------------------------------------
// Auth subcommands (use functions from internal/api)
// ---------------------------------------------------

func doAuthLogin() int {
	fmt.Print("Paste your token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		fail("read token: " + err.Error())
		return 1
	}
	if err := api.SaveToken(token); err != nil {
		fail("save token: " + err.Error())
		return 1
	}
	ok("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := api.LoadToken()
	if ti != nil && ti.Source == "env" {
		ok("token is provided by TUIDO_TOKEN env var (nothing to delete)")
		return 0
	}
	if err := api.DeleteToken(); err != nil {
		fail("logout: " + err.Error())
		return 1
	}
	ok("logged out")
	return 0
}

func doAuthStatus() int {
	ti, _ := api.LoadToken()
	if ti == nil {
		fmt.Println(mutedStyle.Render("not logged in"))
		fmt.Println("Run: tuido auth login")
		return 0
	}
	fmt.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: TUIDO_TOKEN")
	return 0
}

// ---------------------------------------------------
// Core subcommands (remote CRUD)
// ---------------------------------------------------

func doList(client *api.Client, log *zap.Logger, opt Options) int {
	if !opt.Plain {
		if err := tui.Run(client, log); err != nil {
			fail("tui: " + err.Error())
			return 1
		}
		return 0
	}

	ctx, cancel := opCtx()
	defer cancel()
	todos, err := client.List(ctx)
	if err != nil {
		fail("load: " + err.Error())
		return 1
	}

	completed, active := model.Counts(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), completed,
		pendingStyle.Render("•"), active,
		accentStyle.Render("Total"), len(todos),
	)

	lines := []string{header, mutedStyle.Render(progressBar(completed, len(todos), 28)), ""}
	if opt.Group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	panel(lines)
	return 0
}

func doAdd(client *api.Client, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		fail("add: empty title")
		return 2
	}
	ctx, cancel := opCtx()
	defer cancel()
	todo, err := client.Create(ctx, model.Draft{
		Title:     title,
		Completed: false,
		Priority:  model.PriorityMedium,
	})
	if err != nil {
		fail("add: " + err.Error())
		return 1
	}
	ok(fmt.Sprintf("added #%d", todo.ID))
	return 0
}

func doShow(client *api.Client, userIndex int) int {
	ctx, cancel := opCtx()
	defer cancel()
	todos, err := client.List(ctx)
	if err != nil {
		fail("load: " + err.Error())
		return 1
	}
	picked, found := resolve(todos, userIndex)
	if !found {
		return 2
	}
	// Re-fetch by id so the output is the server's current record, not the
	// snapshot the index was resolved against.
	todo, err := client.Get(ctx, picked.ID)
	if err != nil {
		fail("show: " + err.Error())
		return 1
	}

	status := pendingStyle.Render("pending")
	if todo.Completed {
		status = successStyle.Render("done")
	}
	lines := []string{
		titleStyle.Render(todo.Title),
		"",
		fmt.Sprintf("id:        %d", todo.ID),
		"status:    " + status,
		"priority:  " + string(todo.Priority),
	}
	if todo.Description != nil {
		lines = append(lines, "notes:     "+*todo.Description)
	}
	if todo.DueDate != nil {
		lines = append(lines, "due:       "+*todo.DueDate)
	}
	if len(todo.Tags) > 0 {
		lines = append(lines, "tags:      "+strings.Join(todo.Tags, ", "))
	}
	panel(lines)
	return 0
}

func doToggle(client *api.Client, userIndex int) int {
	ctx, cancel := opCtx()
	defer cancel()
	todos, err := client.List(ctx)
	if err != nil {
		fail("load: " + err.Error())
		return 1
	}
	todo, found := resolve(todos, userIndex)
	if !found {
		return 2
	}
	todo.Completed = !todo.Completed
	if _, err := client.Update(ctx, todo); err != nil {
		fail("toggle: " + err.Error())
		return 1
	}
	ok("toggled")
	return 0
}

func doEdit(client *api.Client, userIndex int, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		fail("edit: empty title")
		return 2
	}
	ctx, cancel := opCtx()
	defer cancel()
	todos, err := client.List(ctx)
	if err != nil {
		fail("load: " + err.Error())
		return 1
	}
	todo, found := resolve(todos, userIndex)
	if !found {
		return 2
	}
	todo.Title = title
	if _, err := client.Update(ctx, todo); err != nil {
		fail("edit: " + err.Error())
		return 1
	}
	ok("updated")
	return 0
}

func doRemove(client *api.Client, userIndex int) int {
	ctx, cancel := opCtx()
	defer cancel()
	todos, err := client.List(ctx)
	if err != nil {
		fail("load: " + err.Error())
		return 1
	}
	todo, found := resolve(todos, userIndex)
	if !found {
		return 2
	}
	if err := client.Delete(ctx, todo.ID); err != nil {
		fail("rm: " + err.Error())
		return 1
	}
	ok("removed")
	return 0
}

// ---------------------------------------------------
// rendering helpers
// ---------------------------------------------------

func flatLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{mutedStyle.Render("no todos")}
	}
	out := make([]string, 0, len(todos))
	for i, t := range todos {
		idx := fmt.Sprintf("%2d.", i+1)
		box := mutedStyle.Render("☐")
		title := t.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		if t.Completed {
			box = successStyle.Render("☑")
			title = doneStyle.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s", mutedStyle.Render(idx), box, title))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	var lines []string
	lines = append(lines, accentStyle.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, accentStyle.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
