package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"tuido/internal/model"
)

// ErrNotFound is returned for ids the table does not hold.
var ErrNotFound = errors.New("todo not found")

// OpenDB opens (or creates) the sqlite database and ensures the schema.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT 'MEDIUM',
		description TEXT,
		due_date TEXT,
		tags TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create todos table: %w", err)
	}

	return db, nil
}

// Store handles database operations for todos.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const todoColumns = "id, title, completed, priority, description, due_date, tags"

// List returns one page of todos in insertion order.
func (s *Store) List(ctx context.Context, offset, limit int) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Todo, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = ?", id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrNotFound
	}
	return t, err
}

// Create inserts a new row and returns it with the assigned id.
func (s *Store) Create(ctx context.Context, draft model.Draft) (model.Todo, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (title, completed, priority) VALUES (?, ?, ?)",
		draft.Title, draft.Completed, string(draft.Priority))
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to read insert id: %w", err)
	}
	return s.Get(ctx, id)
}

// Replace overwrites every column of the row: the API's update contract is a
// full-record PUT, so absent optional fields genuinely clear their columns.
func (s *Store) Replace(ctx context.Context, todo model.Todo) (model.Todo, error) {
	tags, err := marshalTags(todo.Tags)
	if err != nil {
		return model.Todo{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ?, priority = ?, description = ?, due_date = ?, tags = ?
		 WHERE id = ?`,
		todo.Title, todo.Completed, string(todo.Priority),
		nullable(todo.Description), nullable(todo.DueDate), tags, todo.ID)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return model.Todo{}, ErrNotFound
	}
	return s.Get(ctx, todo.ID)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (model.Todo, error) {
	var (
		t           model.Todo
		priority    string
		description sql.NullString
		dueDate     sql.NullString
		tags        sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &t.Completed, &priority, &description, &dueDate, &tags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, err
		}
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	t.Priority = model.Priority(priority)
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
			return model.Todo{}, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return t, nil
}

func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(b), nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
