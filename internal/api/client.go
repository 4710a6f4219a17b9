package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tuido/internal/model"
)

// FetchError is the single failure kind surfaced by the client. A network
// error, a non-2xx status and an undecodable body all end up here; callers
// are not expected to tell them apart.
type FetchError struct {
	Op     string // "list", "get", "create", "update", "delete"
	Status int    // HTTP status, 0 when the request never completed
	Err    error  // underlying cause, nil for plain status failures
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("api %s: unexpected status %d", e.Op, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config carries everything the client needs to reach the server.
type Config struct {
	BaseURL  string
	Token    string // optional bearer token, sent when non-empty
	PageSize int    // size param on List, defaults to 200
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client translates the five todo operations into HTTP calls against
// {base}/api/v1/todos. It never retries and never caches: one user intent,
// one round trip.
type Client struct {
	base     *url.URL
	http     *http.Client
	token    string
	pageSize int
	log      *zap.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing scheme or host", cfg.BaseURL)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:     base,
		http:     &http.Client{Timeout: cfg.Timeout},
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		log:      log,
	}, nil
}

// page is the list envelope. A missing content field means an empty list,
// not an error.
type page struct {
	Content []model.Todo `json:"content"`
}

// List fetches the first page, sized large enough that a personal list fits
// in one request.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	u := c.endpoint("")
	q := u.Query()
	q.Set("page", "0")
	q.Set("size", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	var pg page
	if err := c.do(ctx, "list", http.MethodGet, u, nil, &pg); err != nil {
		return nil, err
	}
	if pg.Content == nil {
		return []model.Todo{}, nil
	}
	return pg.Content, nil
}

func (c *Client) Get(ctx context.Context, id int64) (model.Todo, error) {
	var t model.Todo
	err := c.do(ctx, "get", http.MethodGet, c.endpoint(strconv.FormatInt(id, 10)), nil, &t)
	return t, err
}

func (c *Client) Create(ctx context.Context, draft model.Draft) (model.Todo, error) {
	var t model.Todo
	err := c.do(ctx, "create", http.MethodPost, c.endpoint(""), draft, &t)
	return t, err
}

// Update sends the FULL record: the server replaces the row wholesale, so
// every field the client holds goes back on the wire.
func (c *Client) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	var t model.Todo
	err := c.do(ctx, "update", http.MethodPut, c.endpoint(strconv.FormatInt(todo.ID, 10)), todo, &t)
	return t, err
}

// Delete expects an empty-body success; the response is not parsed.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, c.endpoint(strconv.FormatInt(id, 10)), nil, nil)
}

func (c *Client) endpoint(suffix string) *url.URL {
	u := c.base.JoinPath("api", "v1", "todos")
	if suffix != "" {
		u = u.JoinPath(suffix)
	}
	return u
}

// do performs one round trip and normalizes every failure into *FetchError.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{Op: op, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
