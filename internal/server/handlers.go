package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tuido/internal/model"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Handler exposes the todo resource over HTTP. The update contract is a
// full-record PUT: the row is replaced with exactly what the body carries.
type Handler struct {
	store *Store
	log   *zap.Logger
}

func NewHandler(store *Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, log: log}
}

// Router wires the five operations plus middleware.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID, h.accessLog)

	r.HandleFunc("/api/v1/todos", h.listTodos).Methods("GET")
	r.HandleFunc("/api/v1/todos", h.createTodo).Methods("POST")
	r.HandleFunc("/api/v1/todos/{id:[0-9]+}", h.getTodo).Methods("GET")
	r.HandleFunc("/api/v1/todos/{id:[0-9]+}", h.updateTodo).Methods("PUT")
	r.HandleFunc("/api/v1/todos/{id:[0-9]+}", h.deleteTodo).Methods("DELETE")

	return r
}

// pageEnvelope wraps list responses the way paged REST backends do.
type pageEnvelope struct {
	Content       []model.Todo `json:"content"`
	Page          int          `json:"page"`
	Size          int          `json:"size"`
	TotalElements int          `json:"totalElements"`
}

func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", defaultPageSize)
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	todos, err := h.store.List(r.Context(), page*size, size)
	if err != nil {
		h.serverError(w, "list todos", err)
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		h.serverError(w, "count todos", err)
		return
	}

	writeJSON(w, http.StatusOK, pageEnvelope{
		Content:       todos,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

func (h *Handler) getTodo(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	todo, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err != nil {
		h.serverError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		writeError(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if !validPriority(draft.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be LOW, MEDIUM or HIGH")
		return
	}

	todo, err := h.store.Create(r.Context(), draft)
	if err != nil {
		h.serverError(w, "create todo", err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (h *Handler) updateTodo(w http.ResponseWriter, r *http.Request) {
	var todo model.Todo
	if err := json.NewDecoder(r.Body).Decode(&todo); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The path, not the body, names the resource.
	todo.ID = pathID(r)
	todo.Title = strings.TrimSpace(todo.Title)
	if todo.Title == "" {
		writeError(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}
	if !validPriority(todo.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be LOW, MEDIUM or HIGH")
		return
	}

	updated, err := h.store.Replace(r.Context(), todo)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err != nil {
		h.serverError(w, "update todo", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err != nil {
		h.serverError(w, "delete todo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------
// middleware
// ---------------------------------------------------

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("request_id", w.Header().Get("X-Request-Id")),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ---------------------------------------------------
// helpers
// ---------------------------------------------------

func pathID(r *http.Request) int64 {
	// The route pattern guarantees digits.
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func validPriority(p model.Priority) bool {
	switch p {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) serverError(w http.ResponseWriter, what string, err error) {
	h.log.Error(what, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server error")
}
