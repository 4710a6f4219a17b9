package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuido/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStoreCreateAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, model.Draft{Title: "a", Priority: model.PriorityMedium})
	require.NoError(t, err)
	b, err := s.Create(ctx, model.Draft{Title: "b", Priority: model.PriorityMedium})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreReplaceRoundTripsOptionals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, model.Draft{Title: "a", Priority: model.PriorityLow})
	require.NoError(t, err)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.Tags)

	desc := "notes"
	due := "2026-09-15"
	created.Description = &desc
	created.DueDate = &due
	created.Tags = []string{"x", "y"}

	updated, err := s.Replace(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestStoreReplaceUnknownID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Replace(context.Background(), model.Todo{ID: 42, Title: "ghost", Priority: model.PriorityMedium})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDeleteUnknownID(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Delete(context.Background(), 42), ErrNotFound)
}

func TestStoreListPages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, model.Draft{Title: title, Priority: model.PriorityMedium})
		require.NoError(t, err)
	}

	page, err := s.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Title)
	assert.Equal(t, "c", page[1].Title)

	empty, err := s.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
