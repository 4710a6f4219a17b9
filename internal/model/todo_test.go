package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounts(t *testing.T) {
	completed, active := Counts(nil)
	assert.Zero(t, completed)
	assert.Zero(t, active)

	todos := []Todo{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B", Completed: true},
		{ID: 3, Title: "C"},
	}
	completed, active = Counts(todos)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, active)
	assert.Equal(t, len(todos), completed+active)
}

func TestUnknownOptionalsMarshalAbsent(t *testing.T) {
	b, err := json.Marshal(Todo{ID: 1, Title: "A", Priority: PriorityMedium})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "completed", "completed always on the wire")
	assert.NotContains(t, raw, "description")
	assert.NotContains(t, raw, "dueDate")
	assert.NotContains(t, raw, "tags")
}
