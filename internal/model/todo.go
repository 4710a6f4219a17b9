package model

// Priority buckets as the server enumerates them.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Todo is the server's canonical representation of one list entry.
//
// The client only ever edits Title and Completed, but it must carry every
// other field through unchanged: updates are full-record PUTs, so a field
// dropped here would be erased server-side. Optional fields are pointers or
// slices with omitempty so "unknown on this client" marshals as absent.
type Todo struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority,omitempty"`
	Description *string  `json:"description,omitempty"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Draft is the create payload. The server assigns the id.
type Draft struct {
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
}

// Counts splits a collection into completed and active totals.
func Counts(todos []Todo) (completed, active int) {
	for _, t := range todos {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return
}
