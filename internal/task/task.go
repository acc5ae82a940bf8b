package task

import (
	"strings"
	"time"
)

// Priority labels the backend is known to use. The set is open ended:
// unknown labels are kept as-is and only affect the display fallback.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const dueDateLayout = "2006-01-02"

// Task mirrors one entry of the remote collection. ID and CreatedAt are
// assigned by the server and never synthesized client-side.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Priority  string     `json:"priority"`
	DueDate   *string    `json:"due_date"`
	CreatedAt *time.Time `json:"created_at"`
}

// DisplayTitle returns the title or a placeholder when the server sent none.
func (t Task) DisplayTitle() string {
	if t.Title == "" {
		return "Untitled Task"
	}
	return t.Title
}

// DisplayPriority falls back to "Low" for display only; the stored value
// is never coerced.
func (t Task) DisplayPriority() string {
	if t.Priority == "" {
		return PriorityLow
	}
	return t.Priority
}

func (t Task) DisplayDueDate() string {
	if t.DueDate == nil || *t.DueDate == "" {
		return "No due date"
	}
	if d, err := time.Parse(dueDateLayout, *t.DueDate); err == nil {
		return d.Format("Mon, Jan 2")
	}
	if d, err := time.Parse(time.RFC3339, *t.DueDate); err == nil {
		return d.Format("Mon, Jan 2")
	}
	return *t.DueDate
}

func (t Task) DisplayCreatedAt() string {
	if t.CreatedAt == nil {
		return "Today"
	}
	return t.CreatedAt.Format("Jan 2")
}

// Filter narrows the displayed list. Empty fields match everything.
// It is transient, client-only state and is never sent to the server.
type Filter struct {
	Search   string
	Priority string
}

func (f Filter) Active() bool {
	return f.Search != "" || f.Priority != ""
}

// Visible returns the tasks matching the filter, preserving the relative
// order the server returned. The search matches case-insensitively on the
// title; the priority must match exactly, case-sensitively. Tasks missing
// a title or priority never match a non-empty search or priority filter.
func Visible(tasks []Task, f Filter) []Task {
	if !f.Active() {
		return tasks
	}
	search := strings.ToLower(f.Search)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && (t.Title == "" || !strings.Contains(strings.ToLower(t.Title), search)) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Summarize counts over the full, unfiltered list.
func Summarize(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
