// Package state owns the client's in-memory view of the remote task
// collection: the snapshot from the last completed reload, the active
// display filter and the id of the task being edited, if any. It has no
// side effects; callers re-render after mutating it.
package state

import "taskdeck/internal/task"

type Store struct {
	tasks     []task.Task
	filter    task.Filter
	editingID string
}

func New() *Store {
	return &Store{}
}

// ReplaceAll swaps in a full snapshot. No diffing, no merging: the list
// is always authoritative as of the last completed fetch.
func (s *Store) ReplaceAll(tasks []task.Task) {
	s.tasks = make([]task.Task, len(tasks))
	copy(s.tasks, tasks)
}

func (s *Store) Tasks() []task.Task {
	return s.tasks
}

// Visible applies the active filter, preserving server order.
func (s *Store) Visible() []task.Task {
	return task.Visible(s.tasks, s.filter)
}

func (s *Store) Filter() task.Filter {
	return s.filter
}

// SetFilter updates only the provided fields; nil keeps the previous value.
func (s *Store) SetFilter(search, priority *string) {
	if search != nil {
		s.filter.Search = *search
	}
	if priority != nil {
		s.filter.Priority = *priority
	}
}

// SetEditing marks id as the single task in edit mode, replacing any
// previous one. The one-row-at-a-time rule is enforced by the controller
// checking EditingID before calling this.
func (s *Store) SetEditing(id string) {
	s.editingID = id
}

func (s *Store) ClearEditing() {
	s.editingID = ""
}

func (s *Store) EditingID() string {
	return s.editingID
}

func (s *Store) Stats() task.Stats {
	return task.Summarize(s.tasks)
}
