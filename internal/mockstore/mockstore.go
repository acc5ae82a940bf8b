// Package mockstore is an in-memory stand-in for the hosted task
// backend. It serves the same four-verb contract the client consumes,
// for local development and integration tests. Nothing is persisted.
package mockstore

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskdeck/internal/task"
)

type patch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
	DueDate   *string `json:"due_date"`
}

type draft struct {
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"due_date"`
}

type Store struct {
	mu     sync.Mutex
	tasks  []task.Task
	logger *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// Handler serves the collection at "/" so it can be mounted wherever the
// deployment wants the base path to live.
func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Put("/{id}", s.update)
	r.Delete("/{id}", s.remove)
	return r
}

func (s *Store) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := make([]task.Task, len(s.tasks))
	copy(snapshot, s.tasks)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Store) create(w http.ResponseWriter, r *http.Request) {
	var d draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.logger.Warn("create: bad body", zap.Error(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	t := task.Task{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Completed: d.Completed,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		CreatedAt: &now,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.logger.Info("task created", zap.String("id", t.ID))
	respondJSON(w, http.StatusCreated, t)
}

func (s *Store) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.logger.Warn("update: bad body", zap.String("id", id), zap.Error(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if p.Title != nil {
			s.tasks[i].Title = *p.Title
		}
		if p.Completed != nil {
			s.tasks[i].Completed = *p.Completed
		}
		if p.Priority != nil {
			s.tasks[i].Priority = *p.Priority
		}
		if p.DueDate != nil {
			s.tasks[i].DueDate = p.DueDate
		}
		respondJSON(w, http.StatusOK, s.tasks[i])
		return
	}

	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Store) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		s.logger.Info("task deleted", zap.String("id", id))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "not found", http.StatusNotFound)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
