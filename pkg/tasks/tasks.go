package tasks

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

//Task states
const (
	StateQueued  = "queued"
	StateRunning = "running"
	StateDone    = "done"
	StateError   = "error"
)

//ErrNotFound is returned when a task ID is unknown
var ErrNotFound = errors.New("task not found")

//ErrBadTransition is returned when a state change is not legal from the
//task's current state
var ErrBadTransition = errors.New("illegal task state transition")

//Task tracks one background job's lifecycle
type Task struct {
	ID         string
	Name       string
	State      string
	Result     string
	Error      string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

//Store is an in-memory task-status store. States move queued to
//running, then running to done or error.
type Store struct {
	mu    sync.Mutex
	tasks map[string]*Task
}

//NewStore creates an empty Store
func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

//Enqueue registers a new task and returns its ID
func (s *Store) Enqueue(name string, now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.tasks[id] = &Task{
		ID:         id,
		Name:       name,
		State:      StateQueued,
		EnqueuedAt: now,
	}
	return id
}

//Start moves a queued task to running
func (s *Store) Start(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if task.State != StateQueued {
		return ErrBadTransition
	}
	task.State = StateRunning
	task.StartedAt = now
	return nil
}

//Finish moves a running task to done and stores its result
func (s *Store) Finish(id string, result string, now time.Time) error {
	return s.complete(id, StateDone, result, "", now)
}

//Fail moves a running task to error and stores the failure message
func (s *Store) Fail(id string, message string, now time.Time) error {
	return s.complete(id, StateError, "", message, now)
}

func (s *Store) complete(id, state, result, message string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if task.State != StateRunning {
		return ErrBadTransition
	}
	task.State = state
	task.Result = result
	task.Error = message
	task.FinishedAt = now
	return nil
}

//Get returns a copy of the task's current status
func (s *Store) Get(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return *task, nil
}
