// Package store provides in-memory storage for evaluation history.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// DefaultCapacity is the number of evaluations kept when no capacity is given.
const DefaultCapacity = 100

// EvaluationState represents the outcome of an evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// Evaluation represents a stored evaluation.
type Evaluation struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	State      EvaluationState  `json:"state"`
	Result     string           `json:"result,omitempty"`
	Error      *EvaluationError `json:"error,omitempty"`
	Source     string           `json:"source,omitempty"`
	CreateTime time.Time        `json:"createTime"`
}

// EvaluationError represents the error of a failed evaluation.
type EvaluationError struct {
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// Store is a thread-safe, bounded, in-memory evaluation history. When full,
// the oldest evaluation is evicted.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	byID     map[string]*Evaluation
}

// New creates a new empty store holding at most capacity evaluations. A
// non-positive capacity selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		byID:     make(map[string]*Evaluation),
	}
}

// Record stores the outcome of evaluating expression. Exactly one of result
// or err is meaningful: a nil err records a success.
func (s *Store) Record(source, expression, result string, err error) *Evaluation {
	ev := &Evaluation{
		ID:         uuid.NewString(),
		Expression: expression,
		Source:     source,
		CreateTime: time.Now(),
	}
	if err != nil {
		ev.State = EvaluationFailed
		ev.Error = NewEvaluationError(err)
	} else {
		ev.State = EvaluationSucceeded
		ev.Result = result
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
	}
	s.order = append(s.order, ev.ID)
	s.byID[ev.ID] = ev
	return ev
}

// Get retrieves an evaluation by its id.
func (s *Store) Get(id string) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", id)
	}
	return ev, nil
}

// List returns up to limit evaluations, newest first. A non-positive limit
// returns every stored evaluation.
func (s *Store) List(limit int) []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*Evaluation, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, s.byID[s.order[i]])
	}
	return result
}

// Len returns the number of stored evaluations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NewEvaluationError converts err into its stored form. Calculator errors
// keep their kind and, when known, their position.
func NewEvaluationError(err error) *EvaluationError {
	ee := &EvaluationError{Message: err.Error(), Kind: types.KindOf(err)}
	if pos := types.PositionOf(err); pos != types.NoPosition {
		ee.Position = &pos
	}
	return ee
}
