package memory

import (
	"sync"

	"invite-quiz-service/internal/app"
)

// VisitorStore is an in-memory implementation of app.VisitorRepository.
type VisitorStore struct {
	mu       sync.RWMutex
	visitors map[string]*app.Visitor
}

func NewVisitorStore() *VisitorStore {
	return &VisitorStore{
		visitors: make(map[string]*app.Visitor),
	}
}

func (s *VisitorStore) GetOrCreate(visitorID string, create func(id string) *app.Visitor) *app.Visitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visitor, ok := s.visitors[visitorID]; ok {
		return visitor
	}
	visitor := create(visitorID)
	s.visitors[visitorID] = visitor
	return visitor
}

func (s *VisitorStore) Get(visitorID string) (*app.Visitor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitor, ok := s.visitors[visitorID]
	return visitor, ok
}

// DeleteIfIdle removes and closes the visitor when no client is subscribed.
func (s *VisitorStore) DeleteIfIdle(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visitor, ok := s.visitors[visitorID]
	if !ok {
		return
	}
	if visitor.IsIdle() {
		delete(s.visitors, visitorID)
		visitor.Close()
	}
}

// Len reports the number of live visitors.
func (s *VisitorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visitors)
}
