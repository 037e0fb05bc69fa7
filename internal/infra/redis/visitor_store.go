package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"invite-quiz-service/internal/app"
)

// VisitorStore is a Redis-aware implementation of app.VisitorRepository.
// Notes:
//   - Visitors run in process; their state machine never leaves this instance.
//   - Redis holds a liveness marker per visitor so operators can count
//     active page sessions across instances.
type VisitorStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	visitors map[string]*app.Visitor
}

func NewVisitorStore(client *redis.Client, ttl time.Duration) *VisitorStore {
	return &VisitorStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(visitorID), "1", s.ttl).Err()
	return visitor
}

func (s *VisitorStore) Get(visitorID string) (*app.Visitor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitor, ok := s.visitors[visitorID]
	return visitor, ok
}

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
		_ = s.client.Del(context.Background(), s.key(visitorID)).Err()
	}
}

func (s *VisitorStore) key(visitorID string) string {
	return "invite:visitor:" + visitorID
}
