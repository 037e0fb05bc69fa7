package app

import (
	"context"

	"github.com/google/uuid"
	"invite-quiz-service/internal/domain"
)

// VisitorRepository abstracts how live visitors are tracked (in-memory, Redis, etc).
type VisitorRepository interface {
	GetOrCreate(visitorID string, create func(id string) *Visitor) *Visitor
	Get(visitorID string) (*Visitor, bool)
	DeleteIfIdle(visitorID string)
}

// InviteService contains the visitor-facing use cases.
type InviteService struct {
	visitors VisitorRepository
	deps     Dependencies
	opts     Options
}

func NewInviteService(visitors VisitorRepository, deps Dependencies, opts Options) *InviteService {
	return &InviteService{visitors: visitors, deps: deps, opts: opts}
}

// Connect attaches to the visitor with the given id, creating it when needed.
// An empty id starts a new page session.
func (s *InviteService) Connect(ctx context.Context, visitorID string) (domain.ViewSnapshot, error) {
	if visitorID == "" {
		visitorID = uuid.NewString()
	}
	visitor := s.visitors.GetOrCreate(visitorID, func(id string) *Visitor {
		return NewVisitor(id, s.deps, s.opts)
	})
	return visitor.Snapshot(ctx)
}

// Dispatch routes a command to the visitor's active view.
func (s *InviteService) Dispatch(ctx context.Context, visitorID string, cmd domain.Command) (domain.ViewSnapshot, error) {
	visitor, ok := s.visitors.Get(visitorID)
	if !ok {
		return domain.ViewSnapshot{}, domain.ErrVisitorNotFound
	}
	return visitor.Do(ctx, func(o *Orchestrator) error {
		return o.Handle(cmd)
	})
}

// Subscribe returns a channel that receives view updates for a visitor.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *InviteService) Subscribe(ctx context.Context, visitorID string) (<-chan Update, func(), error) {
	visitor, ok := s.visitors.Get(visitorID)
	if !ok {
		return nil, nil, domain.ErrVisitorNotFound
	}
	return visitor.Subscribe(ctx)
}

// Leave drops the visitor once no client is subscribed anymore.
func (s *InviteService) Leave(_ context.Context, visitorID string) {
	s.visitors.DeleteIfIdle(visitorID)
}
