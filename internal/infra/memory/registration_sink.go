package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"invite-quiz-service/internal/domain"
)

var (
	errInvalidCode     = errors.New("invalid_code")
	errInvalidOrUsed   = errors.New("invalid_or_used_code")
	errInvalidGuests   = errors.New("invalid_guests")
	errNamesMismatched = errors.New("names_count_mismatch")
)

// RegistrationSink redeems invite codes in memory, with the same checks and
// error signals as the claim_invite_and_register procedure.
type RegistrationSink struct {
	mu            sync.Mutex
	codes         map[string]bool // code -> used
	registrations []domain.Registration
	now           func() time.Time
}

func NewRegistrationSink(codes []string) *RegistrationSink {
	s := &RegistrationSink{
		codes: make(map[string]bool, len(codes)),
		now:   time.Now,
	}
	for _, code := range codes {
		s.codes[code] = false
	}
	return s
}

func (s *RegistrationSink) Claim(_ context.Context, claim domain.RegistrationClaim) error {
	if claim.Code == "" {
		return errInvalidCode
	}
	if claim.Guests < 1 || claim.Guests > 5 {
		return errInvalidGuests
	}
	if len(claim.Names) != claim.Guests {
		return errNamesMismatched
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	used, ok := s.codes[claim.Code]
	if !ok || used {
		return errInvalidOrUsed
	}
	s.codes[claim.Code] = true
	s.registrations = append(s.registrations, domain.Registration{
		InviteCode: claim.Code,
		Guests:     claim.Guests,
		Names:      append([]string(nil), claim.Names...),
		CreatedAt:  s.now(),
	})
	return nil
}

// Registrations returns the stored registrations in claim order.
func (s *RegistrationSink) Registrations() []domain.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Registration(nil), s.registrations...)
}
