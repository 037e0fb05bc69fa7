package app

import (
	"context"
	"time"

	"invite-quiz-service/internal/domain"
)

// QuestionSource supplies the active quiz questions for one session.
type QuestionSource interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

// RegistrationSink redeems an invite code together with the guest details.
// Rejections carry one of the tagged signals (invalid_or_used_code, invalid_code,
// invalid_guests, names_count_mismatch) in their message.
type RegistrationSink interface {
	Claim(ctx context.Context, claim domain.RegistrationClaim) error
}

// Ambience starts the background audio on the client.
type Ambience interface {
	Start() error
}

// Timer is a scheduled callback that can be cancelled before it fires.
type Timer interface {
	Stop() bool
}

// Loop is the single-threaded event loop a visitor's components run on.
// Callbacks passed to AfterFunc and the continuations returned from Go work
// are executed on the loop, one at a time.
type Loop interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Go(work func(ctx context.Context) func())
}

// Dependencies are the optional external collaborators. A nil field means
// the store is not configured.
type Dependencies struct {
	Questions     QuestionSource
	Registrations RegistrationSink
}
