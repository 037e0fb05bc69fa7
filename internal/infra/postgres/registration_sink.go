package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"invite-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

// ClaimSink redeems invite codes through the claim_invite_and_register
// function, which validates and registers atomically. Its raised exceptions
// carry the signal tags the registration flow classifies.
type ClaimSink struct {
	pool *pgxpool.Pool
}

func NewClaimSink(pool *pgxpool.Pool) *ClaimSink {
	return &ClaimSink{pool: pool}
}

func (s *ClaimSink) Claim(ctx context.Context, claim domain.RegistrationClaim) error {
	_, err := s.pool.Exec(ctx, `SELECT claim_invite_and_register($1, $2, $3)`,
		claim.Code, claim.Guests, claim.Names)
	if err != nil {
		return fmt.Errorf("claim invite: %w", err)
	}
	return nil
}

// InsertSink writes the registration row directly and relies on the unique
// invite_code constraint to reject reused codes. It does not check the code
// against invite_codes.
type InsertSink struct {
	pool *pgxpool.Pool
}

func NewInsertSink(pool *pgxpool.Pool) *InsertSink {
	return &InsertSink{pool: pool}
}

func (s *InsertSink) Claim(ctx context.Context, claim domain.RegistrationClaim) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO registrations (invite_code, guests, names) VALUES ($1, $2, $3)`,
		claim.Code, claim.Guests, claim.Names)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("invalid_or_used_code: %w", err)
	}
	return fmt.Errorf("insert registration: %w", err)
}
