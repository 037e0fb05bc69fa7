package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"invite-quiz-service/internal/domain"
)

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string   `bun:"id,pk"`
	Text          string   `bun:"text,notnull"`
	Options       []string `bun:"options,array"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
	Difficulty    string   `bun:"difficulty,notnull"`
	Active        bool     `bun:"active,notnull"`
}

type inviteCodeModel struct {
	bun.BaseModel `bun:"table:invite_codes"`

	Code   string     `bun:"code,pk"`
	UsedAt *time.Time `bun:"used_at,nullzero"`
}

// Seeder upserts catalog data. Existing invite codes keep their used_at.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

func (s *Seeder) Seed(ctx context.Context, questions []domain.Question, codes []string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(questions) > 0 {
			models := make([]questionModel, 0, len(questions))
			for _, q := range questions {
				models = append(models, questionModel{
					ID:            q.ID,
					Text:          q.Text,
					Options:       q.Options,
					CorrectAnswer: q.CorrectAnswer,
					Difficulty:    string(q.Difficulty),
					Active:        true,
				})
			}
			_, err := tx.NewInsert().Model(&models).
				On("CONFLICT (id) DO UPDATE").
				Set("text = EXCLUDED.text").
				Set("options = EXCLUDED.options").
				Set("correct_answer = EXCLUDED.correct_answer").
				Set("difficulty = EXCLUDED.difficulty").
				Set("active = EXCLUDED.active").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
		}

		if len(codes) > 0 {
			models := make([]inviteCodeModel, 0, len(codes))
			for _, code := range codes {
				models = append(models, inviteCodeModel{Code: code})
			}
			_, err := tx.NewInsert().Model(&models).
				On("CONFLICT (code) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed invite codes: %w", err)
			}
		}
		return nil
	})
}
