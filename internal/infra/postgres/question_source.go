package postgres

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/domain"
)

const (
	mixedQuestionsQuery  = `SELECT id, text, options, correct_answer, difficulty FROM get_mixed_questions()`
	activeQuestionsQuery = `SELECT id, text, options, correct_answer, difficulty FROM questions WHERE active`
)

// QuestionSource loads quiz questions from Postgres. It prefers the server-side
// mix and falls back to mixing the active table rows itself.
type QuestionSource struct {
	pool *pgxpool.Pool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{
		pool: pool,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveQuestions implements app.QuestionSource.
func (s *QuestionSource) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	mixed, err := s.query(ctx, mixedQuestionsQuery)
	if err == nil && len(mixed) > 0 {
		return mixed, nil
	}
	if err != nil {
		log.Printf("get_mixed_questions failed, mixing active questions instead: %v", err)
	}

	all, err := s.LoadActive(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	mixed = app.MixQuestions(all, app.QuestionsPerDifficulty, s.rnd)
	s.mu.Unlock()
	if len(mixed) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}
	return mixed, nil
}

// LoadActive returns every active question. It also serves as the catalog
// behind the question caches.
func (s *QuestionSource) LoadActive(ctx context.Context) ([]domain.Question, error) {
	all, err := s.query(ctx, activeQuestionsQuery)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return all, nil
}

func (s *QuestionSource) query(ctx context.Context, sql string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectAnswer, &difficulty); err != nil {
			return nil, err
		}
		q.Difficulty = domain.Difficulty(difficulty)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
