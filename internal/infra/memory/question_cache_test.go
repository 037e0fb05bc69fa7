package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"invite-quiz-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	catalog := &countingCatalog{QuestionCatalog: NewStaticCatalog(sampleCatalog())}
	cache := NewQuestionCache(catalog, time.Minute)

	if _, err := cache.ActiveQuestions(context.Background()); err != nil {
		t.Fatalf("active questions: %v", err)
	}
	if catalog.calls != 1 {
		t.Fatalf("expected catalog once, got %d", catalog.calls)
	}

	qs, err := cache.ActiveQuestions(context.Background())
	if err != nil {
		t.Fatalf("active questions 2: %v", err)
	}
	if catalog.calls != 1 {
		t.Fatalf("expected cache hit, catalog calls %d", catalog.calls)
	}
	if len(qs) != 10 {
		t.Fatalf("expected a mix of 10, got %d", len(qs))
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	catalog := &countingCatalog{QuestionCatalog: NewStaticCatalog(sampleCatalog())}
	cache := NewQuestionCache(catalog, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.LoadActive(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = cache.LoadActive(context.Background())
	if catalog.calls != 2 {
		t.Fatalf("expected reload after ttl, got %d calls", catalog.calls)
	}
}

func TestQuestionCacheEmptyCatalog(t *testing.T) {
	cache := NewQuestionCache(NewStaticCatalog(nil), time.Minute)
	if _, err := cache.ActiveQuestions(context.Background()); !errors.Is(err, domain.ErrNoQuestionsAvailable) {
		t.Fatalf("expected no questions, got %v", err)
	}
}

type countingCatalog struct {
	QuestionCatalog
	calls int
}

func (c *countingCatalog) LoadActive(ctx context.Context) ([]domain.Question, error) {
	c.calls++
	return c.QuestionCatalog.LoadActive(ctx)
}

func sampleCatalog() []domain.Question {
	var qs []domain.Question
	for i := 0; i < 12; i++ {
		d := domain.DifficultyEasy
		if i%2 == 1 {
			d = domain.DifficultyHard
		}
		qs = append(qs, domain.Question{
			ID:            fmt.Sprintf("q%d", i),
			Text:          fmt.Sprintf("What is %d + 1?", i),
			Options:       []string{fmt.Sprint(i + 1), fmt.Sprint(i + 2)},
			CorrectAnswer: fmt.Sprint(i + 1),
			Difficulty:    d,
		})
	}
	return qs
}
