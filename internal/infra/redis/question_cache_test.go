package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"invite-quiz-service/internal/domain"
	"invite-quiz-service/internal/infra/memory"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	catalog := &countingCatalog{
		QuestionCatalog: memory.NewStaticCatalog(sampleCatalog()),
	}
	cache := NewQuestionCache(client, catalog, time.Minute)

	qs, err := cache.ActiveQuestions(context.Background())
	if err != nil {
		t.Fatalf("active questions: %v", err)
	}
	if len(qs) != 10 {
		t.Fatalf("expected a mix of 10, got %d", len(qs))
	}
	if catalog.calls != 1 {
		t.Fatalf("expected catalog called once, got %d", catalog.calls)
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected catalog stored in redis")
	}

	// Second call should hit cache, catalog not incremented.
	_, _ = cache.ActiveQuestions(context.Background())
	if catalog.calls != 1 {
		t.Fatalf("expected cache hit, catalog calls=%d", catalog.calls)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = cache.ActiveQuestions(context.Background())
	if catalog.calls != 2 {
		t.Fatalf("expected reload after expiry, catalog calls=%d", catalog.calls)
	}

	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(catalogKey) {
		t.Fatalf("expected catalog key removed")
	}
}

type countingCatalog struct {
	memory.QuestionCatalog
	calls int
}

func (c *countingCatalog) LoadActive(ctx context.Context) ([]domain.Question, error) {
	c.calls++
	return c.QuestionCatalog.LoadActive(ctx)
}

func sampleCatalog() []domain.Question {
	var qs []domain.Question
	for i := 0; i < 10; i++ {
		d := domain.DifficultyEasy
		if i >= 5 {
			d = domain.DifficultyHard
		}
		qs = append(qs, domain.Question{
			ID:            fmt.Sprintf("q%d", i),
			Text:          fmt.Sprintf("Question %d", i),
			Options:       []string{"yes", "no"},
			CorrectAnswer: "yes",
			Difficulty:    d,
		})
	}
	return qs
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
