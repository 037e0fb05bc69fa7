package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/domain"
)

// QuestionCatalog fetches all active questions from a backing store.
type QuestionCatalog interface {
	LoadActive(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache caches the active question catalog in Redis and falls back to
// the catalog on a miss. Every call to ActiveQuestions draws a new mix.
// The catalog is stored as: SET invite:questions:active <json>
type QuestionCache struct {
	client  *redis.Client
	catalog QuestionCatalog
	ttl     time.Duration
	sf      singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, catalog QuestionCatalog, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client:  client,
		catalog: catalog,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveQuestions implements app.QuestionSource.
func (c *QuestionCache) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	all, err := c.LoadActive(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	mixed := app.MixQuestions(all, app.QuestionsPerDifficulty, c.rnd)
	c.mu.Unlock()
	if len(mixed) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}
	return mixed, nil
}

func (c *QuestionCache) LoadActive(ctx context.Context) ([]domain.Question, error) {
	if all, ok := c.fromCache(ctx); ok {
		return all, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if all, ok := c.fromCache(ctx); ok {
			return all, nil
		}

		all, err := c.catalog.LoadActive(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(all)
		if err == nil {
			_ = c.client.Set(ctx, catalogKey, data, c.ttlWithJitter()).Err()
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached catalog, e.g. after seeding new questions.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}

const catalogKey = "invite:questions:active"

func (c *QuestionCache) fromCache(ctx context.Context) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return nil, false
	}
	var all []domain.Question
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, false
	}
	return all, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
