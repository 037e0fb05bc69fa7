package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/domain"
)

const catalogKey = "active"

// QuestionCatalog fetches all active questions from a backing store.
type QuestionCatalog interface {
	LoadActive(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache keeps the active catalog with a TTL to avoid repeated DB hits
// and serves a fresh 5 easy / 5 hard mix to every quiz session.
type QuestionCache struct {
	catalog QuestionCatalog
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	loaded    bool
	expiresAt time.Time
}

func NewQuestionCache(catalog QuestionCatalog, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		catalog: catalog,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveQuestions implements app.QuestionSource.
func (c *QuestionCache) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	all, err := c.LoadActive(ctx)
	if err != nil {
		return nil, err
	}

	c.rndMu.Lock()
	mixed := app.MixQuestions(all, app.QuestionsPerDifficulty, c.rnd)
	c.rndMu.Unlock()
	if len(mixed) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}
	return mixed, nil
}

// LoadActive returns the cached catalog, loading it on a miss.
func (c *QuestionCache) LoadActive(ctx context.Context) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if c.loaded && c.expiresAt.After(now) {
		all := c.cached
		c.mu.RUnlock()
		return all, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.loaded && c.expiresAt.After(now) {
			all := c.cached
			c.mu.RUnlock()
			return all, nil
		}
		c.mu.RUnlock()

		all, err := c.catalog.LoadActive(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = all
		c.loaded = true
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalog is a simple catalog backed by a slice (useful for tests/demos).
type StaticCatalog struct {
	questions []domain.Question
}

func NewStaticCatalog(questions []domain.Question) *StaticCatalog {
	return &StaticCatalog{questions: questions}
}

func (c *StaticCatalog) LoadActive(context.Context) ([]domain.Question, error) {
	return c.questions, nil
}
