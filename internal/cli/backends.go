package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/catalog"
	"invite-quiz-service/internal/config"
	"invite-quiz-service/internal/infra/memory"
	"invite-quiz-service/internal/infra/postgres"
	redisinfra "invite-quiz-service/internal/infra/redis"
)

// backends holds the stores the service talks to. A nil question source or
// registration sink leaves the visitor in the "not configured" state.
type backends struct {
	deps     app.Dependencies
	visitors app.VisitorRepository

	pool        *pgxpool.Pool
	redisClient *redis.Client
}

func newBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		b.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var questions memory.QuestionCatalog
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, multierror.Append(fmt.Errorf("connect postgres: %w", err), b.Close()).ErrorOrNil()
		}
		b.pool = pool
		source := postgres.NewQuestionSource(pool)
		questions = source
		b.deps.Questions = source
		if cfg.Postgres.RegistrationMode == config.RegistrationModeInsert {
			b.deps.Registrations = postgres.NewInsertSink(pool)
		} else {
			b.deps.Registrations = postgres.NewClaimSink(pool)
		}
	case cfg.Catalog.File != "":
		c, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return nil, multierror.Append(err, b.Close()).ErrorOrNil()
		}
		questions = memory.NewStaticCatalog(c.Questions)
		b.deps.Registrations = memory.NewRegistrationSink(c.InviteCodes)
		log.Printf("serving %d questions and %d invite codes from %s", len(c.Questions), len(c.InviteCodes), cfg.Catalog.File)
	default:
		log.Printf("no postgres url or catalog file configured, quiz and registration are unavailable")
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	if questions != nil {
		if b.redisClient != nil {
			b.deps.Questions = redisinfra.NewQuestionCache(b.redisClient, questions, quizTTL)
		} else if b.pool == nil {
			b.deps.Questions = memory.NewQuestionCache(questions, quizTTL)
		}
	}

	if b.redisClient != nil {
		b.visitors = redisinfra.NewVisitorStore(b.redisClient, config.Duration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		b.visitors = memory.NewVisitorStore()
	}
	return b, nil
}

// Close releases every connection and reports all failures.
func (b *backends) Close() error {
	var result *multierror.Error
	if b.redisClient != nil {
		if err := b.redisClient.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close redis: %w", err))
		}
	}
	if b.pool != nil {
		b.pool.Close()
	}
	return result.ErrorOrNil()
}

func visitorOptions(cfg config.Config) app.Options {
	opts := app.DefaultOptions()
	opts.QuizIntro = cfg.Quiz.IntroScreen

	defaults := opts.Intro
	if cfg.Intro.Mode == string(app.IntroInteractive) {
		opts.Intro.Mode = app.IntroInteractive
	}
	opts.Intro.ScrollAfter = config.Duration(cfg.Intro.ScrollAfter, defaults.ScrollAfter)
	opts.Intro.FinishAfter = config.Duration(cfg.Intro.FinishAfter, defaults.FinishAfter)
	opts.Intro.CTAAfter = config.Duration(cfg.Intro.CTAAfter, defaults.CTAAfter)
	opts.Intro.Dwell = config.Duration(cfg.Intro.Dwell, defaults.Dwell)
	return opts
}
