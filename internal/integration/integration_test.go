package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/catalog"
	"invite-quiz-service/internal/cli"
	"invite-quiz-service/internal/domain"
	pginfra "invite-quiz-service/internal/infra/postgres"
	infraredis "invite-quiz-service/internal/infra/redis"
)

const testCatalog = `
questions:
  - {id: e1, text: One?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: e2, text: Two?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: e3, text: Three?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: e4, text: Four?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: e5, text: Five?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: e6, text: Six?, options: [a, b], correct_answer: a, difficulty: easy}
  - {id: h1, text: Seven?, options: [a, b], correct_answer: b, difficulty: hard}
  - {id: h2, text: Eight?, options: [a, b], correct_answer: b, difficulty: hard}
  - {id: h3, text: Nine?, options: [a, b], correct_answer: b, difficulty: hard}
  - {id: h4, text: Ten?, options: [a, b], correct_answer: b, difficulty: hard}
  - {id: h5, text: Eleven?, options: [a, b], correct_answer: b, difficulty: hard}
invite_codes: [ABC123, XYZ789]
`

func TestInvitationAgainstRealStores(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seed(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	source := pginfra.NewQuestionSource(pool)
	mixed, err := source.ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("active questions: %v", err)
	}
	assertMix(t, mixed)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	cached, err := infraredis.NewQuestionCache(redisClient, source, 5*time.Minute).ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("cached questions: %v", err)
	}
	assertMix(t, cached)

	claims := pginfra.NewClaimSink(pool)
	claim := domain.RegistrationClaim{Code: "ABC123", Guests: 2, Names: []string{"Ann", "Bob"}}
	if err := claims.Claim(ctx, claim); err != nil {
		t.Fatalf("claim: %v", err)
	}

	signals := []struct {
		claim domain.RegistrationClaim
		want  domain.Kind
	}{
		{claim, domain.KindInviteAlreadyUsed},
		{domain.RegistrationClaim{Code: "NOPE", Guests: 1, Names: []string{"Ann"}}, domain.KindInviteAlreadyUsed},
		{domain.RegistrationClaim{Code: "XYZ789", Guests: 6, Names: make([]string, 6)}, domain.KindGuestCountOutOfRange},
		{domain.RegistrationClaim{Code: "XYZ789", Guests: 2, Names: []string{"Ann"}}, domain.KindNamesCountMismatch},
		{domain.RegistrationClaim{Code: "", Guests: 1, Names: []string{"Ann"}}, domain.KindInviteCodeMalformed},
	}
	for _, s := range signals {
		err := claims.Claim(ctx, s.claim)
		if got := domain.KindOf(app.ClassifySinkError(err)); got != s.want {
			t.Fatalf("claim %+v: expected %s, got %s (%v)", s.claim, s.want, got, err)
		}
	}

	inserts := pginfra.NewInsertSink(pool)
	err = inserts.Claim(ctx, claim)
	if got := domain.KindOf(app.ClassifySinkError(err)); got != domain.KindInviteAlreadyUsed {
		t.Fatalf("insert of a used code: expected %s, got %s (%v)", domain.KindInviteAlreadyUsed, got, err)
	}

	var guests int
	if err := pool.QueryRow(ctx, `SELECT guests FROM registrations WHERE invite_code = $1`, "ABC123").Scan(&guests); err != nil {
		t.Fatalf("read registration: %v", err)
	}
	if guests != 2 {
		t.Fatalf("expected 2 guests stored, got %d", guests)
	}
}

func assertMix(t *testing.T, qs []domain.Question) {
	t.Helper()
	counts := map[domain.Difficulty]int{}
	for _, q := range qs {
		counts[q.Difficulty]++
	}
	if counts[domain.DifficultyEasy] != 5 || counts[domain.DifficultyHard] != 5 {
		t.Fatalf("expected 5 easy and 5 hard questions, got %v", counts)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "invite", "POSTGRES_PASSWORD": "invitepass", "POSTGRES_DB": "invitedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://invite:invitepass@%s:%s/invitedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seed(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := cli.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	c, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if err := pginfra.NewSeeder(db).Seed(ctx, c.Questions, c.InviteCodes); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// seeding twice keeps the data and used codes intact
	if err := pginfra.NewSeeder(db).Seed(ctx, c.Questions, c.InviteCodes); err != nil {
		t.Fatalf("reseed: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
