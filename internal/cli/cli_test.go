package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/config"
	"invite-quiz-service/internal/infra/memory"
	transport "invite-quiz-service/internal/transport/http"
)

func TestVisitorOptionsFromConfig(t *testing.T) {
	var cfg config.Config
	cfg.Quiz.IntroScreen = true
	cfg.Intro.Mode = "interactive"
	cfg.Intro.Dwell = "500ms"
	cfg.Intro.CTAAfter = "bogus"

	opts := visitorOptions(cfg)
	if !opts.QuizIntro || opts.Intro.Mode != app.IntroInteractive {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.Intro.Dwell != 500*time.Millisecond {
		t.Fatalf("expected dwell override, got %s", opts.Intro.Dwell)
	}
	if opts.Intro.CTAAfter != app.DefaultIntroOptions().CTAAfter {
		t.Fatalf("expected default for invalid duration, got %s", opts.Intro.CTAAfter)
	}
}

func TestBackendsWithoutStores(t *testing.T) {
	b, err := newBackends(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("backends: %v", err)
	}
	defer b.Close()

	if b.deps.Questions != nil || b.deps.Registrations != nil {
		t.Fatalf("expected no question source or sink, got %+v", b.deps)
	}
	if _, ok := b.visitors.(*memory.VisitorStore); !ok {
		t.Fatalf("expected in-memory visitors, got %T", b.visitors)
	}
}

func TestHealthz(t *testing.T) {
	service := app.NewInviteService(memory.NewVisitorStore(), app.Dependencies{}, app.DefaultOptions())
	server := httptest.NewServer(newMux(transport.NewWSHandler(service)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}
