package app_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invite-quiz-service/internal/app"
	"invite-quiz-service/internal/domain"
)

// manualLoop runs continuations inline and fires timers only when the test
// advances its clock.
type manualLoop struct {
	now      time.Duration
	seq      int
	timers   []*manualTimer
	deferGo  bool
	inflight []func(ctx context.Context) func()
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (l *manualLoop) AfterFunc(d time.Duration, fn func()) app.Timer {
	t := &manualTimer{at: l.now + d, seq: l.seq, fn: fn}
	l.seq++
	l.timers = append(l.timers, t)
	return t
}

func (l *manualLoop) Go(work func(ctx context.Context) func()) {
	if l.deferGo {
		l.inflight = append(l.inflight, work)
		return
	}
	if fn := work(context.Background()); fn != nil {
		fn()
	}
}

// flush completes deferred work in submission order.
func (l *manualLoop) flush() {
	pending := l.inflight
	l.inflight = nil
	for _, work := range pending {
		if fn := work(context.Background()); fn != nil {
			fn()
		}
	}
}

func (l *manualLoop) advance(d time.Duration) {
	target := l.now + d
	for {
		next := l.nextDue(target)
		if next == nil {
			break
		}
		l.now = next.at
		next.fired = true
		next.fn()
	}
	l.now = target
}

func (l *manualLoop) nextDue(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range l.timers {
		if t.stopped || t.fired || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (l *manualLoop) pendingTimers() int {
	n := 0
	for _, t := range l.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type staticSource struct {
	questions []domain.Question
	err       error
	calls     int
}

func (s *staticSource) ActiveQuestions(context.Context) ([]domain.Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

type fakeSink struct {
	err    error
	claims []domain.RegistrationClaim
}

func (s *fakeSink) Claim(_ context.Context, claim domain.RegistrationClaim) error {
	s.claims = append(s.claims, claim)
	return s.err
}

type fakeAmbience struct {
	err   error
	calls int
}

func (a *fakeAmbience) Start() error {
	a.calls++
	return a.err
}

var errBoom = errors.New("boom")

// sampleQuestions returns easy and hard questions whose correct answer is "right-<id>".
func sampleQuestions(easy, hard int) []domain.Question {
	var qs []domain.Question
	add := func(prefix string, n int, d domain.Difficulty) {
		for i := 1; i <= n; i++ {
			id := fmt.Sprintf("%s%d", prefix, i)
			qs = append(qs, domain.Question{
				ID:            id,
				Text:          "Question " + id,
				Options:       []string{"right-" + id, "wrong-a", "wrong-b", "wrong-c"},
				CorrectAnswer: "right-" + id,
				Difficulty:    d,
			})
		}
	}
	add("e", easy, domain.DifficultyEasy)
	add("h", hard, domain.DifficultyHard)
	return qs
}

func rightAnswer(q *domain.QuestionView) string {
	return "right-" + q.ID
}
