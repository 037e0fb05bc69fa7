package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"invite-quiz-service/internal/domain"
)

const (
	// RequiredCorrect is the number of right answers that passes the quiz.
	RequiredCorrect = 5
	// MaxLives is the number of wrong answers a session tolerates.
	MaxLives = 3
)

// QuizDelays are the feedback pauses during which answers are locked.
type QuizDelays struct {
	Correct  time.Duration
	Wrong    time.Duration
	Complete time.Duration
}

func DefaultQuizDelays() QuizDelays {
	return QuizDelays{
		Correct:  time.Second,
		Wrong:    1500 * time.Millisecond,
		Complete: 1200 * time.Millisecond,
	}
}

// QuizEngine owns the progress of one quiz session and signals completion
// once RequiredCorrect answers were given. All methods must run on the loop.
type QuizEngine struct {
	source     QuestionSource
	loop       Loop
	rnd        *rand.Rand
	delays     QuizDelays
	onComplete func()

	status   domain.QuizStatus
	session  *domain.QuizSession
	err      error
	feedback string
	timer    Timer
	fetchSeq int
	signaled bool
	closed   bool
}

func NewQuizEngine(source QuestionSource, loop Loop, rnd *rand.Rand, delays QuizDelays, onComplete func()) *QuizEngine {
	return &QuizEngine{
		source:     source,
		loop:       loop,
		rnd:        rnd,
		delays:     delays,
		onComplete: onComplete,
		status:     domain.QuizLoading,
	}
}

// Start fetches a fresh question set and initializes the session with it.
func (e *QuizEngine) Start() {
	if e.closed {
		return
	}
	if e.source == nil {
		e.status = domain.QuizUnavailable
		e.err = domain.ErrConfigurationMissing
		return
	}

	e.status = domain.QuizLoading
	e.err = nil
	e.feedback = ""
	e.fetchSeq++
	seq := e.fetchSeq
	source := e.source

	e.loop.Go(func(ctx context.Context) func() {
		questions, err := source.ActiveQuestions(ctx)
		return func() {
			// a newer fetch or Close supersedes this result
			if seq != e.fetchSeq || e.closed {
				return
			}
			if err != nil {
				if !errors.Is(err, domain.ErrNoQuestionsAvailable) {
					err = fmt.Errorf("%w: %v", domain.ErrTransientFetch, err)
				}
				e.failLoad(err)
				return
			}
			if err := e.Initialize(questions); err != nil {
				e.failLoad(err)
			}
		}
	})
}

// Retry re-runs Start after a failed load.
func (e *QuizEngine) Retry() error {
	if e.status != domain.QuizFailedLoad {
		return domain.ErrCommandUnavailable
	}
	e.Start()
	return nil
}

// Initialize builds a new session from questions. Options of every question
// are shuffled independently; the pool order is shuffled too.
func (e *QuizEngine) Initialize(questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrNoQuestionsAvailable
	}
	e.stopTimer()

	pool := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = shuffledOptions(q.Options, e.rnd)
		pool[i] = q
	}
	shuffleQuestions(pool, e.rnd)

	e.session = &domain.QuizSession{
		Pool:           pool,
		CurrentIndex:   0,
		LivesRemaining: MaxLives,
		CorrectCount:   0,
		AnsweredIDs:    make(map[string]struct{}),
	}
	e.status = domain.QuizAsking
	e.err = nil
	e.feedback = ""
	e.signaled = false
	return nil
}

// SubmitAnswer evaluates choice against the current question. It reports
// false when the answer was ignored because input is locked.
func (e *QuizEngine) SubmitAnswer(choice string) bool {
	if e.session == nil || len(e.session.Pool) == 0 || e.status != domain.QuizAsking {
		return false
	}
	s := e.session
	current := s.Current()

	if choice == current.CorrectAnswer {
		s.CorrectCount++
		if s.CorrectCount == RequiredCorrect {
			e.status = domain.QuizPassed
			e.feedback = "Correct! Taking you to the registration..."
			e.schedule(e.delays.Complete, e.complete)
			return true
		}
		s.AnsweredIDs[current.ID] = struct{}{}
		e.status = domain.QuizFeedback
		e.feedback = fmt.Sprintf("Correct! (%d/%d)", s.CorrectCount, RequiredCorrect)
		e.schedule(e.delays.Correct, e.advance)
		return true
	}

	s.LivesRemaining--
	if s.LivesRemaining == 0 {
		e.status = domain.QuizExhausted
		e.feedback = domain.ErrExhaustedLives.Message
		e.stopTimer()
		return true
	}
	s.AnsweredIDs[current.ID] = struct{}{}
	e.status = domain.QuizFeedback
	e.feedback = fmt.Sprintf("Wrong! Next question... (%d/%d attempts)", MaxLives-s.LivesRemaining, MaxLives)
	e.schedule(e.delays.Wrong, e.advance)
	return true
}

// Restart resets a session whose lives are exhausted.
func (e *QuizEngine) Restart() error {
	if e.status != domain.QuizExhausted || e.session == nil {
		return domain.ErrCommandUnavailable
	}
	e.stopTimer()
	s := e.session
	s.LivesRemaining = MaxLives
	s.CorrectCount = 0
	s.AnsweredIDs = make(map[string]struct{})
	shuffleQuestions(s.Pool, e.rnd)
	s.CurrentIndex = 0
	e.status = domain.QuizAsking
	e.feedback = ""
	return nil
}

// Close cancels pending timers and discards the session.
func (e *QuizEngine) Close() {
	e.closed = true
	e.stopTimer()
	e.fetchSeq++
	e.session = nil
}

// Session exposes the live session; nil until initialized.
func (e *QuizEngine) Session() *domain.QuizSession {
	return e.session
}

func (e *QuizEngine) Status() domain.QuizStatus {
	return e.status
}

// View renders the engine state for clients.
func (e *QuizEngine) View() *domain.QuizView {
	v := &domain.QuizView{
		Status:     e.status,
		MaxLives:   MaxLives,
		Required:   RequiredCorrect,
		Locked:     e.status != domain.QuizAsking,
		Feedback:   e.feedback,
		CanRestart: e.status == domain.QuizExhausted,
		CanRetry:   e.status == domain.QuizFailedLoad,
	}
	if e.err != nil {
		v.ErrorKind = domain.KindOf(e.err)
		v.Error = domain.Message(e.err)
	}
	if e.session != nil {
		v.Lives = e.session.LivesRemaining
		v.Correct = e.session.CorrectCount
		q := e.session.Current()
		v.Question = &domain.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
	}
	return v
}

func (e *QuizEngine) failLoad(err error) {
	e.session = nil
	e.status = domain.QuizFailedLoad
	e.err = err
}

func (e *QuizEngine) advance() {
	e.timer = nil
	if e.session == nil {
		return
	}
	e.session.CurrentIndex = e.nextIndex()
	e.status = domain.QuizAsking
}

// nextIndex picks uniformly among unanswered questions. Once the pool is
// exhausted the answered set is cleared and the pool reshuffled.
func (e *QuizEngine) nextIndex() int {
	s := e.session
	candidates := make([]int, 0, len(s.Pool))
	for i, q := range s.Pool {
		if _, answered := s.AnsweredIDs[q.ID]; !answered {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		s.AnsweredIDs = make(map[string]struct{})
		shuffleQuestions(s.Pool, e.rnd)
		return e.rnd.Intn(len(s.Pool))
	}
	return candidates[e.rnd.Intn(len(candidates))]
}

func (e *QuizEngine) complete() {
	e.timer = nil
	if e.signaled {
		return
	}
	e.signaled = true
	if e.onComplete != nil {
		e.onComplete()
	}
}

func (e *QuizEngine) schedule(d time.Duration, fn func()) {
	e.stopTimer()
	e.timer = e.loop.AfterFunc(d, fn)
}

func (e *QuizEngine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
