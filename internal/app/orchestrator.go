package app

import (
	"log"
	"math/rand"
	"time"

	"invite-quiz-service/internal/domain"
)

// Options configure the per-visitor state machine.
type Options struct {
	Intro IntroOptions
	// QuizIntro inserts a rules screen between the intro and the quiz.
	QuizIntro bool
	Delays    QuizDelays
	// NewRand returns the random source of one visitor. Defaults to a time-seeded source.
	NewRand func() *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Intro:  DefaultIntroOptions(),
		Delays: DefaultQuizDelays(),
	}
}

func (o Options) rand() *rand.Rand {
	if o.NewRand != nil {
		return o.NewRand()
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Orchestrator selects the active view and moves on when the active child
// signals completion. There are no backward transitions.
type Orchestrator struct {
	loop     Loop
	deps     Dependencies
	opts     Options
	ambience Ambience
	rnd      *rand.Rand

	view         domain.ViewState
	started      bool
	intro        *IntroSequencer
	quiz         *QuizEngine
	registration *RegistrationFlow
}

func NewOrchestrator(loop Loop, deps Dependencies, opts Options, ambience Ambience) *Orchestrator {
	o := &Orchestrator{
		loop:     loop,
		deps:     deps,
		opts:     opts,
		ambience: ambience,
		rnd:      opts.rand(),
		view:     domain.ViewIntro,
	}
	o.intro = NewIntroSequencer(loop, opts.Intro, o.introFinished)
	return o
}

// Handle routes a visitor command to the active view.
func (o *Orchestrator) Handle(cmd domain.Command) error {
	switch cmd.Type {
	case domain.CommandBegin:
		o.Begin()
		return nil
	case domain.CommandContinue:
		return o.Continue()
	case domain.CommandBeginQuiz:
		return o.BeginQuiz()
	case domain.CommandAnswer:
		return o.Answer(cmd.Option)
	case domain.CommandRestart:
		return o.Restart()
	case domain.CommandRetry:
		return o.Retry()
	case domain.CommandAttendance:
		return o.SetAttendance(domain.Attendance(cmd.Choice))
	case domain.CommandGuests:
		return o.SetGuestCount(cmd.Count)
	case domain.CommandName:
		return o.SetName(cmd.Index, cmd.Value)
	case domain.CommandCode:
		return o.SetInviteCode(cmd.Value)
	case domain.CommandSubmit:
		return o.Submit()
	default:
		return domain.ErrCommandUnavailable
	}
}

// Begin handles the first user interaction: it cues the ambient audio and
// starts the intro. Later calls do nothing.
func (o *Orchestrator) Begin() {
	if o.started {
		return
	}
	o.started = true
	if o.ambience != nil {
		if err := o.ambience.Start(); err != nil {
			log.Printf("ambience start failed: %v", err)
		}
	}
	if o.view == domain.ViewIntro {
		o.intro.Start()
	}
}

func (o *Orchestrator) Continue() error {
	if o.view != domain.ViewIntro || !o.started {
		return domain.ErrCommandUnavailable
	}
	o.intro.Continue()
	return nil
}

func (o *Orchestrator) BeginQuiz() error {
	if o.view != domain.ViewQuizIntro {
		return domain.ErrCommandUnavailable
	}
	o.enterQuiz()
	return nil
}

// Answer submits an option; answers arriving while input is locked are dropped.
func (o *Orchestrator) Answer(option string) error {
	if o.view != domain.ViewQuiz {
		return domain.ErrCommandUnavailable
	}
	o.quiz.SubmitAnswer(option)
	return nil
}

func (o *Orchestrator) Restart() error {
	if o.view != domain.ViewQuiz {
		return domain.ErrCommandUnavailable
	}
	return o.quiz.Restart()
}

func (o *Orchestrator) Retry() error {
	if o.view != domain.ViewQuiz {
		return domain.ErrCommandUnavailable
	}
	return o.quiz.Retry()
}

func (o *Orchestrator) SetAttendance(choice domain.Attendance) error {
	if o.view != domain.ViewRegistration {
		return domain.ErrCommandUnavailable
	}
	return o.registration.SetAttendance(choice)
}

func (o *Orchestrator) SetGuestCount(n int) error {
	if o.view != domain.ViewRegistration {
		return domain.ErrCommandUnavailable
	}
	return o.registration.UpdateGuestCount(n)
}

func (o *Orchestrator) SetName(index int, value string) error {
	if o.view != domain.ViewRegistration {
		return domain.ErrCommandUnavailable
	}
	return o.registration.UpdateName(index, value)
}

func (o *Orchestrator) SetInviteCode(value string) error {
	if o.view != domain.ViewRegistration {
		return domain.ErrCommandUnavailable
	}
	return o.registration.UpdateInviteCode(value)
}

func (o *Orchestrator) Submit() error {
	if o.view != domain.ViewRegistration {
		return domain.ErrCommandUnavailable
	}
	return o.registration.Submit()
}

func (o *Orchestrator) View() domain.ViewState {
	return o.view
}

// Snapshot renders the active view.
func (o *Orchestrator) Snapshot() domain.ViewSnapshot {
	snap := domain.ViewSnapshot{View: o.view, Started: o.started}
	switch o.view {
	case domain.ViewIntro:
		snap.Intro = &domain.IntroView{Phase: o.intro.Phase()}
	case domain.ViewQuiz:
		snap.Quiz = o.quiz.View()
	case domain.ViewRegistration:
		snap.Registration = o.registration.View()
	}
	return snap
}

// Close cancels everything the active view has scheduled.
func (o *Orchestrator) Close() {
	o.intro.Close()
	if o.quiz != nil {
		o.quiz.Close()
	}
	if o.registration != nil {
		o.registration.Close()
	}
}

func (o *Orchestrator) introFinished() {
	if o.view != domain.ViewIntro {
		return
	}
	o.intro.Close()
	if o.opts.QuizIntro {
		o.view = domain.ViewQuizIntro
		return
	}
	o.enterQuiz()
}

func (o *Orchestrator) enterQuiz() {
	o.view = domain.ViewQuiz
	o.quiz = NewQuizEngine(o.deps.Questions, o.loop, o.rnd, o.opts.Delays, o.quizPassed)
	o.quiz.Start()
}

func (o *Orchestrator) quizPassed() {
	if o.view != domain.ViewQuiz {
		return
	}
	o.quiz.Close()
	o.quiz = nil
	o.view = domain.ViewRegistration
	o.registration = NewRegistrationFlow(o.deps.Registrations, o.loop, o.registered)
}

func (o *Orchestrator) registered() {
	if o.view != domain.ViewRegistration {
		return
	}
	o.registration.Close()
	o.view = domain.ViewSuccess
}
