package app

import (
	"time"

	"invite-quiz-service/internal/domain"
)

// IntroMode selects between the fixed-timer intro and the one waiting for "continue".
type IntroMode string

const (
	IntroSimple      IntroMode = "simple"
	IntroInteractive IntroMode = "interactive"
)

type IntroOptions struct {
	Mode IntroMode
	// simple form
	ScrollAfter time.Duration
	FinishAfter time.Duration
	// interactive form
	CTAAfter time.Duration
	Dwell    time.Duration
}

func DefaultIntroOptions() IntroOptions {
	return IntroOptions{
		Mode:        IntroSimple,
		ScrollAfter: 4 * time.Second,
		FinishAfter: 7 * time.Second,
		CTAAfter:    4 * time.Second,
		Dwell:       3 * time.Second,
	}
}

// IntroSequencer plays the intro and signals completion once.
type IntroSequencer struct {
	loop       Loop
	opts       IntroOptions
	onComplete func()

	phase  domain.IntroPhase
	timers []Timer
}

func NewIntroSequencer(loop Loop, opts IntroOptions, onComplete func()) *IntroSequencer {
	return &IntroSequencer{
		loop:       loop,
		opts:       opts,
		onComplete: onComplete,
		phase:      domain.IntroIdle,
	}
}

func (s *IntroSequencer) Start() {
	if s.phase != domain.IntroIdle {
		return
	}
	s.phase = domain.IntroPlaying
	if s.opts.Mode == IntroInteractive {
		s.after(s.opts.CTAAfter, func() { s.phase = domain.IntroCTAShown })
		return
	}
	s.after(s.opts.ScrollAfter, func() {
		if s.phase == domain.IntroPlaying {
			s.phase = domain.IntroImageShown
		}
	})
	s.after(s.opts.FinishAfter, s.finish)
}

// Continue advances the interactive intro past its call to action.
// It is ignored in any other phase.
func (s *IntroSequencer) Continue() {
	if s.opts.Mode != IntroInteractive || s.phase != domain.IntroCTAShown {
		return
	}
	s.phase = domain.IntroImageShown
	s.after(s.opts.Dwell, s.finish)
}

func (s *IntroSequencer) Phase() domain.IntroPhase {
	return s.phase
}

func (s *IntroSequencer) Close() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *IntroSequencer) finish() {
	if s.phase == domain.IntroDone {
		return
	}
	s.phase = domain.IntroDone
	s.Close()
	if s.onComplete != nil {
		s.onComplete()
	}
}

func (s *IntroSequencer) after(d time.Duration, fn func()) {
	s.timers = append(s.timers, s.loop.AfterFunc(d, fn))
}
