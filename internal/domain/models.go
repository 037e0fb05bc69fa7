package domain

import "time"

// Difficulty tags a question for balancing the mix; it never changes scoring.
type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyHard Difficulty = "hard"
)

// Valid reports whether d is one of the known tags.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

// Question models a multiple-choice quiz question. Immutable once fetched.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	Text          string     `json:"text" yaml:"text"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer string     `json:"correct_answer" yaml:"correct_answer"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
}

// QuizSession is one quiz attempt, from initialization to success or exhausted lives.
type QuizSession struct {
	Pool           []Question
	CurrentIndex   int
	LivesRemaining int
	CorrectCount   int
	AnsweredIDs    map[string]struct{}
}

// Current returns the question the session is waiting on.
func (s *QuizSession) Current() Question {
	return s.Pool[s.CurrentIndex]
}

// Attendance is the guest's answer to "are you coming?".
type Attendance string

const (
	AttendanceUnanswered Attendance = "unanswered"
	AttendanceYes        Attendance = "yes"
	AttendanceNo         Attendance = "no"
)

// RegistrationDraft holds the form fields while the guest edits them.
type RegistrationDraft struct {
	Attendance Attendance
	InviteCode string
	GuestCount int
	Names      []string
}

// RegistrationClaim is what gets redeemed against the registration store.
type RegistrationClaim struct {
	Code   string   `json:"code"`
	Guests int      `json:"guests"`
	Names  []string `json:"names"`
}

// Registration is a stored, successful claim.
type Registration struct {
	InviteCode string
	Guests     int
	Names      []string
	CreatedAt  time.Time
}
