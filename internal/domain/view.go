package domain

// ViewState selects which screen is active for a visitor.
type ViewState string

const (
	ViewIntro        ViewState = "intro"
	ViewQuizIntro    ViewState = "quiz-intro"
	ViewQuiz         ViewState = "quiz"
	ViewRegistration ViewState = "registration"
	ViewSuccess      ViewState = "success"
)

// IntroPhase is the position of the intro sequence.
type IntroPhase string

const (
	IntroIdle       IntroPhase = "idle"
	IntroPlaying    IntroPhase = "playing"
	IntroCTAShown   IntroPhase = "cta-shown"
	IntroImageShown IntroPhase = "image-shown"
	IntroDone       IntroPhase = "done"
)

// QuizStatus is the lifecycle position of the quiz engine.
type QuizStatus string

const (
	QuizUnavailable QuizStatus = "unavailable"
	QuizLoading     QuizStatus = "loading"
	QuizFailedLoad  QuizStatus = "load-failed"
	QuizAsking      QuizStatus = "asking"
	QuizFeedback    QuizStatus = "feedback"
	QuizPassed      QuizStatus = "passed"
	QuizExhausted   QuizStatus = "exhausted"
)

// ViewSnapshot is the read-only state a client renders.
type ViewSnapshot struct {
	VisitorID    string            `json:"visitorId"`
	View         ViewState         `json:"view"`
	Started      bool              `json:"started"`
	Intro        *IntroView        `json:"intro,omitempty"`
	Quiz         *QuizView         `json:"quiz,omitempty"`
	Registration *RegistrationView `json:"registration,omitempty"`
}

type IntroView struct {
	Phase IntroPhase `json:"phase"`
}

// QuestionView hides the correct answer from clients.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuizView struct {
	Status     QuizStatus    `json:"status"`
	Question   *QuestionView `json:"question,omitempty"`
	Lives      int           `json:"lives"`
	MaxLives   int           `json:"maxLives"`
	Correct    int           `json:"correct"`
	Required   int           `json:"required"`
	Locked     bool          `json:"locked"`
	Feedback   string        `json:"feedback,omitempty"`
	ErrorKind  Kind          `json:"errorKind,omitempty"`
	Error      string        `json:"error,omitempty"`
	CanRestart bool          `json:"canRestart"`
	CanRetry   bool          `json:"canRetry"`
}

type RegistrationView struct {
	Attendance Attendance `json:"attendance"`
	InviteCode string     `json:"inviteCode"`
	GuestCount int        `json:"guestCount"`
	Names      []string   `json:"names"`
	Loading    bool       `json:"loading"`
	ErrorKind  Kind       `json:"errorKind,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Command is a visitor action routed to the active view.
type Command struct {
	Type   string `json:"type"`
	Option string `json:"option,omitempty"`
	Choice string `json:"choice,omitempty"`
	Count  int    `json:"count,omitempty"`
	Index  int    `json:"index,omitempty"`
	Value  string `json:"value,omitempty"`
}

const (
	CommandBegin      = "begin"
	CommandContinue   = "continue"
	CommandBeginQuiz  = "beginQuiz"
	CommandAnswer     = "answer"
	CommandRestart    = "restart"
	CommandRetry      = "retry"
	CommandAttendance = "attendance"
	CommandGuests     = "guests"
	CommandName       = "name"
	CommandCode       = "code"
	CommandSubmit     = "submit"
)
