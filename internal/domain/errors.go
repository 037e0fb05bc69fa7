package domain

import "errors"

// Kind names a category of failure that is shown to the visitor.
type Kind string

const (
	KindConfigurationMissing Kind = "ConfigurationMissing"
	KindNoQuestions          Kind = "NoQuestionsAvailable"
	KindTransientFetch       Kind = "TransientFetchError"
	KindEmptyInviteCode      Kind = "EmptyInviteCode"
	KindIncompleteNames      Kind = "IncompleteNames"
	KindInviteAlreadyUsed    Kind = "InviteAlreadyUsed"
	KindInviteCodeMalformed  Kind = "InviteCodeMalformed"
	KindGuestCountOutOfRange Kind = "GuestCountOutOfRange"
	KindNamesCountMismatch   Kind = "NamesCountMismatch"
	KindUnexpectedSink       Kind = "UnexpectedSinkError"
	KindExhaustedLives       Kind = "ExhaustedLives"
	KindInvalidCommand       Kind = "InvalidCommand"
)

// Error is a categorized, user-presentable failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrConfigurationMissing is returned when the invitation store is not configured.
	ErrConfigurationMissing = &Error{Kind: KindConfigurationMissing, Message: "The invitation store is not configured. Please try again later."}
	// ErrNoQuestionsAvailable is returned when the question source has no active questions.
	ErrNoQuestionsAvailable = &Error{Kind: KindNoQuestions, Message: "No questions available."}
	// ErrTransientFetch wraps a failed question fetch that may succeed on retry.
	ErrTransientFetch = &Error{Kind: KindTransientFetch, Message: "Could not load the questions. Please try again."}
	// ErrEmptyInviteCode fails submission when the trimmed code is empty.
	ErrEmptyInviteCode = &Error{Kind: KindEmptyInviteCode, Message: "Please enter your invite code."}
	// ErrIncompleteNames fails submission when a guest name is blank.
	ErrIncompleteNames = &Error{Kind: KindIncompleteNames, Message: "Please enter all names."}
	// ErrInviteAlreadyUsed maps the invalid_or_used_code sink signal.
	ErrInviteAlreadyUsed = &Error{Kind: KindInviteAlreadyUsed, Message: "This invite code is invalid or has already been used."}
	// ErrInviteCodeMalformed maps the invalid_code sink signal.
	ErrInviteCodeMalformed = &Error{Kind: KindInviteCodeMalformed, Message: "Please enter a valid invite code."}
	// ErrGuestCountOutOfRange maps the invalid_guests sink signal.
	ErrGuestCountOutOfRange = &Error{Kind: KindGuestCountOutOfRange, Message: "The number of guests must be between 1 and 5."}
	// ErrNamesCountMismatch maps the names_count_mismatch sink signal.
	ErrNamesCountMismatch = &Error{Kind: KindNamesCountMismatch, Message: "The number of names does not match the number of guests."}
	// ErrUnexpectedSink covers any unrecognized sink failure.
	ErrUnexpectedSink = &Error{Kind: KindUnexpectedSink, Message: "Unexpected error. Please try again later."}
	// ErrExhaustedLives is reported once all lives are spent; Restart recovers.
	ErrExhaustedLives = &Error{Kind: KindExhaustedLives, Message: "Too bad, that was your last try. Don't worry, we'll put up a cardboard cutout of you. Restart to try again."}

	// ErrCommandUnavailable is returned for commands the active view does not accept.
	ErrCommandUnavailable = &Error{Kind: KindInvalidCommand, Message: "command not available in the current view"}
	// ErrSubmissionInFlight rejects a submit while a previous one is outstanding.
	ErrSubmissionInFlight = &Error{Kind: KindInvalidCommand, Message: "registration already being submitted"}
	// ErrNameIndexOutOfRange rejects a name edit outside the guest list.
	ErrNameIndexOutOfRange = &Error{Kind: KindInvalidCommand, Message: "name index out of range"}
	// ErrVisitorNotFound is returned when a visitor has not connected.
	ErrVisitorNotFound = errors.New("visitor not found")
	// ErrVisitorClosed is returned for commands sent after the visitor left.
	ErrVisitorClosed = errors.New("visitor closed")
)

// KindOf returns the category of err, or "" for uncategorized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the text to show the visitor for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrUnexpectedSink.Message
}
