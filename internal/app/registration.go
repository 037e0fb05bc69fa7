package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"invite-quiz-service/internal/domain"
)

const (
	MinGuests = 1
	MaxGuests = 5
)

// sinkSignals maps tagged sink rejections to categories, checked in order.
var sinkSignals = []struct {
	tag string
	err *domain.Error
}{
	{"invalid_or_used_code", domain.ErrInviteAlreadyUsed},
	{"invalid_code", domain.ErrInviteCodeMalformed},
	{"invalid_guests", domain.ErrGuestCountOutOfRange},
	{"names_count_mismatch", domain.ErrNamesCountMismatch},
}

// RegistrationFlow owns the registration form and submits the claim.
// All methods must run on the loop.
type RegistrationFlow struct {
	sink       RegistrationSink
	loop       Loop
	onComplete func()

	draft   domain.RegistrationDraft
	loading bool
	err     error
	done    bool
	closed  bool
}

func NewRegistrationFlow(sink RegistrationSink, loop Loop, onComplete func()) *RegistrationFlow {
	return &RegistrationFlow{
		sink:       sink,
		loop:       loop,
		onComplete: onComplete,
		draft: domain.RegistrationDraft{
			Attendance: domain.AttendanceUnanswered,
			GuestCount: MinGuests,
			Names:      []string{""},
		},
	}
}

// SetAttendance records the yes/no answer. "no" is final; "yes" opens the form.
func (f *RegistrationFlow) SetAttendance(choice domain.Attendance) error {
	if f.sink == nil {
		return domain.ErrConfigurationMissing
	}
	if f.draft.Attendance != domain.AttendanceUnanswered {
		return domain.ErrCommandUnavailable
	}
	switch choice {
	case domain.AttendanceYes, domain.AttendanceNo:
		f.draft.Attendance = choice
		return nil
	default:
		return domain.ErrCommandUnavailable
	}
}

// UpdateGuestCount clamps n into [MinGuests, MaxGuests] and resizes the name
// list, keeping existing entries.
func (f *RegistrationFlow) UpdateGuestCount(n int) error {
	if err := f.editable(); err != nil {
		return err
	}
	if n < MinGuests {
		n = MinGuests
	}
	if n > MaxGuests {
		n = MaxGuests
	}
	f.draft.GuestCount = n
	f.draft.Names = resizeNames(f.draft.Names, n)
	return nil
}

// UpdateName stores value as typed; trimming happens on submit.
func (f *RegistrationFlow) UpdateName(index int, value string) error {
	if err := f.editable(); err != nil {
		return err
	}
	if index < 0 || index >= len(f.draft.Names) {
		return domain.ErrNameIndexOutOfRange
	}
	f.draft.Names[index] = value
	return nil
}

func (f *RegistrationFlow) UpdateInviteCode(value string) error {
	if err := f.editable(); err != nil {
		return err
	}
	f.draft.InviteCode = value
	return nil
}

// Submit validates the draft and hands the claim to the sink. Only one
// submission may be outstanding.
func (f *RegistrationFlow) Submit() error {
	if err := f.editable(); err != nil {
		return err
	}
	if f.loading {
		return domain.ErrSubmissionInFlight
	}
	claim, err := BuildClaim(f.draft)
	if err != nil {
		f.err = err
		return err
	}

	f.err = nil
	f.loading = true
	sink := f.sink
	f.loop.Go(func(ctx context.Context) func() {
		err := sink.Claim(ctx, claim)
		return func() { f.finish(err) }
	})
	return nil
}

// Close drops any outstanding submission result.
func (f *RegistrationFlow) Close() {
	f.closed = true
}

// Draft returns a copy of the form fields.
func (f *RegistrationFlow) Draft() domain.RegistrationDraft {
	d := f.draft
	d.Names = append([]string(nil), f.draft.Names...)
	return d
}

func (f *RegistrationFlow) Loading() bool {
	return f.loading
}

// Err is the category of the last failed submission, if any.
func (f *RegistrationFlow) Err() error {
	return f.err
}

func (f *RegistrationFlow) View() *domain.RegistrationView {
	d := f.Draft()
	v := &domain.RegistrationView{
		Attendance: d.Attendance,
		InviteCode: d.InviteCode,
		GuestCount: d.GuestCount,
		Names:      d.Names,
		Loading:    f.loading,
	}
	if f.sink == nil {
		v.ErrorKind = domain.KindConfigurationMissing
		v.Error = domain.ErrConfigurationMissing.Message
	} else if f.err != nil {
		v.ErrorKind = domain.KindOf(f.err)
		v.Error = domain.Message(f.err)
	}
	return v
}

func (f *RegistrationFlow) finish(err error) {
	if f.closed {
		return
	}
	f.loading = false
	if err != nil {
		f.err = ClassifySinkError(err)
		if errors.Is(f.err, domain.ErrUnexpectedSink) {
			log.Printf("registration claim failed: %v", err)
		}
		return
	}
	if f.done {
		return
	}
	f.done = true
	if f.onComplete != nil {
		f.onComplete()
	}
}

func (f *RegistrationFlow) editable() error {
	if f.sink == nil {
		return domain.ErrConfigurationMissing
	}
	if f.done || f.draft.Attendance != domain.AttendanceYes {
		return domain.ErrCommandUnavailable
	}
	return nil
}

// BuildClaim validates the draft, first failure wins, and returns the
// normalized claim. Names are passed as entered.
func BuildClaim(d domain.RegistrationDraft) (domain.RegistrationClaim, error) {
	code := strings.TrimSpace(d.InviteCode)
	if code == "" {
		return domain.RegistrationClaim{}, domain.ErrEmptyInviteCode
	}
	for _, name := range d.Names {
		if strings.TrimSpace(name) == "" {
			return domain.RegistrationClaim{}, domain.ErrIncompleteNames
		}
	}
	return domain.RegistrationClaim{
		Code:   strings.ToUpper(code),
		Guests: d.GuestCount,
		Names:  append([]string(nil), d.Names...),
	}, nil
}

// ClassifySinkError maps a sink rejection to a user-facing category.
func ClassifySinkError(err error) error {
	var categorized *domain.Error
	if errors.As(err, &categorized) {
		return err
	}
	msg := err.Error()
	for _, s := range sinkSignals {
		if strings.Contains(msg, s.tag) {
			return fmt.Errorf("%w: %v", s.err, err)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrUnexpectedSink, err)
}

func resizeNames(names []string, n int) []string {
	out := make([]string, n)
	copy(out, names)
	return out
}
