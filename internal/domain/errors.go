package domain

import "errors"

var (
	// ErrEmptyMessage is returned for blank chat input; the fallback API is never called.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrUnauthorized is returned when an operation requires a signed-in donor.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrScoreOutOfRange is returned when a submitted score is outside [0, round length].
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrCatalogTooSmall indicates the question bank holds fewer questions than a round needs.
	ErrCatalogTooSmall = errors.New("catalog smaller than round length")
	// ErrCatalogNotFound indicates the game has no question bank.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrRoundFinished is returned for submissions after the last question.
	ErrRoundFinished = errors.New("round already finished")
	// ErrRoundNotAnswered is returned by Advance before the current question was answered.
	ErrRoundNotAnswered = errors.New("current question not answered")
	// ErrChoiceOutOfRange indicates a submitted choice index is invalid.
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrBadCredentials indicates a failed login.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrAppointmentNotFound indicates an unknown or foreign appointment id.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrAppointmentNotPending is returned when cancelling a non-pending appointment.
	ErrAppointmentNotPending = errors.New("appointment is not pending")
)

// ValidationError carries the per-field messages a form submission failed with.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "validation failed"
	}
	return e.Problems[0]
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
