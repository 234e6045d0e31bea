package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("token is expired or invalid")
	ErrForbidden          = errors.New("forbidden")
	ErrRoleRequired       = errors.New("select a role before using this feature")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
)

// forbidden wraps ErrForbidden with the reason shown to the caller.
func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// ConfirmationRequiredError is returned by destructive operations called without an
// explicit confirmation. Nothing has been written.
type ConfirmationRequiredError struct {
	Action       string
	Participants int
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s affects %d participant(s); resend with confirm=true", e.Action, e.Participants)
}
