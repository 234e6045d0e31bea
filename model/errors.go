package model

// RuleError is a business-rule violation. The operation is aborted and nothing is written.
type RuleError string

func (e RuleError) Error() string { return string(e) }

const (
	ErrSignupClosed       RuleError = "signup is closed for this event"
	ErrEventFull          RuleError = "event is full"
	ErrAlreadySignedUp    RuleError = "already signed up for this event"
	ErrNotParticipant     RuleError = "user is not a participant of this event"
	ErrEventClosed        RuleError = "event is already completed or cancelled"
	ErrOnlyVolunteers     RuleError = "only volunteers can be added to events"
	ErrInvalidTransition  RuleError = "event cannot move to the requested status"
	ErrCapacityBelowCount RuleError = "maxParticipants cannot be lower than the current number of participants"
	ErrRoleAlreadySet     RuleError = "role has already been selected"
	ErrRequestResolved    RuleError = "help request has already been resolved"
)

// ValidationError reports malformed input, caught before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
