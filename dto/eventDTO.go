package dto

import (
	"time"

	"volunteerhub/model"
)

type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Location        string    `json:"location" binding:"required,max=300"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
	MaxParticipants int       `json:"maxParticipants" binding:"required,min=1"`
	CanSignUp       *bool     `json:"canSignUp"`
	HelpRequestID   string    `json:"helpRequestId"`
	// Recurrence is an RRULE such as "FREQ=WEEKLY;COUNT=4".
	Recurrence string `json:"recurrence" binding:"max=500"`
}

type UpdateEventRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Location        string    `json:"location" binding:"required,max=300"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	EndTime         time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
	MaxParticipants int       `json:"maxParticipants" binding:"required,min=1"`
	CanSignUp       *bool     `json:"canSignUp"`
}

type CalendarQuery struct {
	From   time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Status string    `form:"status" binding:"omitempty,oneof=upcoming ongoing completed cancelled"`
	Mine   bool      `form:"mine"`
}

type CancelEventRequest struct {
	Confirm bool `json:"confirm"`
}

type AnnouncementRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

type AddParticipantRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// EventResponse adds the derived signup state to an event.
type EventResponse struct {
	model.Event
	SignupOpen bool `json:"signupOpen"`
	Full       bool `json:"full"`
}

func NewEventResponse(ev model.Event) EventResponse {
	return EventResponse{Event: ev, SignupOpen: ev.SignupOpen(), Full: ev.IsFull()}
}

func NewEventResponses(events []model.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, NewEventResponse(ev))
	}
	return out
}
