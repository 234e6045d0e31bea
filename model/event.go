package model

import (
	"strings"
	"time"
)

type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// transitions lists the statuses reachable from each status. Completed and
// cancelled are terminal.
var transitions = map[EventStatus][]EventStatus{
	StatusUpcoming: {StatusOngoing, StatusCancelled},
	StatusOngoing:  {StatusCompleted, StatusCancelled},
}

func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s EventStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s EventStatus) CanMoveTo(next EventStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Creator struct {
	Email string `json:"email" firestore:"email" bson:"email"`
	Name  string `json:"name" firestore:"name" bson:"name"`
}

type Event struct {
	ID                  string      `json:"id" firestore:"id" bson:"_id"`
	Title               string      `json:"title" firestore:"title" bson:"title"`
	Description         string      `json:"description" firestore:"description" bson:"description"`
	Location            string      `json:"location" firestore:"location" bson:"location"`
	StartTime           time.Time   `json:"startTime" firestore:"startTime" bson:"startTime"`
	EndTime             time.Time   `json:"endTime" firestore:"endTime" bson:"endTime"`
	Status              EventStatus `json:"status" firestore:"status" bson:"status"`
	CreatedBy           Creator     `json:"createdBy" firestore:"createdBy" bson:"createdBy"`
	MaxParticipants     int         `json:"maxParticipants" firestore:"maxParticipants" bson:"maxParticipants"`
	CurrentParticipants int         `json:"currentParticipants" firestore:"currentParticipants" bson:"currentParticipants"`
	ParticipantList     []string    `json:"participantList" firestore:"participantList" bson:"participantList"`
	CanSignUp           bool        `json:"canSignUp" firestore:"canSignUp" bson:"canSignUp"`
	RequestedBy         string      `json:"requestedBy,omitempty" firestore:"requestedBy,omitempty" bson:"requestedBy,omitempty"`
	HelpRequestID       string      `json:"helpRequestId,omitempty" firestore:"helpRequestId,omitempty" bson:"helpRequestId,omitempty"`
	SeriesID            string      `json:"seriesId,omitempty" firestore:"seriesId,omitempty" bson:"seriesId,omitempty"`
	CreatedAt           time.Time   `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (e Event) Clone() Event {
	e.ParticipantList = append([]string(nil), e.ParticipantList...)
	return e
}

// Validate checks the fields a coordinator supplies plus the participant invariants.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return Invalid("title", "title is required")
	}
	if strings.TrimSpace(e.Location) == "" {
		return Invalid("location", "location is required")
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return Invalid("startTime", "start and end time are required")
	}
	if !e.EndTime.After(e.StartTime) {
		return Invalid("endTime", "end time must be after start time")
	}
	if e.MaxParticipants < 1 {
		return Invalid("maxParticipants", "maxParticipants must be at least 1")
	}
	if e.Status != "" && !e.Status.Valid() {
		return Invalid("status", "unknown status")
	}
	if e.CurrentParticipants != len(e.ParticipantList) {
		return Invalid("currentParticipants", "participant count does not match participant list")
	}
	if e.CurrentParticipants > e.MaxParticipants {
		return ErrCapacityBelowCount
	}
	return nil
}

func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

func (e *Event) HasParticipant(email string) bool {
	email = NormalizeEmail(email)
	for _, p := range e.ParticipantList {
		if p == email {
			return true
		}
	}
	return false
}

// SignupOpen is the derived signup status: new participants may join right now.
func (e *Event) SignupOpen() bool {
	return e.CanSignUp && !e.Status.Terminal() && !e.IsFull()
}

// CheckSignup reports why email could not join the event, or nil.
func (e *Event) CheckSignup(email string) error {
	if !e.CanSignUp || e.Status.Terminal() {
		return ErrSignupClosed
	}
	if e.IsFull() {
		return ErrEventFull
	}
	if e.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	return nil
}

// AddParticipant appends email and increments the count. On error the event is unchanged.
func (e *Event) AddParticipant(email string) error {
	if err := e.CheckSignup(email); err != nil {
		return err
	}
	e.ParticipantList = append(e.ParticipantList, NormalizeEmail(email))
	e.CurrentParticipants = len(e.ParticipantList)
	return nil
}

// RemoveParticipant drops email and decrements the count. On error the event is unchanged.
func (e *Event) RemoveParticipant(email string) error {
	if e.Status.Terminal() {
		return ErrEventClosed
	}
	email = NormalizeEmail(email)
	idx := -1
	for i, p := range e.ParticipantList {
		if p == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotParticipant
	}
	list := make([]string, 0, len(e.ParticipantList)-1)
	list = append(list, e.ParticipantList[:idx]...)
	list = append(list, e.ParticipantList[idx+1:]...)
	e.ParticipantList = list
	e.CurrentParticipants = len(list)
	return nil
}

// Transition moves the event to next. Entering a terminal status closes signup.
func (e *Event) Transition(next EventStatus) error {
	if !e.Status.CanMoveTo(next) {
		return ErrInvalidTransition
	}
	e.Status = next
	if next.Terminal() {
		e.CanSignUp = false
	}
	return nil
}

// SetCapacity changes maxParticipants without breaking the participant invariant.
func (e *Event) SetCapacity(max int) error {
	if max < 1 {
		return Invalid("maxParticipants", "maxParticipants must be at least 1")
	}
	if max < e.CurrentParticipants {
		return ErrCapacityBelowCount
	}
	e.MaxParticipants = max
	return nil
}

func (e *Event) IsCreator(email string) bool {
	return e.CreatedBy.Email == NormalizeEmail(email)
}
