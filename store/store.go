// Package store persists users, events, notifications, feedback, verifications and
// help requests in a document store. Every multi-document mutation is expressed as a
// WriteSet and committed atomically by the driver.
package store

import (
	"context"
	"errors"
	"time"

	"volunteerhub/model"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Collection names shared by every driver.
const (
	CollectionUsers         = "users"
	CollectionNotifications = "notifications"
	CollectionEvents        = "events"
	CollectionFeedback      = "feedback"
	CollectionVerifications = "service_verifications"
	CollectionHelpRequests  = "help_requests"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, email string, fn func(u *model.User) error) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// EventMutation changes ev in place and may queue side effects on w. Returning an
// error aborts the whole mutation.
type EventMutation func(ev *model.Event, w *WriteSet) error

type EventQuery struct {
	From        time.Time
	To          time.Time
	Status      model.EventStatus
	CreatedBy   string
	Participant string
	RequestedBy string
	Limit       int
}

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, q EventQuery) ([]model.Event, error)
	// UpdateEvent reads, mutates and writes the event together with the queued
	// WriteSet inside one transaction.
	UpdateEvent(ctx context.Context, id string, fn EventMutation) (*model.Event, error)
}

type NotificationStore interface {
	GetNotification(ctx context.Context, recipient, id string) (*model.Notification, error)
	// ListNotifications returns the most recent notifications first.
	ListNotifications(ctx context.Context, recipient string, limit int) ([]model.Notification, error)
}

type FeedbackStore interface {
	ListFeedback(ctx context.Context, eventID string) ([]model.Feedback, error)
}

type VerificationStore interface {
	ListVerifications(ctx context.Context, eventID string) ([]model.ServiceVerification, error)
}

type HelpRequestMutation func(h *model.HelpRequest, w *WriteSet) error

type HelpRequestStore interface {
	GetHelpRequest(ctx context.Context, id string) (*model.HelpRequest, error)
	// ListHelpRequests filters by requester and/or status; empty values match all.
	ListHelpRequests(ctx context.Context, requester string, status model.HelpRequestStatus) ([]model.HelpRequest, error)
	UpdateHelpRequest(ctx context.Context, id string, fn HelpRequestMutation) (*model.HelpRequest, error)
}

type Committer interface {
	Commit(ctx context.Context, w *WriteSet) error
}

// Store is the full document store used by the services.
type Store interface {
	UserStore
	EventStore
	NotificationStore
	FeedbackStore
	VerificationStore
	HelpRequestStore
	Committer
	Close() error
}
