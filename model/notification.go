package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAnnouncement             NotificationType = "announcement"
	NotificationMessage                  NotificationType = "message"
	NotificationRequest                  NotificationType = "request"
	NotificationRequestApproved          NotificationType = "request_approved"
	NotificationRequestRejected          NotificationType = "request_rejected"
	NotificationFeedbackRequestVolunteer NotificationType = "feedback_request_volunteer"
	NotificationFeedbackRequestMember    NotificationType = "feedback_request_member"
	NotificationServiceVerification      NotificationType = "service_verification"
	NotificationFeedbackSubmitted        NotificationType = "feedback_submitted"
	NotificationVerificationResult       NotificationType = "verification_result"
)

// Actionable notifications represent a pending action and are deleted by the
// action that consumes them. The rest are informational.
func (t NotificationType) Actionable() bool {
	switch t {
	case NotificationRequest,
		NotificationFeedbackRequestVolunteer,
		NotificationFeedbackRequestMember,
		NotificationServiceVerification:
		return true
	case NotificationAnnouncement,
		NotificationMessage,
		NotificationRequestApproved,
		NotificationRequestRejected,
		NotificationFeedbackSubmitted,
		NotificationVerificationResult:
		return false
	default:
		return false
	}
}

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationUnread  NotificationStatus = "unread"
)

// NotificationPayload is the structured part of a notification. Forms are embedded
// so the response form can be rendered without another lookup.
type NotificationPayload struct {
	EventID       string                 `json:"eventId,omitempty" firestore:"eventId,omitempty" bson:"eventId,omitempty"`
	EventTitle    string                 `json:"eventTitle,omitempty" firestore:"eventTitle,omitempty" bson:"eventTitle,omitempty"`
	HelpRequestID string                 `json:"helpRequestId,omitempty" firestore:"helpRequestId,omitempty" bson:"helpRequestId,omitempty"`
	FromEmail     string                 `json:"fromEmail,omitempty" firestore:"fromEmail,omitempty" bson:"fromEmail,omitempty"`
	FromName      string                 `json:"fromName,omitempty" firestore:"fromName,omitempty" bson:"fromName,omitempty"`
	Participants  []string               `json:"participants,omitempty" firestore:"participants,omitempty" bson:"participants,omitempty"`
	Form          Form                   `json:"form,omitempty" firestore:"form,omitempty" bson:"form,omitempty"`
	Responses     map[string]interface{} `json:"responses,omitempty" firestore:"responses,omitempty" bson:"responses,omitempty"`
}

type Notification struct {
	ID        string               `json:"id" firestore:"id" bson:"_id"`
	Type      NotificationType     `json:"type" firestore:"type" bson:"type"`
	Recipient string               `json:"recipient" firestore:"recipient" bson:"recipient"`
	Message   string               `json:"message" firestore:"message" bson:"message"`
	Payload   *NotificationPayload `json:"payload,omitempty" firestore:"payload,omitempty" bson:"payload,omitempty"`
	Status    NotificationStatus   `json:"status" firestore:"status" bson:"status"`
	CreatedAt time.Time            `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

// NewNotification addresses a notification to recipient with a fresh id.
func NewNotification(recipient string, t NotificationType, message string, payload *NotificationPayload, now time.Time) Notification {
	status := NotificationUnread
	if t.Actionable() {
		status = NotificationPending
	}
	return Notification{
		ID:        uuid.New().String(),
		Type:      t,
		Recipient: NormalizeEmail(recipient),
		Message:   message,
		Payload:   payload,
		Status:    status,
		CreatedAt: now,
	}
}

func (n Notification) Clone() Notification {
	if n.Payload != nil {
		p := *n.Payload
		p.Participants = append([]string(nil), p.Participants...)
		p.Form = append(Form(nil), p.Form...)
		if p.Responses != nil {
			responses := make(map[string]interface{}, len(p.Responses))
			for k, v := range p.Responses {
				responses[k] = v
			}
			p.Responses = responses
		}
		n.Payload = &p
	}
	return n
}

func (n Notification) EventID() string {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.EventID
}
