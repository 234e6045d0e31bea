package store

import "volunteerhub/model"

// NotificationKey addresses a notification inside its recipient's namespace.
type NotificationKey struct {
	Recipient string
	ID        string
}

type LinkField string

const (
	LinkSignedUp LinkField = "signedUpEvents"
	LinkPosted   LinkField = "postedEvents"
)

// UserLink adds or removes an event id on one of the user's event reference lists.
type UserLink struct {
	Email   string
	EventID string
	Field   LinkField
	Remove  bool
}

// WriteSet collects the documents created or deleted by one user action. Consumed
// notifications must still exist at commit time, otherwise the commit fails with
// ErrNotFound and nothing is written.
type WriteSet struct {
	Events        []model.Event
	Notifications []model.Notification
	Consumed      []NotificationKey
	Feedback      []model.Feedback
	Verifications []model.ServiceVerification
	HelpRequests  []model.HelpRequest
	Links         []UserLink
}

func (w *WriteSet) Notify(n ...model.Notification) {
	w.Notifications = append(w.Notifications, n...)
}

func (w *WriteSet) Consume(recipient, id string) {
	w.Consumed = append(w.Consumed, NotificationKey{Recipient: model.NormalizeEmail(recipient), ID: id})
}

func (w *WriteSet) Link(email, eventID string, field LinkField) {
	w.Links = append(w.Links, UserLink{Email: model.NormalizeEmail(email), EventID: eventID, Field: field})
}

func (w *WriteSet) Unlink(email, eventID string, field LinkField) {
	w.Links = append(w.Links, UserLink{Email: model.NormalizeEmail(email), EventID: eventID, Field: field, Remove: true})
}

func (w *WriteSet) Empty() bool {
	return w == nil || (len(w.Events) == 0 && len(w.Notifications) == 0 && len(w.Consumed) == 0 &&
		len(w.Feedback) == 0 && len(w.Verifications) == 0 && len(w.HelpRequests) == 0 && len(w.Links) == 0)
}
