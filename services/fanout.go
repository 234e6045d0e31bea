package services

import (
	"fmt"
	"time"

	"volunteerhub/model"
)

// The builders below turn one user action into the notifications it produces. They
// are pure; callers queue the result on a store.WriteSet so the action and its
// notifications are committed together.

func eventPayload(ev *model.Event) *model.NotificationPayload {
	return &model.NotificationPayload{EventID: ev.ID, EventTitle: ev.Title}
}

// helpRequestNotifications addresses one request notification to each coordinator.
func helpRequestNotifications(coordinators []model.User, h *model.HelpRequest, now time.Time) []model.Notification {
	msg := fmt.Sprintf("%s requested help: %s", h.RequesterName, h.Subject)
	out := make([]model.Notification, 0, len(coordinators))
	for _, c := range coordinators {
		payload := &model.NotificationPayload{
			HelpRequestID: h.ID,
			FromEmail:     h.Requester,
			FromName:      h.RequesterName,
		}
		out = append(out, model.NewNotification(c.Email, model.NotificationRequest, msg, payload, now))
	}
	return out
}

// completionNotifications requests feedback from every participant and from the
// requesting community member, and asks the creator to verify attendance.
func completionNotifications(ev *model.Event, forms *FormCatalog, now time.Time) []model.Notification {
	out := make([]model.Notification, 0, len(ev.ParticipantList)+2)
	for _, p := range ev.ParticipantList {
		payload := eventPayload(ev)
		payload.Form = append(model.Form(nil), forms.Volunteer...)
		msg := fmt.Sprintf("Thanks for volunteering at %s. Tell us how it went.", ev.Title)
		out = append(out, model.NewNotification(p, model.NotificationFeedbackRequestVolunteer, msg, payload, now))
	}
	if ev.RequestedBy != "" {
		payload := eventPayload(ev)
		payload.Form = append(model.Form(nil), forms.Member...)
		msg := fmt.Sprintf("%s has been completed. How well did it address your request?", ev.Title)
		out = append(out, model.NewNotification(ev.RequestedBy, model.NotificationFeedbackRequestMember, msg, payload, now))
	}
	payload := eventPayload(ev)
	payload.Participants = append([]string(nil), ev.ParticipantList...)
	payload.Form = forms.VerificationForm(ev.ParticipantList)
	msg := fmt.Sprintf("Verify who served at %s.", ev.Title)
	out = append(out, model.NewNotification(ev.CreatedBy.Email, model.NotificationServiceVerification, msg, payload, now))
	return out
}

func feedbackSubmittedNotification(ev *model.Event, fb *model.Feedback, from *model.Session, now time.Time) model.Notification {
	payload := eventPayload(ev)
	payload.FromEmail = from.Email
	payload.FromName = from.DisplayName()
	payload.Responses = fb.Responses
	msg := fmt.Sprintf("%s submitted feedback for %s.", from.DisplayName(), ev.Title)
	return model.NewNotification(ev.CreatedBy.Email, model.NotificationFeedbackSubmitted, msg, payload, now)
}

func verificationResultNotifications(ev *model.Event, verified []string, by *model.Session, now time.Time) []model.Notification {
	out := make([]model.Notification, 0, len(verified))
	msg := fmt.Sprintf("Your service at %s has been verified.", ev.Title)
	for _, p := range verified {
		payload := eventPayload(ev)
		payload.FromEmail = by.Email
		payload.FromName = by.DisplayName()
		out = append(out, model.NewNotification(p, model.NotificationVerificationResult, msg, payload, now))
	}
	return out
}

func resolutionNotification(h *model.HelpRequest, by *model.Session, now time.Time) model.Notification {
	t := model.NotificationRequestRejected
	msg := fmt.Sprintf("Your help request %q was declined.", h.Subject)
	if h.Status == model.HelpApproved {
		t = model.NotificationRequestApproved
		msg = fmt.Sprintf("Your help request %q was approved.", h.Subject)
	}
	payload := &model.NotificationPayload{
		HelpRequestID: h.ID,
		FromEmail:     by.Email,
		FromName:      by.DisplayName(),
	}
	return model.NewNotification(h.Requester, t, msg, payload, now)
}

// announcementNotifications sends message to every participant of ev.
func announcementNotifications(ev *model.Event, message string, from *model.Session, now time.Time) []model.Notification {
	return announceTo(ev, ev.ParticipantList, message, from, now)
}

func announceTo(ev *model.Event, recipients []string, message string, from *model.Session, now time.Time) []model.Notification {
	out := make([]model.Notification, 0, len(recipients))
	for _, r := range recipients {
		payload := eventPayload(ev)
		payload.FromEmail = from.Email
		payload.FromName = from.DisplayName()
		out = append(out, model.NewNotification(r, model.NotificationAnnouncement, message, payload, now))
	}
	return out
}

func messageNotification(to string, message string, from *model.Session, now time.Time) model.Notification {
	payload := &model.NotificationPayload{FromEmail: from.Email, FromName: from.DisplayName()}
	return model.NewNotification(to, model.NotificationMessage, message, payload, now)
}
