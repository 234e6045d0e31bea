package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

// EventService runs the event lifecycle and the signup rules. Every read-modify-write
// of an event goes through store.UpdateEvent so concurrent signups cannot over-fill.
type EventService struct {
	store store.Store
	forms *FormCatalog
	log   *zap.Logger
	now   func() time.Time
}

func NewEventService(st store.Store, forms *FormCatalog, log *zap.Logger) *EventService {
	return &EventService{store: st, forms: forms, log: log, now: time.Now}
}

// Create posts a new event, or a whole series when a recurrence rule is given. An
// approved help request can be linked so the requester receives member feedback.
func (s *EventService) Create(ctx context.Context, sess *model.Session, req dto.CreateEventRequest) ([]model.Event, error) {
	if err := requireRole(sess, "only coordinators can create events", model.RoleCoordinator); err != nil {
		return nil, err
	}

	now := s.now()
	base := model.Event{
		Title:           cleanText(req.Title),
		Description:     cleanText(req.Description),
		Location:        cleanText(req.Location),
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		Status:          model.StatusUpcoming,
		CreatedBy:       model.Creator{Email: sess.Email, Name: sess.DisplayName()},
		MaxParticipants: req.MaxParticipants,
		ParticipantList: []string{},
		CanSignUp:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.CanSignUp != nil {
		base.CanSignUp = *req.CanSignUp
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	if req.HelpRequestID != "" {
		h, err := s.store.GetHelpRequest(ctx, req.HelpRequestID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, model.Invalid("helpRequestId", "unknown help request")
		}
		if err != nil {
			return nil, fmt.Errorf("load help request: %w", err)
		}
		if h.Status != model.HelpApproved {
			return nil, model.Invalid("helpRequestId", "help request has not been approved")
		}
		base.HelpRequestID = h.ID
		base.RequestedBy = h.Requester
	}

	starts, err := expandRecurrence(req.Recurrence, base.StartTime)
	if err != nil {
		return nil, err
	}
	duration := base.EndTime.Sub(base.StartTime)
	seriesID := ""
	if len(starts) > 1 {
		seriesID = uuid.New().String()
	}

	var w store.WriteSet
	for _, start := range starts {
		ev := base.Clone()
		ev.ID = uuid.New().String()
		ev.StartTime = start
		ev.EndTime = start.Add(duration)
		ev.SeriesID = seriesID
		w.Events = append(w.Events, ev)
		w.Link(sess.Email, ev.ID, store.LinkPosted)
	}
	if base.RequestedBy != "" {
		msg := fmt.Sprintf("%s scheduled %s for your help request.", sess.DisplayName(), base.Title)
		w.Notify(announceTo(&w.Events[0], []string{base.RequestedBy}, msg, sess, now)...)
	}

	if err := s.store.Commit(ctx, &w); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created",
		zap.String("event_id", w.Events[0].ID),
		zap.Int("occurrences", len(w.Events)),
		zap.String("created_by", sess.Email))
	return w.Events, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// Calendar lists events in [from, to) by start time. With mine set the list is
// narrowed to the caller's own events.
func (s *EventService) Calendar(ctx context.Context, sess *model.Session, q dto.CalendarQuery) ([]model.Event, error) {
	if !q.From.IsZero() && !q.To.IsZero() && !q.To.After(q.From) {
		return nil, model.Invalid("to", "to must be after from")
	}
	eq := store.EventQuery{From: q.From, To: q.To, Status: model.EventStatus(q.Status)}
	if q.Mine {
		if err := scopeToCaller(&eq, sess); err != nil {
			return nil, err
		}
	}
	return s.store.ListEvents(ctx, eq)
}

// Tasks returns the caller's events that still need attention.
func (s *EventService) Tasks(ctx context.Context, sess *model.Session) ([]model.Event, error) {
	var eq store.EventQuery
	if err := scopeToCaller(&eq, sess); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, eq)
	if err != nil {
		return nil, err
	}
	open := events[:0]
	for _, ev := range events {
		if !ev.Status.Terminal() {
			open = append(open, ev)
		}
	}
	return open, nil
}

func scopeToCaller(eq *store.EventQuery, sess *model.Session) error {
	switch sess.Role() {
	case model.RoleVolunteer:
		eq.Participant = sess.Email
	case model.RoleCoordinator:
		eq.CreatedBy = sess.Email
	case model.RoleCommunity:
		eq.RequestedBy = sess.Email
	default:
		return ErrRoleRequired
	}
	return nil
}

func (s *EventService) Update(ctx context.Context, sess *model.Session, id string, req dto.UpdateEventRequest) (*model.Event, error) {
	return s.store.UpdateEvent(ctx, id, func(ev *model.Event, _ *store.WriteSet) error {
		if err := requireCreator(ev, sess); err != nil {
			return err
		}
		if ev.Status.Terminal() {
			return model.ErrEventClosed
		}
		if err := ev.SetCapacity(req.MaxParticipants); err != nil {
			return err
		}
		ev.Title = cleanText(req.Title)
		ev.Description = cleanText(req.Description)
		ev.Location = cleanText(req.Location)
		ev.StartTime = req.StartTime.UTC()
		ev.EndTime = req.EndTime.UTC()
		if req.CanSignUp != nil {
			ev.CanSignUp = *req.CanSignUp
		}
		ev.UpdatedAt = s.now()
		return ev.Validate()
	})
}

func (s *EventService) Start(ctx context.Context, sess *model.Session, id string) (*model.Event, error) {
	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, _ *store.WriteSet) error {
		if err := requireCreator(ev, sess); err != nil {
			return err
		}
		if err := ev.Transition(model.StatusOngoing); err != nil {
			return err
		}
		ev.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("event started", zap.String("event_id", id))
	return ev, nil
}

// Complete closes the event and, in the same write, asks participants and the
// requester for feedback and the creator for a service verification.
func (s *EventService) Complete(ctx context.Context, sess *model.Session, id string) (*model.Event, error) {
	var sent int
	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, w *store.WriteSet) error {
		if err := requireCreator(ev, sess); err != nil {
			return err
		}
		if err := ev.Transition(model.StatusCompleted); err != nil {
			return err
		}
		now := s.now()
		ev.UpdatedAt = now
		notifications := completionNotifications(ev, s.forms, now)
		sent = len(notifications)
		w.Notify(notifications...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("event completed", zap.String("event_id", id), zap.Int("notifications", sent))
	return ev, nil
}

// Cancel requires an explicit confirmation; without it nothing is written and a
// ConfirmationRequiredError carries the number of affected participants.
func (s *EventService) Cancel(ctx context.Context, sess *model.Session, id string, confirm bool) (*model.Event, error) {
	if !confirm {
		ev, err := s.store.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := requireCreator(ev, sess); err != nil {
			return nil, err
		}
		if !ev.Status.CanMoveTo(model.StatusCancelled) {
			return nil, model.ErrInvalidTransition
		}
		return nil, &ConfirmationRequiredError{Action: "cancelling this event", Participants: ev.CurrentParticipants}
	}

	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, w *store.WriteSet) error {
		if err := requireCreator(ev, sess); err != nil {
			return err
		}
		if err := ev.Transition(model.StatusCancelled); err != nil {
			return err
		}
		now := s.now()
		ev.UpdatedAt = now
		msg := fmt.Sprintf("%s has been cancelled.", ev.Title)
		w.Notify(announcementNotifications(ev, msg, sess, now)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("event cancelled", zap.String("event_id", id), zap.Int("participants", ev.CurrentParticipants))
	return ev, nil
}

// Announce sends an announcement to every participant and reports how many were notified.
func (s *EventService) Announce(ctx context.Context, sess *model.Session, id, message string) (int, error) {
	message = cleanText(message)
	if message == "" {
		return 0, model.Invalid("message", "message is required")
	}
	ev, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := requireCreator(ev, sess); err != nil {
		return 0, err
	}
	var w store.WriteSet
	w.Notify(announcementNotifications(ev, message, sess, s.now())...)
	if err := s.store.Commit(ctx, &w); err != nil {
		return 0, fmt.Errorf("send announcement: %w", err)
	}
	return len(w.Notifications), nil
}

// SignUp adds the calling volunteer to the event.
func (s *EventService) SignUp(ctx context.Context, sess *model.Session, id string) (*model.Event, error) {
	if err := requireRole(sess, "only volunteers can sign up for events", model.RoleVolunteer); err != nil {
		return nil, err
	}
	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, w *store.WriteSet) error {
		if err := ev.AddParticipant(sess.Email); err != nil {
			return err
		}
		ev.UpdatedAt = s.now()
		w.Link(sess.Email, ev.ID, store.LinkSignedUp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("volunteer signed up", zap.String("event_id", id), zap.String("email", sess.Email))
	return ev, nil
}

// Withdraw removes the caller from the event's participants.
func (s *EventService) Withdraw(ctx context.Context, sess *model.Session, id string) (*model.Event, error) {
	return s.removeParticipant(ctx, sess, id, sess.Email)
}

// AddParticipant lets the creator add an existing volunteer, subject to the same
// capacity rules as a self signup.
func (s *EventService) AddParticipant(ctx context.Context, sess *model.Session, id, email string) (*model.Event, error) {
	current, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireCreator(current, sess); err != nil {
		return nil, err
	}

	target, err := s.store.GetUser(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, model.ErrOnlyVolunteers
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if target.Role != model.RoleVolunteer {
		return nil, model.ErrOnlyVolunteers
	}

	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, w *store.WriteSet) error {
		if err := requireCreator(ev, sess); err != nil {
			return err
		}
		if err := ev.AddParticipant(target.Email); err != nil {
			return err
		}
		now := s.now()
		ev.UpdatedAt = now
		w.Link(target.Email, ev.ID, store.LinkSignedUp)
		msg := fmt.Sprintf("%s added you to %s.", sess.DisplayName(), ev.Title)
		w.Notify(announceTo(ev, []string{target.Email}, msg, sess, now)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("participant added", zap.String("event_id", id), zap.String("email", target.Email))
	return ev, nil
}

// RemoveParticipant is allowed for the creator and for the participant themselves.
func (s *EventService) RemoveParticipant(ctx context.Context, sess *model.Session, id, email string) (*model.Event, error) {
	return s.removeParticipant(ctx, sess, id, email)
}

func (s *EventService) removeParticipant(ctx context.Context, sess *model.Session, id, email string) (*model.Event, error) {
	email = model.NormalizeEmail(email)
	self := email == sess.Email
	ev, err := s.store.UpdateEvent(ctx, id, func(ev *model.Event, w *store.WriteSet) error {
		if !self && !ev.IsCreator(sess.Email) {
			return forbidden("only the event creator or the participant can remove a participant")
		}
		if err := ev.RemoveParticipant(email); err != nil {
			return err
		}
		now := s.now()
		ev.UpdatedAt = now
		w.Unlink(email, ev.ID, store.LinkSignedUp)
		if !self {
			msg := fmt.Sprintf("%s removed you from %s.", sess.DisplayName(), ev.Title)
			w.Notify(announceTo(ev, []string{email}, msg, sess, now)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("participant removed", zap.String("event_id", id), zap.String("email", email), zap.Bool("self", self))
	return ev, nil
}
