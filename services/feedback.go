package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

type FeedbackService struct {
	store store.Store
	forms *FormCatalog
	log   *zap.Logger
	now   func() time.Time
}

func NewFeedbackService(st store.Store, forms *FormCatalog, log *zap.Logger) *FeedbackService {
	return &FeedbackService{store: st, forms: forms, log: log, now: time.Now}
}

// actionable loads one of the caller's notifications and checks it is of an
// expected actionable type.
func actionable(ctx context.Context, st store.NotificationStore, sess *model.Session, id string, types ...model.NotificationType) (*model.Notification, error) {
	n, err := st.GetNotification(ctx, sess.Email, id)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if n.Type == t {
			if n.Payload == nil || n.Payload.EventID == "" {
				return nil, model.Invalid("notificationId", "notification is not linked to an event")
			}
			return n, nil
		}
	}
	return nil, model.Invalid("notificationId", fmt.Sprintf("notification of type %s cannot be answered here", n.Type))
}

// Submit answers a feedback request. The feedback, the deletion of the request and
// the notice to the event creator are written together.
func (s *FeedbackService) Submit(ctx context.Context, sess *model.Session, req dto.ResponseSubmission) (*model.Feedback, error) {
	n, err := actionable(ctx, s.store, sess, req.NotificationID,
		model.NotificationFeedbackRequestVolunteer, model.NotificationFeedbackRequestMember)
	if err != nil {
		return nil, err
	}
	form := n.Payload.Form
	if len(form) == 0 {
		form = s.forms.Volunteer
		if n.Type == model.NotificationFeedbackRequestMember {
			form = s.forms.Member
		}
	}
	responses, err := form.NormalizeResponses(req.Responses)
	if err != nil {
		return nil, err
	}
	for id, v := range responses {
		if text, ok := v.(string); ok {
			responses[id] = cleanText(text)
		}
	}

	ev, err := s.store.GetEvent(ctx, n.Payload.EventID)
	if err != nil {
		return nil, err
	}

	role := model.FeedbackVolunteer
	if n.Type == model.NotificationFeedbackRequestMember {
		role = model.FeedbackMember
	}
	now := s.now()
	fb := model.Feedback{
		ID:          uuid.New().String(),
		EventID:     ev.ID,
		SubmittedBy: sess.Email,
		Role:        role,
		Responses:   responses,
		SubmittedAt: now,
	}

	var w store.WriteSet
	w.Feedback = append(w.Feedback, fb)
	w.Consume(sess.Email, n.ID)
	w.Notify(feedbackSubmittedNotification(ev, &fb, sess, now))
	if err := s.store.Commit(ctx, &w); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	s.log.Info("feedback submitted",
		zap.String("event_id", ev.ID),
		zap.String("email", sess.Email),
		zap.String("role", string(role)))
	return &fb, nil
}

// ForEvent summarizes the feedback of one event for its creator.
func (s *FeedbackService) ForEvent(ctx context.Context, sess *model.Session, eventID string) (*dto.FeedbackSummary, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := requireCreator(ev, sess); err != nil {
		return nil, err
	}
	entries, err := s.store.ListFeedback(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	summary := s.summarize(ev, entries)
	return &summary, nil
}

// Overview summarizes feedback over every completed event the caller created.
func (s *FeedbackService) Overview(ctx context.Context, sess *model.Session) ([]dto.FeedbackSummary, error) {
	if err := requireRole(sess, "only coordinators can review feedback", model.RoleCoordinator); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, store.EventQuery{CreatedBy: sess.Email, Status: model.StatusCompleted})
	if err != nil {
		return nil, err
	}
	out := make([]dto.FeedbackSummary, 0, len(events))
	for i := range events {
		entries, err := s.store.ListFeedback(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s.summarize(&events[i], entries))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (s *FeedbackService) summarize(ev *model.Event, entries []model.Feedback) dto.FeedbackSummary {
	var volunteer, member []model.Feedback
	for _, fb := range entries {
		if fb.Role == model.FeedbackMember {
			member = append(member, fb)
		} else {
			volunteer = append(volunteer, fb)
		}
	}
	if entries == nil {
		entries = []model.Feedback{}
	}
	return dto.FeedbackSummary{
		EventID:     ev.ID,
		EventTitle:  ev.Title,
		Total:       len(entries),
		Volunteer:   summarizeForm(s.forms.Volunteer, volunteer),
		Member:      summarizeForm(s.forms.Member, member),
		Submissions: entries,
	}
}

func summarizeForm(form model.Form, entries []model.Feedback) []dto.QuestionSummary {
	out := make([]dto.QuestionSummary, 0, len(form))
	for _, q := range form {
		qs := dto.QuestionSummary{ID: q.ID, Question: q.Question, Type: string(q.Type)}
		var sum int64
		for _, fb := range entries {
			v, ok := fb.Responses[q.ID]
			if !ok {
				continue
			}
			switch q.Type {
			case model.QuestionRating:
				if n, ok := ratingValue(v); ok {
					sum += n
					qs.Answers++
				}
			case model.QuestionBoolean:
				if b, ok := v.(bool); ok {
					qs.Answers++
					if b {
						qs.Yes++
					} else {
						qs.No++
					}
				}
			default:
				qs.Answers++
			}
		}
		if q.Type == model.QuestionRating && qs.Answers > 0 {
			qs.Average = float64(sum) / float64(qs.Answers)
		}
		out = append(out, qs)
	}
	return out
}

// ratingValue reads a stored rating; drivers decode integers with different widths.
func ratingValue(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
