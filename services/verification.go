package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

type VerificationService struct {
	store store.Store
	forms *FormCatalog
	log   *zap.Logger
	now   func() time.Time
}

func NewVerificationService(st store.Store, forms *FormCatalog, log *zap.Logger) *VerificationService {
	return &VerificationService{store: st, forms: forms, log: log, now: time.Now}
}

// Submit records which participants served. Responses are keyed by participant email;
// every participant listed in the notification must be answered.
func (s *VerificationService) Submit(ctx context.Context, sess *model.Session, req dto.ResponseSubmission) (*model.ServiceVerification, error) {
	n, err := actionable(ctx, s.store, sess, req.NotificationID, model.NotificationServiceVerification)
	if err != nil {
		return nil, err
	}
	form := n.Payload.Form
	if len(form) == 0 {
		form = s.forms.VerificationForm(n.Payload.Participants)
	}

	responses := make(map[string]interface{}, len(req.Responses))
	for k, v := range req.Responses {
		email := model.NormalizeEmail(k)
		if _, dup := responses[email]; dup {
			return nil, model.Invalid("responses", fmt.Sprintf("%s is answered more than once", email))
		}
		responses[email] = v
	}
	var verified []string
	if len(form) > 0 {
		normalized, err := form.NormalizeResponses(responses)
		if err != nil {
			return nil, err
		}
		for _, q := range form {
			if served, _ := normalized[q.ID].(bool); served {
				verified = append(verified, q.ID)
			}
		}
	}
	if verified == nil {
		verified = []string{}
	}

	ev, err := s.store.GetEvent(ctx, n.Payload.EventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := model.ServiceVerification{
		ID:                   uuid.New().String(),
		EventID:              ev.ID,
		VerifiedParticipants: verified,
		VerifiedBy:           sess.Email,
		VerifiedAt:           now,
	}

	var w store.WriteSet
	w.Verifications = append(w.Verifications, record)
	w.Consume(sess.Email, n.ID)
	w.Notify(verificationResultNotifications(ev, verified, sess, now)...)
	if err := s.store.Commit(ctx, &w); err != nil {
		return nil, fmt.Errorf("save verification: %w", err)
	}
	s.log.Info("service verified",
		zap.String("event_id", ev.ID),
		zap.Int("verified", len(verified)),
		zap.Int("participants", len(form)))
	return &record, nil
}

func (s *VerificationService) ForEvent(ctx context.Context, sess *model.Session, eventID string) ([]model.ServiceVerification, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := requireCreator(ev, sess); err != nil {
		return nil, err
	}
	return s.store.ListVerifications(ctx, ev.ID)
}
