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

type HelpRequestService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewHelpRequestService(st store.Store, log *zap.Logger) *HelpRequestService {
	return &HelpRequestService{store: st, log: log, now: time.Now}
}

// Submit persists a pending help request and notifies every coordinator.
func (s *HelpRequestService) Submit(ctx context.Context, sess *model.Session, req dto.HelpRequestInput) (*model.HelpRequest, error) {
	if err := requireRole(sess, "only community members and volunteers can request help",
		model.RoleCommunity, model.RoleVolunteer); err != nil {
		return nil, err
	}
	subject, details := cleanText(req.Subject), cleanText(req.Details)
	if subject == "" {
		return nil, model.Invalid("subject", "subject is required")
	}
	if details == "" {
		return nil, model.Invalid("details", "details are required")
	}

	coordinators, err := s.store.ListUsersByRole(ctx, model.RoleCoordinator)
	if err != nil {
		return nil, fmt.Errorf("list coordinators: %w", err)
	}

	now := s.now()
	h := model.HelpRequest{
		ID:            uuid.New().String(),
		Requester:     sess.Email,
		RequesterName: sess.DisplayName(),
		RequesterRole: sess.Role(),
		Subject:       subject,
		Details:       details,
		Location:      cleanText(req.Location),
		PreferredDate: req.PreferredDate,
		Status:        model.HelpPending,
		CreatedAt:     now,
	}

	var w store.WriteSet
	w.HelpRequests = append(w.HelpRequests, h)
	w.Notify(helpRequestNotifications(coordinators, &h, now)...)
	if err := s.store.Commit(ctx, &w); err != nil {
		return nil, fmt.Errorf("save help request: %w", err)
	}
	s.log.Info("help request submitted",
		zap.String("help_request_id", h.ID),
		zap.String("requester", h.Requester),
		zap.Int("coordinators", len(coordinators)))
	return &h, nil
}

// List returns the caller's own requests, or for coordinators every request with
// the given status (pending by default).
func (s *HelpRequestService) List(ctx context.Context, sess *model.Session, status model.HelpRequestStatus) ([]model.HelpRequest, error) {
	switch sess.Role() {
	case "":
		return nil, ErrRoleRequired
	case model.RoleCoordinator:
		if status == "" {
			status = model.HelpPending
		}
		return s.store.ListHelpRequests(ctx, "", status)
	default:
		return s.store.ListHelpRequests(ctx, sess.Email, status)
	}
}

func (s *HelpRequestService) Get(ctx context.Context, sess *model.Session, id string) (*model.HelpRequest, error) {
	h, err := s.store.GetHelpRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Requester != sess.Email && !sess.HasRole(model.RoleCoordinator) {
		return nil, forbidden("only the requester and coordinators can view this request")
	}
	return h, nil
}

func (s *HelpRequestService) Approve(ctx context.Context, sess *model.Session, id, notificationID string) (*model.HelpRequest, error) {
	return s.resolve(ctx, sess, id, notificationID, true)
}

func (s *HelpRequestService) Reject(ctx context.Context, sess *model.Session, id, notificationID string) (*model.HelpRequest, error) {
	return s.resolve(ctx, sess, id, notificationID, false)
}

// resolve moves the request out of pending, tells the requester and consumes the
// acting coordinator's request notification in one write. When another coordinator
// resolved it first, the stale notification is still consumed.
func (s *HelpRequestService) resolve(ctx context.Context, sess *model.Session, id, notificationID string, approve bool) (*model.HelpRequest, error) {
	if err := requireRole(sess, "only coordinators can resolve help requests", model.RoleCoordinator); err != nil {
		return nil, err
	}
	n, err := s.store.GetNotification(ctx, sess.Email, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Type != model.NotificationRequest || n.Payload == nil || n.Payload.HelpRequestID != id {
		return nil, model.Invalid("notificationId", "notification does not belong to this help request")
	}

	h, err := s.store.UpdateHelpRequest(ctx, id, func(h *model.HelpRequest, w *store.WriteSet) error {
		now := s.now()
		if err := h.Resolve(approve, sess.Email, now); err != nil {
			return err
		}
		w.Consume(sess.Email, n.ID)
		w.Notify(resolutionNotification(h, sess, now))
		return nil
	})
	if errors.Is(err, model.ErrRequestResolved) {
		var w store.WriteSet
		w.Consume(sess.Email, n.ID)
		if cerr := s.store.Commit(ctx, &w); cerr != nil && !errors.Is(cerr, store.ErrNotFound) {
			s.log.Warn("consume stale request notification", zap.String("notification_id", n.ID), zap.Error(cerr))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("help request resolved",
		zap.String("help_request_id", h.ID),
		zap.String("status", string(h.Status)),
		zap.String("resolved_by", sess.Email))
	return h, nil
}
