package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 50
)

// NotificationService serves the polling inbox.
type NotificationService struct {
	store        store.Store
	defaultLimit int
	log          *zap.Logger
	now          func() time.Time
}

func NewNotificationService(st store.Store, defaultLimit int, log *zap.Logger) *NotificationService {
	if defaultLimit <= 0 || defaultLimit > MaxNotificationLimit {
		defaultLimit = DefaultNotificationLimit
	}
	return &NotificationService{store: st, defaultLimit: defaultLimit, log: log, now: time.Now}
}

// List returns the most recent notifications first. A limit of zero means the
// default; larger limits are capped.
func (s *NotificationService) List(ctx context.Context, sess *model.Session, limit int) ([]model.Notification, error) {
	switch {
	case limit <= 0:
		limit = s.defaultLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}
	out, err := s.store.ListNotifications(ctx, sess.Email, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Notification{}
	}
	return out, nil
}

func (s *NotificationService) Get(ctx context.Context, sess *model.Session, id string) (*model.Notification, error) {
	return s.store.GetNotification(ctx, sess.Email, id)
}

// SendMessage delivers a direct message to another registered user.
func (s *NotificationService) SendMessage(ctx context.Context, sess *model.Session, req dto.MessageRequest) (*model.Notification, error) {
	message := cleanText(req.Message)
	if message == "" {
		return nil, model.Invalid("message", "message is required")
	}
	to, err := s.store.GetUser(ctx, req.To)
	if err != nil {
		return nil, err
	}

	n := messageNotification(to.Email, message, sess, s.now())
	var w store.WriteSet
	w.Notify(n)
	if err := s.store.Commit(ctx, &w); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	s.log.Info("message sent", zap.String("from", sess.Email), zap.String("to", to.Email))
	return &n, nil
}
