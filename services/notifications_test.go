package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

func TestListNotificationsLimits(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewNotificationService(st, 0, zap.NewNop())
	sess := seedUser(t, st, "a@x.com", model.RoleVolunteer)

	empty, err := svc.List(ctx, sess, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var w store.WriteSet
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		w.Notify(model.NewNotification("a@x.com", model.NotificationMessage, "hi", nil, base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, st.Commit(ctx, &w))

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultNotificationLimit},
		{-3, DefaultNotificationLimit},
		{5, 5},
		{500, MaxNotificationLimit},
	}
	for _, tt := range tests {
		list, err := svc.List(ctx, sess, tt.limit)
		require.NoError(t, err)
		assert.Len(t, list, tt.want, "limit %d", tt.limit)
	}

	list, _ := svc.List(ctx, sess, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	got, err := svc.Get(ctx, sess, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, got.ID)

	other := seedUser(t, st, "b@x.com", model.RoleVolunteer)
	_, err = svc.Get(ctx, other, list[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewNotificationService(st, 10, zap.NewNop())
	from := seedUser(t, st, "coord@x.com", model.RoleCoordinator)
	seedUser(t, st, "vol@x.com", model.RoleVolunteer)

	n, err := svc.SendMessage(ctx, from, dto.MessageRequest{To: "VOL@x.com", Message: "See you <b>Saturday</b>"})
	require.NoError(t, err)
	assert.Equal(t, "vol@x.com", n.Recipient)
	assert.Equal(t, "See you Saturday", n.Message)
	assert.Equal(t, model.NotificationUnread, n.Status)
	assert.Equal(t, "coord@x.com", n.Payload.FromEmail)

	inbox, _ := st.ListNotifications(ctx, "vol@x.com", 0)
	assert.Len(t, inbox, 1)

	_, err = svc.SendMessage(ctx, from, dto.MessageRequest{To: "ghost@x.com", Message: "hello"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.SendMessage(ctx, from, dto.MessageRequest{To: "vol@x.com", Message: "<br>"})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}
