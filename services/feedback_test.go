package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

// completedEvent runs an event with the given volunteers through to completion.
func (f *fixture) completedEvent(t *testing.T, coord *model.Session, volunteers ...*model.Session) model.Event {
	t.Helper()
	ctx := context.Background()
	ev := f.createEvent(t, coord, 10)
	for _, v := range volunteers {
		_, err := f.events.SignUp(ctx, v, ev.ID)
		require.NoError(t, err)
	}
	_, err := f.events.Start(ctx, coord, ev.ID)
	require.NoError(t, err)
	done, err := f.events.Complete(ctx, coord, ev.ID)
	require.NoError(t, err)
	return *done
}

func (f *fixture) pending(t *testing.T, email string, typ model.NotificationType) model.Notification {
	t.Helper()
	list := ofType(f.inbox(t, email), typ)
	require.Len(t, list, 1)
	return list[0]
}

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFeedbackService(f.store, f.forms, zap.NewNop())
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	vol := seedUser(t, f.store, "vol@x.com", model.RoleVolunteer)
	ev := f.completedEvent(t, coord, vol)
	req := f.pending(t, "vol@x.com", model.NotificationFeedbackRequestVolunteer)

	fb, err := svc.Submit(ctx, vol, dto.ResponseSubmission{
		NotificationID: req.ID,
		Responses: map[string]interface{}{
			"experience":   float64(5),
			"organization": float64(4),
			"again":        true,
			"comments":     "More <b>water</b> please",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ev.ID, fb.EventID)
	assert.Equal(t, model.FeedbackVolunteer, fb.Role)
	assert.Equal(t, int64(5), fb.Responses["experience"])
	assert.Equal(t, "More water please", fb.Responses["comments"])

	_, err = f.store.GetNotification(ctx, "vol@x.com", req.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	submitted := f.pending(t, "coord@x.com", model.NotificationFeedbackSubmitted)
	assert.Equal(t, "vol@x.com", submitted.Payload.FromEmail)
	assert.Equal(t, model.NotificationUnread, submitted.Status)

	_, err = svc.Submit(ctx, vol, dto.ResponseSubmission{NotificationID: req.ID, Responses: fb.Responses})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitFeedbackRejectsBadResponses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFeedbackService(f.store, f.forms, zap.NewNop())
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	vol := seedUser(t, f.store, "vol@x.com", model.RoleVolunteer)
	f.completedEvent(t, coord, vol)
	req := f.pending(t, "vol@x.com", model.NotificationFeedbackRequestVolunteer)

	cases := map[string]map[string]interface{}{
		"missing answer":   {"experience": 5},
		"rating too high":  {"experience": 6, "organization": 4, "again": true, "comments": "ok"},
		"unknown question": {"experience": 5, "organization": 4, "again": true, "comments": "ok", "extra": 1},
		"wrong type":       {"experience": 5, "organization": 4, "again": "yes", "comments": "ok"},
	}
	for name, responses := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(ctx, vol, dto.ResponseSubmission{NotificationID: req.ID, Responses: responses})
			var verr *model.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}

	_, err := f.store.GetNotification(ctx, "vol@x.com", req.ID)
	assert.NoError(t, err)

	verify := f.pending(t, "coord@x.com", model.NotificationServiceVerification)
	_, err = svc.Submit(ctx, coord, dto.ResponseSubmission{NotificationID: verify.ID, Responses: map[string]interface{}{"vol@x.com": true}})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestMemberFeedbackAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFeedbackService(f.store, f.forms, zap.NewNop())
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	other := seedUser(t, f.store, "other@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	b := seedUser(t, f.store, "b@x.com", model.RoleVolunteer)
	member := seedUser(t, f.store, "member@x.com", model.RoleCommunity)

	ev := f.createEvent(t, coord, 10)
	_, err := f.store.UpdateEvent(ctx, ev.ID, func(ev *model.Event, _ *store.WriteSet) error {
		ev.RequestedBy = "member@x.com"
		return nil
	})
	require.NoError(t, err)
	for _, v := range []*model.Session{a, b} {
		_, err := f.events.SignUp(ctx, v, ev.ID)
		require.NoError(t, err)
	}
	_, err = f.events.Start(ctx, coord, ev.ID)
	require.NoError(t, err)
	_, err = f.events.Complete(ctx, coord, ev.ID)
	require.NoError(t, err)

	answers := map[*model.Session]map[string]interface{}{
		a: {"experience": 5, "organization": 3, "again": true, "comments": "fun"},
		b: {"experience": 4, "organization": 5, "again": false, "comments": "cold"},
	}
	for sess, responses := range answers {
		n := f.pending(t, sess.Email, model.NotificationFeedbackRequestVolunteer)
		_, err := svc.Submit(ctx, sess, dto.ResponseSubmission{NotificationID: n.ID, Responses: responses})
		require.NoError(t, err)
	}
	n := f.pending(t, "member@x.com", model.NotificationFeedbackRequestMember)
	fb, err := svc.Submit(ctx, member, dto.ResponseSubmission{
		NotificationID: n.ID,
		Responses:      map[string]interface{}{"satisfaction": 4, "needs_met": true, "comments": "thanks"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackMember, fb.Role)

	summary, err := svc.ForEvent(ctx, coord, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, summary.Volunteer, 4)
	assert.Equal(t, "experience", summary.Volunteer[0].ID)
	assert.Equal(t, 2, summary.Volunteer[0].Answers)
	assert.InDelta(t, 4.5, summary.Volunteer[0].Average, 0.001)
	assert.Equal(t, 1, summary.Volunteer[2].Yes)
	assert.Equal(t, 1, summary.Volunteer[2].No)
	assert.Equal(t, 1, summary.Member[1].Yes)

	_, err = svc.ForEvent(ctx, other, ev.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	overview, err := svc.Overview(ctx, coord)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, ev.ID, overview[0].EventID)

	_, err = svc.Overview(ctx, a)
	assert.ErrorIs(t, err, ErrForbidden)
}
