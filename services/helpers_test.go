package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testForms(t *testing.T) *FormCatalog {
	t.Helper()
	forms, err := LoadForms("")
	require.NoError(t, err)
	return forms
}

// seedUser stores a user with role and returns a verified session for it.
func seedUser(t *testing.T, st store.UserStore, email string, role model.Role) *model.Session {
	t.Helper()
	u := &model.User{Email: email, FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, st.CreateUser(context.Background(), u))
	stored, err := st.GetUser(context.Background(), email)
	require.NoError(t, err)
	return &model.Session{UID: "uid-" + email, Email: stored.Email, EmailVerified: true, User: stored}
}

type fixture struct {
	store  *store.MemoryStore
	forms  *FormCatalog
	events *EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	forms := testForms(t)
	return &fixture{store: st, forms: forms, events: NewEventService(st, forms, zap.NewNop())}
}

func eventRequest(max int) dto.CreateEventRequest {
	return dto.CreateEventRequest{
		Title:           "Park cleanup",
		Description:     "Bring gloves",
		Location:        "Riverside Park",
		StartTime:       testStart,
		EndTime:         testStart.Add(3 * time.Hour),
		MaxParticipants: max,
	}
}

func (f *fixture) createEvent(t *testing.T, sess *model.Session, max int) model.Event {
	t.Helper()
	events, err := f.events.Create(context.Background(), sess, eventRequest(max))
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func (f *fixture) inbox(t *testing.T, email string) []model.Notification {
	t.Helper()
	list, err := f.store.ListNotifications(context.Background(), email, 0)
	require.NoError(t, err)
	return list
}

func ofType(list []model.Notification, typ model.NotificationType) []model.Notification {
	var out []model.Notification
	for _, n := range list {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
