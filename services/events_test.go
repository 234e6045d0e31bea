package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)

	ev := f.createEvent(t, coord, 5)
	assert.Equal(t, model.StatusUpcoming, ev.Status)
	assert.True(t, ev.CanSignUp)
	assert.Equal(t, 0, ev.CurrentParticipants)
	assert.Equal(t, "coord@x.com", ev.CreatedBy.Email)
	assert.Empty(t, ev.SeriesID)

	u, err := f.store.GetUser(ctx, "coord@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{ev.ID}, u.PostedEvents)

	req := eventRequest(5)
	req.Title = "<b>Park</b> cleanup"
	req.CanSignUp = new(bool)
	events, err := f.events.Create(ctx, coord, req)
	require.NoError(t, err)
	assert.Equal(t, "Park cleanup", events[0].Title)
	assert.False(t, events[0].CanSignUp)
}

func TestCreateEventRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	vol := seedUser(t, f.store, "vol@x.com", model.RoleVolunteer)
	newcomer := seedUser(t, f.store, "new@x.com", "")

	_, err := f.events.Create(ctx, vol, eventRequest(5))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.Create(ctx, newcomer, eventRequest(5))
	assert.ErrorIs(t, err, ErrRoleRequired)

	req := eventRequest(5)
	req.EndTime = req.StartTime.Add(-time.Hour)
	_, err = f.events.Create(ctx, coord, req)
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))

	req = eventRequest(5)
	req.Recurrence = "FREQ=SOMETIMES"
	_, err = f.events.Create(ctx, coord, req)
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "recurrence", verr.Field)

	all, err := f.store.ListEvents(ctx, store.EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateEventSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)

	req := eventRequest(4)
	req.Recurrence = "RRULE:FREQ=WEEKLY;COUNT=3"
	events, err := f.events.Create(ctx, coord, req)
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i, ev := range events {
		assert.NotEmpty(t, ev.SeriesID)
		assert.Equal(t, events[0].SeriesID, ev.SeriesID)
		assert.True(t, testStart.AddDate(0, 0, 7*i).Equal(ev.StartTime), ev.StartTime)
		assert.Equal(t, 3*time.Hour, ev.EndTime.Sub(ev.StartTime))
	}

	u, _ := f.store.GetUser(ctx, "coord@x.com")
	assert.Len(t, u.PostedEvents, 3)
}

func TestCreateEventForHelpRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	seedUser(t, f.store, "member@x.com", model.RoleCommunity)

	h := model.HelpRequest{ID: "h1", Requester: "member@x.com", Subject: "Garden", Status: model.HelpPending}
	require.NoError(t, f.store.Commit(ctx, &store.WriteSet{HelpRequests: []model.HelpRequest{h}}))

	req := eventRequest(5)
	req.HelpRequestID = "h1"
	_, err := f.events.Create(ctx, coord, req)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = f.store.UpdateHelpRequest(ctx, "h1", func(h *model.HelpRequest, _ *store.WriteSet) error {
		return h.Resolve(true, "coord@x.com", time.Now())
	})
	require.NoError(t, err)

	events, err := f.events.Create(ctx, coord, req)
	require.NoError(t, err)
	assert.Equal(t, "member@x.com", events[0].RequestedBy)
	assert.Equal(t, "h1", events[0].HelpRequestID)

	notes := ofType(f.inbox(t, "member@x.com"), model.NotificationAnnouncement)
	require.Len(t, notes, 1)
	assert.Equal(t, events[0].ID, notes[0].EventID())
}

func TestSignUpCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	b := seedUser(t, f.store, "b@x.com", model.RoleVolunteer)
	c := seedUser(t, f.store, "c@x.com", model.RoleVolunteer)
	ev := f.createEvent(t, coord, 2)

	_, err := f.events.SignUp(ctx, a, ev.ID)
	require.NoError(t, err)
	_, err = f.events.SignUp(ctx, a, ev.ID)
	assert.ErrorIs(t, err, model.ErrAlreadySignedUp)

	updated, err := f.events.SignUp(ctx, b, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, updated.ParticipantList)
	assert.Equal(t, 2, updated.CurrentParticipants)
	assert.False(t, updated.SignupOpen())

	_, err = f.events.SignUp(ctx, c, ev.ID)
	assert.EqualError(t, err, "event is full")

	_, err = f.events.SignUp(ctx, coord, ev.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	u, _ := f.store.GetUser(ctx, "a@x.com")
	assert.Equal(t, []string{ev.ID}, u.SignedUpEvents)
	u, _ = f.store.GetUser(ctx, "c@x.com")
	assert.Empty(t, u.SignedUpEvents)
}

func TestSignUpClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	vol := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)

	req := eventRequest(5)
	closed := false
	req.CanSignUp = &closed
	events, err := f.events.Create(ctx, coord, req)
	require.NoError(t, err)

	_, err = f.events.SignUp(ctx, vol, events[0].ID)
	assert.ErrorIs(t, err, model.ErrSignupClosed)

	_, err = f.events.SignUp(ctx, vol, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConcurrentSignUpsNeverOverfill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	ev := f.createEvent(t, coord, 3)

	sessions := make([]*model.Session, 10)
	for i := range sessions {
		sessions[i] = seedUser(t, f.store, string(rune('a'+i))+"@x.com", model.RoleVolunteer)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess *model.Session) {
			defer wg.Done()
			if _, err := f.events.SignUp(ctx, sess, ev.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(sess)
	}
	wg.Wait()

	stored, err := f.store.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, stored.CurrentParticipants)
	assert.Len(t, stored.ParticipantList, 3)
}

func TestWithdrawAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	other := seedUser(t, f.store, "other@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	b := seedUser(t, f.store, "b@x.com", model.RoleVolunteer)
	ev := f.createEvent(t, coord, 5)

	_, err := f.events.SignUp(ctx, a, ev.ID)
	require.NoError(t, err)
	_, err = f.events.SignUp(ctx, b, ev.ID)
	require.NoError(t, err)

	updated, err := f.events.Withdraw(ctx, a, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, updated.ParticipantList)
	u, _ := f.store.GetUser(ctx, "a@x.com")
	assert.Empty(t, u.SignedUpEvents)

	_, err = f.events.Withdraw(ctx, a, ev.ID)
	assert.ErrorIs(t, err, model.ErrNotParticipant)

	_, err = f.events.RemoveParticipant(ctx, other, ev.ID, "b@x.com")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.events.RemoveParticipant(ctx, a, ev.ID, "b@x.com")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err = f.events.RemoveParticipant(ctx, coord, ev.ID, "B@x.com")
	require.NoError(t, err)
	assert.Empty(t, updated.ParticipantList)
	assert.Equal(t, 0, updated.CurrentParticipants)
	assert.Len(t, ofType(f.inbox(t, "b@x.com"), model.NotificationAnnouncement), 1)
}

func TestAddParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	other := seedUser(t, f.store, "other@x.com", model.RoleCoordinator)
	seedUser(t, f.store, "vol@x.com", model.RoleVolunteer)
	seedUser(t, f.store, "member@x.com", model.RoleCommunity)
	ev := f.createEvent(t, coord, 1)

	_, err := f.events.AddParticipant(ctx, coord, ev.ID, "member@x.com")
	assert.EqualError(t, err, "only volunteers can be added to events")
	_, err = f.events.AddParticipant(ctx, coord, ev.ID, "ghost@x.com")
	assert.ErrorIs(t, err, model.ErrOnlyVolunteers)
	_, err = f.events.AddParticipant(ctx, other, ev.ID, "vol@x.com")
	assert.ErrorIs(t, err, ErrForbidden)
	// A non-creator learns nothing about the target's role.
	_, err = f.events.AddParticipant(ctx, other, ev.ID, "member@x.com")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.events.AddParticipant(ctx, other, ev.ID, "ghost@x.com")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.events.AddParticipant(ctx, coord, "missing", "vol@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	updated, err := f.events.AddParticipant(ctx, coord, ev.ID, "vol@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"vol@x.com"}, updated.ParticipantList)
	assert.Len(t, ofType(f.inbox(t, "vol@x.com"), model.NotificationAnnouncement), 1)

	seedUser(t, f.store, "late@x.com", model.RoleVolunteer)
	_, err = f.events.AddParticipant(ctx, coord, ev.ID, "late@x.com")
	assert.ErrorIs(t, err, model.ErrEventFull)
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	other := seedUser(t, f.store, "other@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	b := seedUser(t, f.store, "b@x.com", model.RoleVolunteer)
	ev := f.createEvent(t, coord, 5)
	for _, s := range []*model.Session{a, b} {
		_, err := f.events.SignUp(ctx, s, ev.ID)
		require.NoError(t, err)
	}

	req := dto.UpdateEventRequest{
		Title:           "Park cleanup (moved)",
		Location:        "North gate",
		StartTime:       testStart.Add(24 * time.Hour),
		EndTime:         testStart.Add(26 * time.Hour),
		MaxParticipants: 1,
	}
	_, err := f.events.Update(ctx, coord, ev.ID, req)
	assert.ErrorIs(t, err, model.ErrCapacityBelowCount)

	_, err = f.events.Update(ctx, other, ev.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	req.MaxParticipants = 2
	updated, err := f.events.Update(ctx, coord, ev.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "North gate", updated.Location)
	assert.Equal(t, 2, updated.MaxParticipants)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, updated.ParticipantList)
}

func TestCompleteEventFansOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	b := seedUser(t, f.store, "b@x.com", model.RoleVolunteer)
	seedUser(t, f.store, "member@x.com", model.RoleCommunity)
	ev := f.createEvent(t, coord, 5)
	_, err := f.store.UpdateEvent(ctx, ev.ID, func(ev *model.Event, _ *store.WriteSet) error {
		ev.RequestedBy = "member@x.com"
		return nil
	})
	require.NoError(t, err)
	for _, s := range []*model.Session{a, b} {
		_, err := f.events.SignUp(ctx, s, ev.ID)
		require.NoError(t, err)
	}

	_, err = f.events.Complete(ctx, coord, ev.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.events.Start(ctx, coord, ev.ID)
	require.NoError(t, err)
	done, err := f.events.Complete(ctx, coord, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.False(t, done.CanSignUp)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		reqs := ofType(f.inbox(t, email), model.NotificationFeedbackRequestVolunteer)
		require.Len(t, reqs, 1, email)
		assert.Equal(t, model.NotificationPending, reqs[0].Status)
		assert.Equal(t, f.forms.Volunteer, reqs[0].Payload.Form)
	}
	member := ofType(f.inbox(t, "member@x.com"), model.NotificationFeedbackRequestMember)
	require.Len(t, member, 1)
	assert.Equal(t, f.forms.Member, member[0].Payload.Form)

	verify := ofType(f.inbox(t, "coord@x.com"), model.NotificationServiceVerification)
	require.Len(t, verify, 1)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, verify[0].Payload.Participants)
	require.Len(t, verify[0].Payload.Form, 2)
	assert.Equal(t, "a@x.com", verify[0].Payload.Form[0].ID)
	assert.Equal(t, model.QuestionBoolean, verify[0].Payload.Form[0].Type)

	_, err = f.events.Complete(ctx, coord, ev.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	c := seedUser(t, f.store, "c@x.com", model.RoleVolunteer)
	_, err = f.events.SignUp(ctx, c, ev.ID)
	assert.ErrorIs(t, err, model.ErrSignupClosed)
	_, err = f.events.Withdraw(ctx, a, ev.ID)
	assert.ErrorIs(t, err, model.ErrEventClosed)
}

func TestCompleteEventWithoutParticipants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	ev := f.createEvent(t, coord, 5)

	_, err := f.events.Start(ctx, coord, ev.ID)
	require.NoError(t, err)
	_, err = f.events.Complete(ctx, coord, ev.ID)
	require.NoError(t, err)

	verify := ofType(f.inbox(t, "coord@x.com"), model.NotificationServiceVerification)
	require.Len(t, verify, 1)
	assert.Empty(t, verify[0].Payload.Form)
}

func TestCancelRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	ev := f.createEvent(t, coord, 5)
	_, err := f.events.SignUp(ctx, a, ev.ID)
	require.NoError(t, err)

	_, err = f.events.Cancel(ctx, coord, ev.ID, false)
	var confirm *ConfirmationRequiredError
	require.True(t, errors.As(err, &confirm))
	assert.Equal(t, 1, confirm.Participants)
	stored, _ := f.store.GetEvent(ctx, ev.ID)
	assert.Equal(t, model.StatusUpcoming, stored.Status)
	assert.Empty(t, f.inbox(t, "a@x.com"))

	cancelled, err := f.events.Cancel(ctx, coord, ev.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.False(t, cancelled.CanSignUp)
	assert.Len(t, ofType(f.inbox(t, "a@x.com"), model.NotificationAnnouncement), 1)

	_, err = f.events.Cancel(ctx, coord, ev.ID, false)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.events.Start(ctx, coord, ev.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestAnnounce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	ev := f.createEvent(t, coord, 5)
	_, err := f.events.SignUp(ctx, a, ev.ID)
	require.NoError(t, err)

	n, err := f.events.Announce(ctx, coord, ev.ID, "Meet at the <i>north</i> gate")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	notes := f.inbox(t, "a@x.com")
	require.Len(t, notes, 1)
	assert.Equal(t, "Meet at the north gate", notes[0].Message)
	assert.Equal(t, model.NotificationUnread, notes[0].Status)

	_, err = f.events.Announce(ctx, a, ev.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.events.Announce(ctx, coord, ev.ID, "  ")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCalendarAndTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	coord := seedUser(t, f.store, "coord@x.com", model.RoleCoordinator)
	a := seedUser(t, f.store, "a@x.com", model.RoleVolunteer)
	newcomer := seedUser(t, f.store, "new@x.com", "")

	req := eventRequest(5)
	req.Recurrence = "FREQ=DAILY;COUNT=3"
	events, err := f.events.Create(ctx, coord, req)
	require.NoError(t, err)
	_, err = f.events.SignUp(ctx, a, events[1].ID)
	require.NoError(t, err)

	window, err := f.events.Calendar(ctx, a, dto.CalendarQuery{From: testStart, To: testStart.Add(48 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	mine, err := f.events.Calendar(ctx, a, dto.CalendarQuery{Mine: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, events[1].ID, mine[0].ID)

	_, err = f.events.Calendar(ctx, a, dto.CalendarQuery{From: testStart, To: testStart})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.events.Cancel(ctx, coord, events[0].ID, true)
	require.NoError(t, err)
	tasks, err := f.events.Tasks(ctx, coord)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = f.events.Tasks(ctx, newcomer)
	assert.ErrorIs(t, err, ErrRoleRequired)
}
