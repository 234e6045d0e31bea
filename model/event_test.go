package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(max int, participants ...string) Event {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return Event{
		ID:                  "ev-1",
		Title:               "Beach cleanup",
		Location:            "North beach",
		StartTime:           start,
		EndTime:             start.Add(3 * time.Hour),
		Status:              StatusUpcoming,
		CreatedBy:           Creator{Email: "coord@x.com", Name: "Coord"},
		MaxParticipants:     max,
		CurrentParticipants: len(participants),
		ParticipantList:     participants,
		CanSignUp:           true,
	}
}

func TestAddParticipant_FillsToCapacity(t *testing.T) {
	ev := newEvent(2, "a@x.com")

	require.NoError(t, ev.AddParticipant("b@x.com"))
	assert.Equal(t, 2, ev.CurrentParticipants)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, ev.ParticipantList)

	err := ev.AddParticipant("c@x.com")
	assert.Equal(t, ErrEventFull, err)
	assert.Equal(t, "event is full", err.Error())
	assert.Equal(t, 2, ev.CurrentParticipants)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, ev.ParticipantList)
}

func TestAddParticipant_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		event func() Event
		email string
		want  error
	}{
		{
			name: "signup flag off",
			event: func() Event {
				ev := newEvent(5)
				ev.CanSignUp = false
				return ev
			},
			email: "a@x.com",
			want:  ErrSignupClosed,
		},
		{
			name: "terminal status",
			event: func() Event {
				ev := newEvent(5)
				ev.Status = StatusCancelled
				return ev
			},
			email: "a@x.com",
			want:  ErrSignupClosed,
		},
		{
			name:  "full",
			event: func() Event { return newEvent(1, "a@x.com") },
			email: "b@x.com",
			want:  ErrEventFull,
		},
		{
			name:  "duplicate with different case",
			event: func() Event { return newEvent(5, "a@x.com") },
			email: "A@X.com",
			want:  ErrAlreadySignedUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.event()
			before := ev.Clone()

			err := ev.AddParticipant(tt.email)

			assert.Equal(t, tt.want, err)
			assert.Equal(t, before, ev)
		})
	}
}

func TestRemoveParticipant(t *testing.T) {
	ev := newEvent(3, "a@x.com", "b@x.com", "c@x.com")

	require.NoError(t, ev.RemoveParticipant("b@x.com"))
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, ev.ParticipantList)
	assert.Equal(t, 2, ev.CurrentParticipants)

	assert.Equal(t, ErrNotParticipant, ev.RemoveParticipant("b@x.com"))
	assert.Equal(t, 2, ev.CurrentParticipants)
}

func TestRemoveParticipant_ClosedEvent(t *testing.T) {
	ev := newEvent(3, "a@x.com")
	ev.Status = StatusCompleted

	assert.Equal(t, ErrEventClosed, ev.RemoveParticipant("a@x.com"))
	assert.Equal(t, 1, ev.CurrentParticipants)
}

func TestParticipantCountMatchesListAfterSequence(t *testing.T) {
	ev := newEvent(3)
	ops := []struct {
		add   bool
		email string
	}{
		{true, "a@x.com"}, {true, "b@x.com"}, {true, "a@x.com"}, {false, "c@x.com"},
		{true, "c@x.com"}, {true, "d@x.com"}, {false, "a@x.com"}, {true, "d@x.com"},
		{false, "b@x.com"}, {false, "b@x.com"},
	}

	for _, op := range ops {
		if op.add {
			_ = ev.AddParticipant(op.email)
		} else {
			_ = ev.RemoveParticipant(op.email)
		}
		require.Equal(t, len(ev.ParticipantList), ev.CurrentParticipants)
		require.LessOrEqual(t, ev.CurrentParticipants, ev.MaxParticipants)
	}
	assert.ElementsMatch(t, []string{"c@x.com", "d@x.com"}, ev.ParticipantList)
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to EventStatus
		ok       bool
	}{
		{StatusUpcoming, StatusOngoing, true},
		{StatusUpcoming, StatusCancelled, true},
		{StatusUpcoming, StatusCompleted, false},
		{StatusOngoing, StatusCompleted, true},
		{StatusOngoing, StatusCancelled, true},
		{StatusOngoing, StatusUpcoming, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusOngoing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			ev := newEvent(2)
			ev.Status = tt.from

			err := ev.Transition(tt.to)

			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, ev.Status)
				assert.Equal(t, !tt.to.Terminal(), ev.CanSignUp)
			} else {
				assert.Equal(t, ErrInvalidTransition, err)
				assert.Equal(t, tt.from, ev.Status)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ev := newEvent(2)
	require.NoError(t, ev.Validate())

	ev.EndTime = ev.StartTime
	var verr *ValidationError
	require.ErrorAs(t, ev.Validate(), &verr)
	assert.Equal(t, "endTime", verr.Field)

	ev = newEvent(0)
	require.ErrorAs(t, ev.Validate(), &verr)
	assert.Equal(t, "maxParticipants", verr.Field)

	ev = newEvent(2, "a@x.com")
	ev.CurrentParticipants = 2
	require.ErrorAs(t, ev.Validate(), &verr)
	assert.Equal(t, "currentParticipants", verr.Field)
}

func TestSetCapacity(t *testing.T) {
	ev := newEvent(3, "a@x.com", "b@x.com")

	assert.Equal(t, ErrCapacityBelowCount, ev.SetCapacity(1))
	require.NoError(t, ev.SetCapacity(2))
	assert.True(t, ev.IsFull())
	assert.False(t, ev.SignupOpen())
}
