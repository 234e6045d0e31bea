package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteerhub/model"
)

func TestExpandRecurrence(t *testing.T) {
	start := time.Date(2026, 4, 6, 17, 30, 0, 0, time.UTC)

	single, err := expandRecurrence("", start)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{start}, single)

	weekly, err := expandRecurrence("FREQ=WEEKLY;COUNT=4", start)
	require.NoError(t, err)
	require.Len(t, weekly, 4)
	assert.True(t, weekly[0].Equal(start))
	assert.True(t, weekly[3].Equal(start.AddDate(0, 0, 21)))

	open, err := expandRecurrence("RRULE:FREQ=DAILY", start)
	require.NoError(t, err)
	assert.Len(t, open, maxOccurrences)

	monthly, err := expandRecurrence("FREQ=MONTHLY", start)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(monthly), 13)
	for _, occ := range monthly {
		assert.False(t, occ.After(start.Add(recurrenceWindow)))
	}

	_, err = expandRecurrence("FREQ=NEVER", start)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "recurrence", verr.Field)
}
