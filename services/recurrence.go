package services

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"volunteerhub/model"
)

const (
	maxOccurrences   = 52
	recurrenceWindow = 365 * 24 * time.Hour
)

// expandRecurrence returns the start times of a series described by an RRULE, the
// first one being start itself. Open ended rules are cut after one year or
// maxOccurrences, whichever comes first.
func expandRecurrence(rule string, start time.Time) ([]time.Time, error) {
	start = start.Truncate(time.Second)
	rule = strings.TrimSpace(rule)
	rule = strings.TrimPrefix(strings.TrimPrefix(rule, "RRULE:"), "rrule:")
	if rule == "" {
		return []time.Time{start}, nil
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, model.Invalid("recurrence", "invalid recurrence rule: "+err.Error())
	}
	opt.Dtstart = start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, model.Invalid("recurrence", "invalid recurrence rule: "+err.Error())
	}

	occurrences := r.Between(start, start.Add(recurrenceWindow), true)
	if len(occurrences) == 0 {
		return nil, model.Invalid("recurrence", "recurrence rule produces no occurrences")
	}
	if len(occurrences) > maxOccurrences {
		occurrences = occurrences[:maxOccurrences]
	}
	return occurrences, nil
}
