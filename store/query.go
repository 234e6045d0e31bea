package store

import "volunteerhub/model"

// Matches applies the query to one event. The in-memory driver filters with it and
// the remote drivers use it to post-filter what their indexes cannot express.
func (q EventQuery) Matches(ev *model.Event) bool {
	if !q.From.IsZero() && ev.StartTime.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !ev.StartTime.Before(q.To) {
		return false
	}
	if q.Status != "" && ev.Status != q.Status {
		return false
	}
	if q.CreatedBy != "" && ev.CreatedBy.Email != model.NormalizeEmail(q.CreatedBy) {
		return false
	}
	if q.Participant != "" && !ev.HasParticipant(q.Participant) {
		return false
	}
	if q.RequestedBy != "" && ev.RequestedBy != model.NormalizeEmail(q.RequestedBy) {
		return false
	}
	return true
}
