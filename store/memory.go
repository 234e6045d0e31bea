package store

import (
	"context"
	"sort"
	"sync"

	"volunteerhub/model"
)

// MemoryStore keeps every collection in process memory. It backs STORE_DRIVER=memory
// and the tests; one mutex serializes all access so each call is atomic.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[string]model.User
	events        map[string]model.Event
	notifications map[string]map[string]model.Notification
	feedback      map[string]model.Feedback
	verifications map[string]model.ServiceVerification
	helpRequests  map[string]model.HelpRequest
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		events:        make(map[string]model.Event),
		notifications: make(map[string]map[string]model.Notification),
		feedback:      make(map[string]model.Feedback),
		verifications: make(map[string]model.ServiceVerification),
		helpRequests:  make(map[string]model.HelpRequest),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.NormalizeEmail(u.Email)
	if _, ok := s.users[key]; ok {
		return ErrAlreadyExists
	}
	u.Email = key
	s.users[key] = u.Clone()
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[model.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u = u.Clone()
	return &u, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, email string, fn func(u *model.User) error) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.NormalizeEmail(email)
	current, ok := s.users[key]
	if !ok {
		return nil, ErrNotFound
	}
	u := current.Clone()
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.Email = key
	s.users[key] = u.Clone()
	return &u, nil
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *MemoryStore) GetEvent(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	ev = ev.Clone()
	return &ev, nil
}

func (s *MemoryStore) ListEvents(_ context.Context, q EventQuery) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Event
	for _, ev := range s.events {
		if q.Matches(&ev) {
			out = append(out, ev.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateEvent(_ context.Context, id string, fn EventMutation) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	ev := current.Clone()
	var w WriteSet
	if err := fn(&ev, &w); err != nil {
		return nil, err
	}
	if err := s.checkLocked(&w); err != nil {
		return nil, err
	}
	s.events[id] = ev.Clone()
	s.applyLocked(&w)
	return &ev, nil
}

func (s *MemoryStore) GetNotification(_ context.Context, recipient, id string) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[model.NormalizeEmail(recipient)][id]
	if !ok {
		return nil, ErrNotFound
	}
	n = n.Clone()
	return &n, nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, recipient string, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.notifications[model.NormalizeEmail(recipient)]
	out := make([]model.Notification, 0, len(inbox))
	for _, n := range inbox {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListFeedback(_ context.Context, eventID string) ([]model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Feedback
	for _, fb := range s.feedback {
		if fb.EventID == eventID {
			out = append(out, fb.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) ListVerifications(_ context.Context, eventID string) ([]model.ServiceVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ServiceVerification
	for _, v := range s.verifications {
		if v.EventID == eventID {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VerifiedAt.Before(out[j].VerifiedAt) })
	return out, nil
}

func (s *MemoryStore) GetHelpRequest(_ context.Context, id string) (*model.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.helpRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	h = h.Clone()
	return &h, nil
}

func (s *MemoryStore) ListHelpRequests(_ context.Context, requester string, status model.HelpRequestStatus) ([]model.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requester = model.NormalizeEmail(requester)
	var out []model.HelpRequest
	for _, h := range s.helpRequests {
		if requester != "" && h.Requester != requester {
			continue
		}
		if status != "" && h.Status != status {
			continue
		}
		out = append(out, h.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateHelpRequest(_ context.Context, id string, fn HelpRequestMutation) (*model.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.helpRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	h := current.Clone()
	var w WriteSet
	if err := fn(&h, &w); err != nil {
		return nil, err
	}
	if err := s.checkLocked(&w); err != nil {
		return nil, err
	}
	s.helpRequests[id] = h.Clone()
	s.applyLocked(&w)
	return &h, nil
}

func (s *MemoryStore) Commit(_ context.Context, w *WriteSet) error {
	if w.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(w); err != nil {
		return err
	}
	s.applyLocked(w)
	return nil
}

// checkLocked verifies the preconditions of w so that applyLocked cannot fail halfway.
func (s *MemoryStore) checkLocked(w *WriteSet) error {
	for _, key := range w.Consumed {
		if _, ok := s.notifications[key.Recipient][key.ID]; !ok {
			return ErrNotFound
		}
	}
	for _, ev := range w.Events {
		if _, ok := s.events[ev.ID]; ok {
			return ErrAlreadyExists
		}
	}
	for _, link := range w.Links {
		if _, ok := s.users[link.Email]; !ok {
			return ErrNotFound
		}
	}
	return nil
}

func (s *MemoryStore) applyLocked(w *WriteSet) {
	for _, ev := range w.Events {
		s.events[ev.ID] = ev.Clone()
	}
	for _, key := range w.Consumed {
		delete(s.notifications[key.Recipient], key.ID)
	}
	for _, n := range w.Notifications {
		inbox, ok := s.notifications[n.Recipient]
		if !ok {
			inbox = make(map[string]model.Notification)
			s.notifications[n.Recipient] = inbox
		}
		inbox[n.ID] = n.Clone()
	}
	for _, fb := range w.Feedback {
		s.feedback[fb.ID] = fb.Clone()
	}
	for _, v := range w.Verifications {
		s.verifications[v.ID] = v.Clone()
	}
	for _, h := range w.HelpRequests {
		s.helpRequests[h.ID] = h.Clone()
	}
	for _, link := range w.Links {
		u := s.users[link.Email].Clone()
		switch link.Field {
		case LinkSignedUp:
			u.SignedUpEvents = applyLink(u.SignedUpEvents, link)
		case LinkPosted:
			u.PostedEvents = applyLink(u.PostedEvents, link)
		}
		s.users[link.Email] = u
	}
}

// applyLink mirrors the array-union / array-remove semantics of the document stores.
func applyLink(ids []string, link UserLink) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, id := range ids {
		if id == link.EventID {
			found = true
			if link.Remove {
				continue
			}
		}
		out = append(out, id)
	}
	if !link.Remove && !found {
		out = append(out, link.EventID)
	}
	return out
}
