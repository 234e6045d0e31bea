package store

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"volunteerhub/model"
)

// FirestoreStore is the default driver. Users are keyed by email and own a
// notifications sub-collection; events, feedback, verifications and help requests
// are top-level collections keyed by generated ids.
type FirestoreStore struct {
	client *firestore.Client
}

var _ Store = (*FirestoreStore)(nil)

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) users() *firestore.CollectionRef {
	return s.client.Collection(CollectionUsers)
}

func (s *FirestoreStore) inbox(email string) *firestore.CollectionRef {
	return s.users().Doc(model.NormalizeEmail(email)).Collection(CollectionNotifications)
}

func (s *FirestoreStore) events() *firestore.CollectionRef {
	return s.client.Collection(CollectionEvents)
}

func (s *FirestoreStore) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	if _, err := s.users().Doc(u.Email).Create(ctx, u); err != nil {
		return mapFirestoreErr(err)
	}
	return nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, email string) (*model.User, error) {
	snap, err := s.users().Doc(model.NormalizeEmail(email)).Get(ctx)
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (s *FirestoreStore) UpdateUser(ctx context.Context, email string, fn func(u *model.User) error) (*model.User, error) {
	ref := s.users().Doc(model.NormalizeEmail(email))
	var out model.User
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr(err)
		}
		var u model.User
		if err := snap.DataTo(&u); err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		if err := fn(&u); err != nil {
			return err
		}
		u.Email = ref.ID
		out = u
		return tx.Set(ref, u)
	})
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	return &out, nil
}

func (s *FirestoreStore) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return collect[model.User](s.users().Where("role", "==", string(role)).Documents(ctx))
}

func (s *FirestoreStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	snap, err := s.events().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	var ev model.Event
	if err := snap.DataTo(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// ListEvents filters on equality fields in Firestore and orders by start time. The
// combinations used by the API need composite indexes on (field, startTime).
func (s *FirestoreStore) ListEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	query := s.events().Query
	if q.Status != "" {
		query = query.Where("status", "==", string(q.Status))
	}
	if q.CreatedBy != "" {
		query = query.Where("createdBy.email", "==", model.NormalizeEmail(q.CreatedBy))
	}
	if q.Participant != "" {
		query = query.Where("participantList", "array-contains", model.NormalizeEmail(q.Participant))
	}
	if q.RequestedBy != "" {
		query = query.Where("requestedBy", "==", model.NormalizeEmail(q.RequestedBy))
	}
	if !q.From.IsZero() {
		query = query.Where("startTime", ">=", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("startTime", "<", q.To)
	}
	query = query.OrderBy("startTime", firestore.Asc)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return collect[model.Event](query.Documents(ctx))
}

func (s *FirestoreStore) UpdateEvent(ctx context.Context, id string, fn EventMutation) (*model.Event, error) {
	ref := s.events().Doc(id)
	var out model.Event
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr(err)
		}
		var ev model.Event
		if err := snap.DataTo(&ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		var w WriteSet
		if err := fn(&ev, &w); err != nil {
			return err
		}
		if err := tx.Set(ref, ev); err != nil {
			return err
		}
		if err := s.apply(tx, &w); err != nil {
			return err
		}
		out = ev
		return nil
	})
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	return &out, nil
}

func (s *FirestoreStore) GetNotification(ctx context.Context, recipient, id string) (*model.Notification, error) {
	snap, err := s.inbox(recipient).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	var n model.Notification
	if err := snap.DataTo(&n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}

func (s *FirestoreStore) ListNotifications(ctx context.Context, recipient string, limit int) ([]model.Notification, error) {
	query := s.inbox(recipient).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return collect[model.Notification](query.Documents(ctx))
}

func (s *FirestoreStore) ListFeedback(ctx context.Context, eventID string) ([]model.Feedback, error) {
	out, err := collect[model.Feedback](s.client.Collection(CollectionFeedback).Where("eventId", "==", eventID).Documents(ctx))
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *FirestoreStore) ListVerifications(ctx context.Context, eventID string) ([]model.ServiceVerification, error) {
	out, err := collect[model.ServiceVerification](s.client.Collection(CollectionVerifications).Where("eventId", "==", eventID).Documents(ctx))
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VerifiedAt.Before(out[j].VerifiedAt) })
	return out, nil
}

func (s *FirestoreStore) GetHelpRequest(ctx context.Context, id string) (*model.HelpRequest, error) {
	snap, err := s.client.Collection(CollectionHelpRequests).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	var h model.HelpRequest
	if err := snap.DataTo(&h); err != nil {
		return nil, fmt.Errorf("decode help request: %w", err)
	}
	return &h, nil
}

func (s *FirestoreStore) ListHelpRequests(ctx context.Context, requester string, status model.HelpRequestStatus) ([]model.HelpRequest, error) {
	query := s.client.Collection(CollectionHelpRequests).Query
	if requester != "" {
		query = query.Where("requester", "==", model.NormalizeEmail(requester))
	}
	if status != "" {
		query = query.Where("status", "==", string(status))
	}
	out, err := collect[model.HelpRequest](query.Documents(ctx))
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FirestoreStore) UpdateHelpRequest(ctx context.Context, id string, fn HelpRequestMutation) (*model.HelpRequest, error) {
	ref := s.client.Collection(CollectionHelpRequests).Doc(id)
	var out model.HelpRequest
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr(err)
		}
		var h model.HelpRequest
		if err := snap.DataTo(&h); err != nil {
			return fmt.Errorf("decode help request: %w", err)
		}
		var w WriteSet
		if err := fn(&h, &w); err != nil {
			return err
		}
		if err := tx.Set(ref, h); err != nil {
			return err
		}
		if err := s.apply(tx, &w); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, mapFirestoreErr(err)
	}
	return &out, nil
}

func (s *FirestoreStore) Commit(ctx context.Context, w *WriteSet) error {
	if w.Empty() {
		return nil
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return s.apply(tx, w)
	})
	return mapFirestoreErr(err)
}

// apply queues every write of w on tx. Consumed notifications are deleted with an
// exists precondition so a notification can only be acted on once. Links update
// existing user documents only; a missing user fails the commit with NotFound.
func (s *FirestoreStore) apply(tx *firestore.Transaction, w *WriteSet) error {
	for _, ev := range w.Events {
		if err := tx.Create(s.events().Doc(ev.ID), ev); err != nil {
			return err
		}
	}
	for _, key := range w.Consumed {
		if err := tx.Delete(s.inbox(key.Recipient).Doc(key.ID), firestore.Exists); err != nil {
			return err
		}
	}
	for _, n := range w.Notifications {
		if err := tx.Create(s.inbox(n.Recipient).Doc(n.ID), n); err != nil {
			return err
		}
	}
	for _, fb := range w.Feedback {
		if err := tx.Create(s.client.Collection(CollectionFeedback).Doc(fb.ID), fb); err != nil {
			return err
		}
	}
	for _, v := range w.Verifications {
		if err := tx.Create(s.client.Collection(CollectionVerifications).Doc(v.ID), v); err != nil {
			return err
		}
	}
	for _, h := range w.HelpRequests {
		if err := tx.Create(s.client.Collection(CollectionHelpRequests).Doc(h.ID), h); err != nil {
			return err
		}
	}
	for _, link := range w.Links {
		var value interface{} = firestore.ArrayUnion(link.EventID)
		if link.Remove {
			value = firestore.ArrayRemove(link.EventID)
		}
		update := []firestore.Update{{Path: string(link.Field), Value: value}}
		if err := tx.Update(s.users().Doc(link.Email), update); err != nil {
			return err
		}
	}
	return nil
}

func collect[T any](iter *firestore.DocumentIterator) ([]T, error) {
	defer iter.Stop()

	var out []T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func mapFirestoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	default:
		return err
	}
}
