package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"volunteerhub/model"
)

// MongoStore backs STORE_DRIVER=mongo. Notifications live in one collection keyed by
// id with a recipient field. Multi-document writes run in a session transaction, so
// the server must be a replica set.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the secondary indexes used by the list queries.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		CollectionNotifications: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionEvents: {
			{Keys: bson.D{{Key: "startTime", Value: 1}}},
			{Keys: bson.D{{Key: "participantList", Value: 1}, {Key: "startTime", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy.email", Value: 1}, {Key: "startTime", Value: 1}}},
		},
		CollectionFeedback: {
			{Keys: bson.D{{Key: "eventId", Value: 1}}},
		},
		CollectionVerifications: {
			{Keys: bson.D{{Key: "eventId", Value: 1}}},
		},
		CollectionHelpRequests: {
			{Keys: bson.D{{Key: "requester", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	if _, err := s.db.Collection(CollectionUsers).InsertOne(ctx, u); err != nil {
		return mapMongoErr(err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": model.NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, email string, fn func(u *model.User) error) (*model.User, error) {
	key := model.NormalizeEmail(email)
	var out model.User
	err := s.transaction(ctx, func(sc mongo.SessionContext) error {
		users := s.db.Collection(CollectionUsers)
		var u model.User
		if err := users.FindOne(sc, bson.M{"_id": key}).Decode(&u); err != nil {
			return mapMongoErr(err)
		}
		if err := fn(&u); err != nil {
			return err
		}
		u.Email = key
		if _, err := users.ReplaceOne(sc, bson.M{"_id": key}, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return find[model.User](ctx, s.db.Collection(CollectionUsers), bson.M{"role": string(role)}, opts)
}

func (s *MongoStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var ev model.Event
	if err := s.db.Collection(CollectionEvents).FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return nil, mapMongoErr(err)
	}
	return &ev, nil
}

func (s *MongoStore) ListEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.CreatedBy != "" {
		filter["createdBy.email"] = model.NormalizeEmail(q.CreatedBy)
	}
	if q.Participant != "" {
		filter["participantList"] = model.NormalizeEmail(q.Participant)
	}
	if q.RequestedBy != "" {
		filter["requestedBy"] = model.NormalizeEmail(q.RequestedBy)
	}
	window := bson.M{}
	if !q.From.IsZero() {
		window["$gte"] = q.From
	}
	if !q.To.IsZero() {
		window["$lt"] = q.To
	}
	if len(window) > 0 {
		filter["startTime"] = window
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return find[model.Event](ctx, s.db.Collection(CollectionEvents), filter, opts)
}

func (s *MongoStore) UpdateEvent(ctx context.Context, id string, fn EventMutation) (*model.Event, error) {
	var out model.Event
	err := s.transaction(ctx, func(sc mongo.SessionContext) error {
		events := s.db.Collection(CollectionEvents)
		var ev model.Event
		if err := events.FindOne(sc, bson.M{"_id": id}).Decode(&ev); err != nil {
			return mapMongoErr(err)
		}
		var w WriteSet
		if err := fn(&ev, &w); err != nil {
			return err
		}
		if _, err := events.ReplaceOne(sc, bson.M{"_id": id}, ev); err != nil {
			return err
		}
		if err := s.apply(sc, &w); err != nil {
			return err
		}
		out = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) GetNotification(ctx context.Context, recipient, id string) (*model.Notification, error) {
	var n model.Notification
	filter := bson.M{"_id": id, "recipient": model.NormalizeEmail(recipient)}
	if err := s.db.Collection(CollectionNotifications).FindOne(ctx, filter).Decode(&n); err != nil {
		return nil, mapMongoErr(err)
	}
	return &n, nil
}

func (s *MongoStore) ListNotifications(ctx context.Context, recipient string, limit int) ([]model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"recipient": model.NormalizeEmail(recipient)}
	return find[model.Notification](ctx, s.db.Collection(CollectionNotifications), filter, opts)
}

func (s *MongoStore) ListFeedback(ctx context.Context, eventID string) ([]model.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	return find[model.Feedback](ctx, s.db.Collection(CollectionFeedback), bson.M{"eventId": eventID}, opts)
}

func (s *MongoStore) ListVerifications(ctx context.Context, eventID string) ([]model.ServiceVerification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "verifiedAt", Value: 1}})
	return find[model.ServiceVerification](ctx, s.db.Collection(CollectionVerifications), bson.M{"eventId": eventID}, opts)
}

func (s *MongoStore) GetHelpRequest(ctx context.Context, id string) (*model.HelpRequest, error) {
	var h model.HelpRequest
	if err := s.db.Collection(CollectionHelpRequests).FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		return nil, mapMongoErr(err)
	}
	return &h, nil
}

func (s *MongoStore) ListHelpRequests(ctx context.Context, requester string, status model.HelpRequestStatus) ([]model.HelpRequest, error) {
	filter := bson.M{}
	if requester != "" {
		filter["requester"] = model.NormalizeEmail(requester)
	}
	if status != "" {
		filter["status"] = string(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return find[model.HelpRequest](ctx, s.db.Collection(CollectionHelpRequests), filter, opts)
}

func (s *MongoStore) UpdateHelpRequest(ctx context.Context, id string, fn HelpRequestMutation) (*model.HelpRequest, error) {
	var out model.HelpRequest
	err := s.transaction(ctx, func(sc mongo.SessionContext) error {
		requests := s.db.Collection(CollectionHelpRequests)
		var h model.HelpRequest
		if err := requests.FindOne(sc, bson.M{"_id": id}).Decode(&h); err != nil {
			return mapMongoErr(err)
		}
		var w WriteSet
		if err := fn(&h, &w); err != nil {
			return err
		}
		if _, err := requests.ReplaceOne(sc, bson.M{"_id": id}, h); err != nil {
			return err
		}
		if err := s.apply(sc, &w); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) Commit(ctx context.Context, w *WriteSet) error {
	if w.Empty() {
		return nil
	}
	return s.transaction(ctx, func(sc mongo.SessionContext) error {
		return s.apply(sc, w)
	})
}

func (s *MongoStore) transaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return mapMongoErr(err)
}

func (s *MongoStore) apply(sc mongo.SessionContext, w *WriteSet) error {
	for _, ev := range w.Events {
		if _, err := s.db.Collection(CollectionEvents).InsertOne(sc, ev); err != nil {
			return mapMongoErr(err)
		}
	}
	for _, key := range w.Consumed {
		res, err := s.db.Collection(CollectionNotifications).DeleteOne(sc, bson.M{"_id": key.ID, "recipient": key.Recipient})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
	}
	if err := insertAll(sc, s.db.Collection(CollectionNotifications), w.Notifications); err != nil {
		return err
	}
	if err := insertAll(sc, s.db.Collection(CollectionFeedback), w.Feedback); err != nil {
		return err
	}
	if err := insertAll(sc, s.db.Collection(CollectionVerifications), w.Verifications); err != nil {
		return err
	}
	if err := insertAll(sc, s.db.Collection(CollectionHelpRequests), w.HelpRequests); err != nil {
		return err
	}
	for _, link := range w.Links {
		op := "$addToSet"
		if link.Remove {
			op = "$pull"
		}
		update := bson.M{op: bson.M{string(link.Field): link.EventID}}
		res, err := s.db.Collection(CollectionUsers).UpdateOne(sc, bson.M{"_id": link.Email}, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func insertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	if _, err := coll.InsertMany(ctx, batch); err != nil {
		return mapMongoErr(err)
	}
	return nil
}

func find[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrAlreadyExists
	default:
		return err
	}
}
