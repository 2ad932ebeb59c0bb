package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/model"
)

const CollectionName = "Slot_locks"

// MongoLocker stores leases as documents keyed by _id. A TTL index on
// expires_at removes abandoned leases; an expired lease that the TTL monitor
// has not yet removed can be taken over.
type MongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

func NewMongoLocker(db *mongo.Database, ttl time.Duration) *MongoLocker {
	return newMongoLocker(db.Collection(CollectionName), ttl)
}

func newMongoLocker(coll *mongo.Collection, ttl time.Duration) *MongoLocker {
	return &MongoLocker{collection: coll, ttl: ttl, now: time.Now}
}

func (l *MongoLocker) Acquire(ctx context.Context, key string) (*Lease, error) {
	now := l.now().UTC()
	lease := &Lease{Key: key, Owner: uuid.NewString(), ExpiresAt: now.Add(l.ttl)}

	_, err := l.collection.InsertOne(ctx, model.SlotLock{
		ID:        key,
		Owner:     lease.Owner,
		ExpiresAt: lease.ExpiresAt,
		CreatedAt: now,
	})
	if err == nil {
		return lease, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, apperrors.Internal("Failed to acquire slot lock", err)
	}

	res, err := l.collection.UpdateOne(ctx,
		bson.M{"_id": key, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{
			"owner":      lease.Owner,
			"expires_at": lease.ExpiresAt,
			"created_at": now,
		}},
	)
	if err != nil {
		return nil, apperrors.Internal("Failed to acquire slot lock", err)
	}
	if res.ModifiedCount == 0 {
		return nil, errBusy()
	}
	return lease, nil
}

func (l *MongoLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	_, err := l.collection.DeleteOne(ctx, bson.M{"_id": lease.Key, "owner": lease.Owner})
	if err != nil {
		return apperrors.Internal("Failed to release slot lock", err)
	}
	return nil
}
