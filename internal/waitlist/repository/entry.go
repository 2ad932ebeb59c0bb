package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	entryerrors "staffbook/internal/waitlist/errors"
	"staffbook/pkg/config"
	mongotx "staffbook/pkg/db/mongo"
	"staffbook/pkg/model"
)

const CollectionName = "Waitlist_entries"

type EntryRepository interface {
	Create(ctx context.Context, e *model.WaitlistEntry) error
	FindByID(ctx context.Context, id string) (*model.WaitlistEntry, error)
	// FindActiveByService returns active entries ordered by priority
	// descending, then creation time ascending.
	FindActiveByService(ctx context.Context, serviceID string) ([]*model.WaitlistEntry, error)

	MarkNotified(ctx context.Context, id string) (time.Time, error)
	MarkConverted(ctx context.Context, id string, from model.WaitlistStatus, appointmentID string) error
	Cancel(ctx context.Context, id string, from model.WaitlistStatus) error
}

type mongoEntryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEntryRepository(cfg *config.Config) EntryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEntryRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEntryRepository) Create(ctx context.Context, e *model.WaitlistEntry) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	e.UpdatedAt = e.CreatedAt

	result, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEntryRepository) FindByID(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entryerrors.ErrInvalidID, id)
	}

	var e model.WaitlistEntry
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find waitlist entry: %w", err)
	}
	return &e, nil
}

func (r *mongoEntryRepository) FindActiveByService(ctx context.Context, serviceID string) ([]*model.WaitlistEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"service_id": serviceID, "status": model.WaitlistActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*model.WaitlistEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}

// transition applies set only while the entry is still in from.
func (r *mongoEntryRepository) transition(ctx context.Context, id string, from model.WaitlistStatus, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", entryerrors.ErrInvalidID, id)
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update waitlist entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return entryerrors.ErrStaleStatus
	}
	return nil
}

func (r *mongoEntryRepository) MarkNotified(ctx context.Context, id string) (time.Time, error) {
	at := time.Now().UTC().Truncate(time.Millisecond)
	err := r.transition(ctx, id, model.WaitlistActive, bson.M{
		"status":      model.WaitlistNotified,
		"notified_at": at,
	})
	return at, err
}

func (r *mongoEntryRepository) MarkConverted(ctx context.Context, id string, from model.WaitlistStatus, appointmentID string) error {
	return r.transition(ctx, id, from, bson.M{
		"status":                      model.WaitlistConverted,
		"converted_to_appointment_id": appointmentID,
	})
}

func (r *mongoEntryRepository) Cancel(ctx context.Context, id string, from model.WaitlistStatus) error {
	return r.transition(ctx, id, from, bson.M{"status": model.WaitlistCancelled})
}
