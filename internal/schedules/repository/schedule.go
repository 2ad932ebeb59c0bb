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

	scheduleerrors "staffbook/internal/schedules/errors"
	"staffbook/pkg/config"
	mongotx "staffbook/pkg/db/mongo"
	"staffbook/pkg/model"
)

const (
	WeeklyCollectionName   = "Weekly_schedules"
	OverrideCollectionName = "Availability_overrides"
	TimeOffCollectionName  = "Time_off_requests"
)

// ScheduleRepository stores the three schedule layers. Find* methods used by
// the resolver return (nil, nil) for absent rows.
type ScheduleRepository interface {
	UpsertWeekly(ctx context.Context, w *model.WeeklySchedule) error
	FindWeekly(ctx context.Context, staffID string, dayOfWeek int) (*model.WeeklySchedule, error)
	ListWeekly(ctx context.Context, staffID string) ([]*model.WeeklySchedule, error)

	UpsertOverride(ctx context.Context, o *model.AvailabilityOverride) error
	FindOverride(ctx context.Context, staffID, date string) (*model.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, staffID, date string) error

	CreateTimeOff(ctx context.Context, t *model.TimeOffRequest) error
	FindTimeOffByID(ctx context.Context, id string) (*model.TimeOffRequest, error)
	ListTimeOff(ctx context.Context, staffID string) ([]*model.TimeOffRequest, error)
	UpdateTimeOffStatus(ctx context.Context, id string, from, to model.TimeOffStatus, actor string) error
	FindApprovedTimeOff(ctx context.Context, staffID, date string) ([]*model.TimeOffRequest, error)
}

type mongoScheduleRepository struct {
	cfg       *config.Config
	weekly    *mongo.Collection
	overrides *mongo.Collection
	timeOff   *mongo.Collection
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:       cfg,
		weekly:    db.Collection(WeeklyCollectionName),
		overrides: db.Collection(OverrideCollectionName),
		timeOff:   db.Collection(TimeOffCollectionName),
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoScheduleRepository) UpsertWeekly(ctx context.Context, w *model.WeeklySchedule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	w.UpdatedAt = now()
	filter := bson.M{"staff_id": w.StaffID, "day_of_week": w.DayOfWeek}
	update := bson.M{
		"$set": bson.M{
			"open_start":  w.OpenStart,
			"open_end":    w.OpenEnd,
			"available":   w.Available,
			"break_start": w.BreakStart,
			"break_end":   w.BreakEnd,
			"updated_by":  w.UpdatedBy,
			"updated_at":  w.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	if err := r.weekly.FindOneAndUpdate(ctx, filter, update, opts).Decode(w); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return scheduleerrors.ErrDuplicate
		}
		return fmt.Errorf("failed to upsert weekly schedule: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) FindWeekly(ctx context.Context, staffID string, dayOfWeek int) (*model.WeeklySchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var w model.WeeklySchedule
	err := r.weekly.FindOne(ctx, bson.M{"staff_id": staffID, "day_of_week": dayOfWeek}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find weekly schedule: %w", err)
	}
	return &w, nil
}

func (r *mongoScheduleRepository) ListWeekly(ctx context.Context, staffID string) ([]*model.WeeklySchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}})
	cursor, err := r.weekly.Find(ctx, bson.M{"staff_id": staffID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly schedules: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []*model.WeeklySchedule{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode weekly schedules: %w", err)
	}
	return rows, nil
}

func (r *mongoScheduleRepository) UpsertOverride(ctx context.Context, o *model.AvailabilityOverride) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	o.UpdatedAt = now()
	filter := bson.M{"staff_id": o.StaffID, "date": o.Date}
	update := bson.M{
		"$set": bson.M{
			"available":  o.Available,
			"start_time": o.StartTime,
			"end_time":   o.EndTime,
			"reason":     o.Reason,
			"updated_by": o.UpdatedBy,
			"updated_at": o.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	if err := r.overrides.FindOneAndUpdate(ctx, filter, update, opts).Decode(o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return scheduleerrors.ErrDuplicate
		}
		return fmt.Errorf("failed to upsert override: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) FindOverride(ctx context.Context, staffID, date string) (*model.AvailabilityOverride, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var o model.AvailabilityOverride
	err := r.overrides.FindOne(ctx, bson.M{"staff_id": staffID, "date": date}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find override: %w", err)
	}
	return &o, nil
}

func (r *mongoScheduleRepository) DeleteOverride(ctx context.Context, staffID, date string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.overrides.DeleteOne(ctx, bson.M{"staff_id": staffID, "date": date})
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleerrors.ErrNotFound
	}
	return nil
}

func (r *mongoScheduleRepository) CreateTimeOff(ctx context.Context, t *model.TimeOffRequest) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	result, err := r.timeOff.InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to create time-off request: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) FindTimeOffByID(ctx context.Context, id string) (*model.TimeOffRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleerrors.ErrInvalidID, id)
	}

	var t model.TimeOffRequest
	if err := r.timeOff.FindOne(ctx, bson.M{"_id": objectID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time-off request: %w", err)
	}
	return &t, nil
}

func (r *mongoScheduleRepository) ListTimeOff(ctx context.Context, staffID string) ([]*model.TimeOffRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := r.timeOff.Find(ctx, bson.M{"staff_id": staffID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list time-off requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []*model.TimeOffRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode time-off requests: %w", err)
	}
	return requests, nil
}

// UpdateTimeOffStatus moves the request only if it is still in status from.
func (r *mongoScheduleRepository) UpdateTimeOffStatus(ctx context.Context, id string, from, to model.TimeOffStatus, actor string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_by": actor, "updated_at": now()}}

	result, err := r.timeOff.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update time-off status: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleerrors.ErrStaleStatus
	}
	return nil
}

func (r *mongoScheduleRepository) FindApprovedTimeOff(ctx context.Context, staffID, date string) ([]*model.TimeOffRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"staff_id":   staffID,
		"status":     model.TimeOffApproved,
		"start_date": bson.M{"$lte": date},
		"end_date":   bson.M{"$gte": date},
	}
	cursor, err := r.timeOff.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find approved time-off: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.TimeOffRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode approved time-off: %w", err)
	}
	return requests, nil
}
