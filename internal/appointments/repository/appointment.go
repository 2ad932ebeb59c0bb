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

	appterrors "staffbook/internal/appointments/errors"
	"staffbook/pkg/config"
	mongotx "staffbook/pkg/db/mongo"
	"staffbook/pkg/model"
)

const CollectionName = "Appointments"

// Filter narrows List and Count. Empty fields are ignored.
type Filter struct {
	StaffID  string
	ClientID string
	Date     string
	Status   model.AppointmentStatus
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, f Filter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, f Filter) (int64, error)
	FindActiveByStaffDate(ctx context.Context, staffID, date string) ([]*model.Appointment, error)
	FindActiveByClientDate(ctx context.Context, clientID, date string) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus, actor string) error
	Reschedule(ctx context.Context, id string, from model.AppointmentStatus, a *model.Appointment) error

	ExistsOccurrence(ctx context.Context, recurringID, date, startTime string) (bool, error)
	CountByRecurring(ctx context.Context, recurringID string) (int64, error)
	DeleteFutureInstances(ctx context.Context, recurringID, afterDate string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	a.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	a.UpdatedAt = a.CreatedAt
	a.SyncActive()

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var a model.Appointment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &a, nil
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.StaffID != "" {
		filter["staff_id"] = f.StaffID
	}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *mongoAppointmentRepository) List(ctx context.Context, f Filter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, f.toBSON(), opts)
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, f Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, f.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) FindActiveByStaffDate(ctx context.Context, staffID, date string) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, bson.M{"staff_id": staffID, "date": date, "active": true}, opts)
}

func (r *mongoAppointmentRepository) FindActiveByClientDate(ctx context.Context, clientID, date string) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, bson.M{"client_id": clientID, "date": date, "active": true}, opts)
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Appointment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

// UpdateStatus applies the transition only if the stored status is still from.
func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus, actor string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     to,
		"active":     to.IsActive(),
		"updated_by": actor,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return appterrors.ErrStaleStatus
	}
	return nil
}

func (r *mongoAppointmentRepository) Reschedule(ctx context.Context, id string, from model.AppointmentStatus, a *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	a.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"date":       a.Date,
		"start_time": a.StartTime,
		"end_time":   a.EndTime,
		"status":     a.Status,
		"active":     a.Status.IsActive(),
		"updated_by": a.UpdatedBy,
		"updated_at": a.UpdatedAt,
	}
	update := bson.M{"$set": set}
	// staff-less rows must stay outside the partial unique index
	if a.StaffID == "" {
		update["$unset"] = bson.M{"staff_id": ""}
	} else {
		set["staff_id"] = a.StaffID
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrDuplicate
		}
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appterrors.ErrStaleStatus
	}
	return nil
}

func (r *mongoAppointmentRepository) ExistsOccurrence(ctx context.Context, recurringID, date, startTime string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"recurring_id": recurringID, "date": date, "start_time": startTime}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check occurrence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoAppointmentRepository) CountByRecurring(ctx context.Context, recurringID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"recurring_id": recurringID})
	if err != nil {
		return 0, fmt.Errorf("failed to count recurring instances: %w", err)
	}
	return count, nil
}

// DeleteFutureInstances removes pending and confirmed instances dated after
// afterDate. Past, completed and cancelled instances are kept.
func (r *mongoAppointmentRepository) DeleteFutureInstances(ctx context.Context, recurringID, afterDate string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"recurring_id": recurringID,
		"date":         bson.M{"$gt": afterDate},
		"status":       bson.M{"$in": []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed}},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete future instances: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
