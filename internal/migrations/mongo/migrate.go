package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointments "staffbook/internal/appointments/repository"
	"staffbook/internal/migrations/mongo/validators"
	recurring "staffbook/internal/recurring/repository"
	schedules "staffbook/internal/schedules/repository"
	waitlist "staffbook/internal/waitlist/repository"
	"staffbook/pkg/lock"
	"staffbook/pkg/logger"
)

var (
	WeeklyScheduleIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "staff_id", Value: 1}, {Key: "day_of_week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	OverrideIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "staff_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	TimeOffIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "staff_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
	}

	AppointmentIndexes = []mongo.IndexModel{
		// one active appointment per staff start; staff-less rows are exempt
		{
			Keys: bson.D{
				{Key: "staff_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_active_staff_start").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"active":   true,
					"staff_id": bson.M{"$exists": true},
				}),
		},
		// expansion idempotence
		{
			Keys: bson.D{
				{Key: "recurring_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_recurring_occurrence").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"recurring_id": bson.M{"$exists": true},
				}),
		},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "active", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "staff_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "active", Value: 1},
		}},
	}

	RecurringRuleIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	WaitlistIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "service_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "priority", Value: -1},
			{Key: "created_at", Value: 1},
		}},
	}

	SlotLockIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		schedules.WeeklyCollectionName: {
			Indexes:   WeeklyScheduleIndexes,
			Validator: validators.WeeklyScheduleValidator,
		},
		schedules.OverrideCollectionName: {
			Indexes:   OverrideIndexes,
			Validator: validators.AvailabilityOverrideValidator,
		},
		schedules.TimeOffCollectionName: {
			Indexes:   TimeOffIndexes,
			Validator: validators.TimeOffValidator,
		},
		appointments.CollectionName: {
			Indexes:   AppointmentIndexes,
			Validator: validators.AppointmentValidator,
		},
		recurring.CollectionName: {
			Indexes:   RecurringRuleIndexes,
			Validator: validators.RecurringRuleValidator,
		},
		waitlist.CollectionName: {
			Indexes:   WaitlistIndexes,
			Validator: validators.WaitlistEntryValidator,
		},
		lock.CollectionName: {
			Indexes:   SlotLockIndexes,
			Validator: validators.SlotLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)
	start := time.Now()

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied", "database", dbName, "duration", time.Since(start))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
