package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	ruleerrors "staffbook/internal/recurring/errors"
	"staffbook/pkg/config"
	mongotx "staffbook/pkg/db/mongo"
	"staffbook/pkg/model"
)

const CollectionName = "Recurring_rules"

type RuleRepository interface {
	Create(ctx context.Context, rule *model.RecurringRule) error
	FindByID(ctx context.Context, id string) (*model.RecurringRule, error)
	// Deactivate flips an active rule to inactive. It returns ErrNotActive
	// when the rule was already inactive.
	Deactivate(ctx context.Context, id, actor string) (time.Time, error)
}

type mongoRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRuleRepository(cfg *config.Config) RuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRuleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRuleRepository) Create(ctx context.Context, rule *model.RecurringRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rule.IsActive = true
	rule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create recurring rule: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRuleRepository) FindByID(ctx context.Context, id string) (*model.RecurringRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ruleerrors.ErrInvalidID, id)
	}

	var rule model.RecurringRule
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ruleerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recurring rule: %w", err)
	}
	return &rule, nil
}

func (r *mongoRuleRepository) Deactivate(ctx context.Context, id, actor string) (time.Time, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ruleerrors.ErrInvalidID, id)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{"$set": bson.M{
		"is_active":      false,
		"deactivated_by": actor,
		"deactivated_at": at,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "is_active": true}, update)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to deactivate recurring rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return time.Time{}, ruleerrors.ErrNotActive
	}
	return at, nil
}
