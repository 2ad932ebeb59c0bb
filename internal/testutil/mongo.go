// Package testutil connects integration tests to a real MongoDB.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoMigration "staffbook/internal/migrations/mongo"
	"staffbook/pkg/client"
	"staffbook/pkg/config"
	"staffbook/pkg/logger"
)

const (
	EnvTestMongoURI   = "TEST_MONGO_URI"
	ConnectionTimeout = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper connects to TEST_MONGO_URI and migrates a database that is
// private to the test. The test is skipped when no URI is set.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	uri := os.Getenv(EnvTestMongoURI)
	if uri == "" {
		t.Skipf("%s not set", EnvTestMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := fmt.Sprintf("staffbook_test_%s", uuid.NewString()[:8])
	m := &MongoHelper{
		Client:   mc,
		Database: mc.Database(dbName),
		DBName:   dbName,
	}
	if err := mongoMigration.RunMigration(ctx, mc, dbName, logger.Nop()); err != nil {
		t.Fatalf("failed to migrate %s: %v", dbName, err)
	}

	t.Cleanup(func() { m.Close(t) })
	return m
}

// Config returns a configuration bound to the helper's database.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName:  m.DBName,
		ReadTimeout:        config.DefaultReadTimeout,
		WriteTimeout:       config.DefaultWriteTimeout,
		BusinessHoursStart: config.DefaultBusinessHoursStart,
		BusinessHoursEnd:   config.DefaultBusinessHoursEnd,
		DefaultBufferMin:   config.DefaultBufferMin,
		MaxExpansionDays:   config.DefaultMaxExpansionDays,
		TimeZone:           config.DefaultTimeZone,
		LockBackend:        config.LockBackendMongo,
		SlotLockTTL:        config.DefaultSlotLockTTL,
		Log:                logger.Nop(),
		Client:             &client.Client{Mongo: m.Client},
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// Close drops the test database and disconnects.
func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Database.Drop(ctx); err != nil {
		t.Logf("warning: failed to drop %s: %v", m.DBName, err)
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}
