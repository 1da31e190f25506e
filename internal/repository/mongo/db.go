package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

// Collection names
const (
	patientsCollection      = "patients"
	archiveCollection       = "archived_patients"
	schedulesCollection     = "schedules"
	tasksCollection         = "tasks"
	notificationsCollection = "notifications"
	usageCollection         = "usage_stats"
	residentsCollection     = "residents"
	attendingsCollection    = "attendings"
	conferencesCollection   = "conferences"
	vspCollection           = "vsp_sessions"
	usersCollection         = "users"
)

// Config represents the configuration for MongoDB connection
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// NewClient creates a MongoDB client and verifies it with a ping.
func NewClient(ctx context.Context, cfg Config) (*driver.Client, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := driver.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// NewStore wires every repository to collections of db.
func NewStore(client *driver.Client, db *driver.Database) *repository.Store {
	return &repository.Store{
		Patients:      NewPatientRepository(db),
		Archive:       NewArchiveRepository(db),
		Schedules:     NewScheduleRepository(db),
		Tasks:         NewTaskRepository(db),
		Notifications: NewNotificationRepository(db),
		Usage:         NewUsageRepository(db),
		Residents:     NewResidentRepository(db),
		Attendings:    NewAttendingRepository(db),
		Conferences:   NewConferenceRepository(db),
		VSPSessions:   NewVSPRepository(db),
		Users:         NewUserRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *driver.Database) error {
	indexes := map[string][]driver.IndexModel{
		patientsCollection: {
			{Keys: bson.D{{Key: "mrn", Value: 1}}, Options: options.Index().SetUnique(true).SetName("PatientMRN")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "completed_at", Value: 1}}, Options: options.Index().SetName("PatientCompletion")},
		},
		archiveCollection: {
			{Keys: bson.D{{Key: "mrn", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ArchivedMRN")},
			{Keys: bson.D{{Key: "archived_at", Value: -1}}, Options: options.Index().SetName("ArchivedAt")},
		},
		schedulesCollection: {
			{Keys: bson.D{{Key: "patient_mrn", Value: 1}}, Options: options.Index().SetName("SchedulePatient")},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "patient_mrn", Value: 1}}, Options: options.Index().SetName("TaskPatient")},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipient_email", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("NotificationRecipient")},
		},
		usageCollection: {
			{
				Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "item_type", Value: 1}, {Key: "item_value", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("UsageKey"),
			},
			{
				Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "item_type", Value: 1}, {Key: "usage_count", Value: -1}},
				Options: options.Index().SetName("UsageRanking"),
			},
		},
		residentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ResidentEmail")},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("UserEmail")},
		},
		vspCollection: {
			{Keys: bson.D{{Key: "start", Value: -1}}, Options: options.Index().SetName("VSPStart")},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, driver.ErrNoDocuments):
		return repository.ErrNotFound
	case driver.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, coll *driver.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *driver.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func insert(ctx context.Context, coll *driver.Collection, doc interface{}) error {
	_, err := coll.InsertOne(ctx, doc)
	return translate(err)
}

// replaceByID replaces a document keyed by _id, failing with ErrNotFound when absent.
func replaceByID(ctx context.Context, coll *driver.Collection, id string, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *driver.Collection, filter interface{}) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
