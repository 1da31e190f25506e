package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type notificationRepository struct {
	collection *driver.Collection
}

func NewNotificationRepository(db *driver.Database) repository.NotificationRepository {
	return &notificationRepository{collection: db.Collection(notificationsCollection)}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := insert(ctx, r.collection, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, email string, unreadOnly bool, limit int64) ([]*model.Notification, error) {
	filter := bson.M{"recipient_email": email}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return findAll[model.Notification](ctx, r.collection, filter, opts)
}

func (r *notificationRepository) MarkRead(ctx context.Context, email, id string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_email": email},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, email string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_email": email, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) Delete(ctx context.Context, email, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id, "recipient_email": email})
}
