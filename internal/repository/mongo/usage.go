package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type usageRepository struct {
	collection *driver.Collection
}

func NewUsageRepository(db *driver.Database) repository.UsageRepository {
	return &usageRepository{collection: db.Collection(usageCollection)}
}

func (r *usageRepository) Increment(ctx context.Context, email string, itemType model.UsageItemType, value string, at time.Time) error {
	filter := bson.M{"user_email": email, "item_type": itemType, "item_value": value}
	update := bson.M{
		"$inc":         bson.M{"usage_count": 1},
		"$set":         bson.M{"last_used": at},
		"$setOnInsert": bson.M{"first_used": at},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil && driver.IsDuplicateKeyError(err) {
		// Two concurrent upserts raced on the unique key; the second becomes a plain update.
		_, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to track usage: %w", err)
	}
	return nil
}

func (r *usageRepository) Top(ctx context.Context, email string, itemType model.UsageItemType, limit int64) ([]*model.UsageStat, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "usage_count", Value: -1}, {Key: "first_used", Value: 1}}).
		SetLimit(limit)
	return findAll[model.UsageStat](ctx, r.collection, bson.M{"user_email": email, "item_type": itemType}, opts)
}
