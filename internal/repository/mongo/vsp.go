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

type vspRepository struct {
	collection *driver.Collection
}

func NewVSPRepository(db *driver.Database) repository.VSPRepository {
	return &vspRepository{collection: db.Collection(vspCollection)}
}

func (r *vspRepository) Create(ctx context.Context, session *model.VSPSession) error {
	if err := insert(ctx, r.collection, session); err != nil {
		return fmt.Errorf("failed to create vsp session: %w", err)
	}
	return nil
}

func (r *vspRepository) Get(ctx context.Context, id string) (*model.VSPSession, error) {
	return findOne[model.VSPSession](ctx, r.collection, bson.M{"_id": id})
}

func (r *vspRepository) List(ctx context.Context) ([]*model.VSPSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	return findAll[model.VSPSession](ctx, r.collection, bson.M{}, opts)
}

func (r *vspRepository) Update(ctx context.Context, session *model.VSPSession) error {
	return replaceByID(ctx, r.collection, session.ID, session)
}

func (r *vspRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}
