package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type conferenceRepository struct {
	collection *driver.Collection
}

func NewConferenceRepository(db *driver.Database) repository.ConferenceRepository {
	return &conferenceRepository{collection: db.Collection(conferencesCollection)}
}

func (r *conferenceRepository) Create(ctx context.Context, conference *model.Conference) error {
	if err := insert(ctx, r.collection, conference); err != nil {
		return fmt.Errorf("failed to create conference: %w", err)
	}
	return nil
}

func (r *conferenceRepository) Get(ctx context.Context, id string) (*model.Conference, error) {
	return findOne[model.Conference](ctx, r.collection, bson.M{"_id": id})
}

func (r *conferenceRepository) List(ctx context.Context) ([]*model.Conference, error) {
	return findAll[model.Conference](ctx, r.collection, bson.M{})
}

func (r *conferenceRepository) Update(ctx context.Context, conference *model.Conference) error {
	return replaceByID(ctx, r.collection, conference.ID, conference)
}

func (r *conferenceRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}
