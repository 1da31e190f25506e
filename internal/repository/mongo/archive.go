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

type archiveRepository struct {
	collection *driver.Collection
}

func NewArchiveRepository(db *driver.Database) repository.ArchiveRepository {
	return &archiveRepository{collection: db.Collection(archiveCollection)}
}

func (r *archiveRepository) Create(ctx context.Context, patient *model.ArchivedPatient) error {
	if err := insert(ctx, r.collection, patient); err != nil {
		return fmt.Errorf("failed to archive patient: %w", err)
	}
	return nil
}

func (r *archiveRepository) Get(ctx context.Context, mrn string) (*model.ArchivedPatient, error) {
	return findOne[model.ArchivedPatient](ctx, r.collection, bson.M{"mrn": mrn})
}

func (r *archiveRepository) List(ctx context.Context) ([]*model.ArchivedPatient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "archived_at", Value: -1}})
	return findAll[model.ArchivedPatient](ctx, r.collection, bson.M{}, opts)
}

func (r *archiveRepository) Delete(ctx context.Context, mrn string) error {
	return deleteOne(ctx, r.collection, bson.M{"mrn": mrn})
}
