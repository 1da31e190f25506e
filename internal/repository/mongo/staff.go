package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

func staffQuery(filter model.StaffFilter) bson.M {
	query := bson.M{}
	if filter.Hospital != "" {
		query["hospital"] = filter.Hospital
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	return query
}

type residentRepository struct {
	collection *driver.Collection
}

func NewResidentRepository(db *driver.Database) repository.ResidentRepository {
	return &residentRepository{collection: db.Collection(residentsCollection)}
}

func (r *residentRepository) Create(ctx context.Context, resident *model.Resident) error {
	if err := insert(ctx, r.collection, resident); err != nil {
		return fmt.Errorf("failed to create resident: %w", err)
	}
	return nil
}

func (r *residentRepository) Get(ctx context.Context, id string) (*model.Resident, error) {
	return findOne[model.Resident](ctx, r.collection, bson.M{"_id": id})
}

func (r *residentRepository) GetByEmail(ctx context.Context, email string) (*model.Resident, error) {
	return findOne[model.Resident](ctx, r.collection, bson.M{"email": email})
}

func (r *residentRepository) List(ctx context.Context, filter model.StaffFilter) ([]*model.Resident, error) {
	return findAll[model.Resident](ctx, r.collection, staffQuery(filter))
}

func (r *residentRepository) Update(ctx context.Context, resident *model.Resident) error {
	return replaceByID(ctx, r.collection, resident.ID, resident)
}

func (r *residentRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

type attendingRepository struct {
	collection *driver.Collection
}

func NewAttendingRepository(db *driver.Database) repository.AttendingRepository {
	return &attendingRepository{collection: db.Collection(attendingsCollection)}
}

func (r *attendingRepository) Create(ctx context.Context, attending *model.Attending) error {
	if err := insert(ctx, r.collection, attending); err != nil {
		return fmt.Errorf("failed to create attending: %w", err)
	}
	return nil
}

func (r *attendingRepository) Get(ctx context.Context, id string) (*model.Attending, error) {
	return findOne[model.Attending](ctx, r.collection, bson.M{"_id": id})
}

func (r *attendingRepository) List(ctx context.Context, filter model.StaffFilter) ([]*model.Attending, error) {
	return findAll[model.Attending](ctx, r.collection, staffQuery(filter))
}

func (r *attendingRepository) Update(ctx context.Context, attending *model.Attending) error {
	return replaceByID(ctx, r.collection, attending.ID, attending)
}

func (r *attendingRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}
