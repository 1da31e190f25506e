package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type patientRepository struct {
	collection *driver.Collection
}

func NewPatientRepository(db *driver.Database) repository.PatientRepository {
	return &patientRepository{collection: db.Collection(patientsCollection)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	if err := insert(ctx, r.collection, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, mrn string) (*model.Patient, error) {
	return findOne[model.Patient](ctx, r.collection, bson.M{"mrn": mrn})
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return findAll[model.Patient](ctx, r.collection, bson.M{})
}

func (r *patientRepository) Replace(ctx context.Context, patient *model.Patient, expectedVersion int64) error {
	filter := bson.M{"mrn": patient.MRN}
	if expectedVersion == 0 {
		filter["$or"] = bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}
	} else {
		filter["version"] = expectedVersion
	}

	next := *patient
	next.Version = expectedVersion + 1

	res, err := r.collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("failed to replace patient: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"mrn": patient.MRN})
		if err != nil {
			return fmt.Errorf("failed to check patient: %w", err)
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	patient.Version = next.Version
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, mrn string) error {
	return deleteOne(ctx, r.collection, bson.M{"mrn": mrn})
}

func (r *patientRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]*model.Patient, error) {
	return findAll[model.Patient](ctx, r.collection, bson.M{
		"status":       model.PatientStatusCompleted,
		"completed_at": bson.M{"$lt": cutoff},
	})
}
