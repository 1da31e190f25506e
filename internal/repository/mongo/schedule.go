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

type scheduleRepository struct {
	collection *driver.Collection
}

func NewScheduleRepository(db *driver.Database) repository.ScheduleRepository {
	return &scheduleRepository{collection: db.Collection(schedulesCollection)}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	if err := insert(ctx, r.collection, schedule); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*model.Schedule, error) {
	return findOne[model.Schedule](ctx, r.collection, bson.M{"_id": id})
}

func (r *scheduleRepository) List(ctx context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error) {
	query := bson.M{}
	if filter.PatientMRN != "" {
		query["patient_mrn"] = filter.PatientMRN
	}
	if filter.Archived != nil {
		if *filter.Archived {
			query["archived"] = true
		} else {
			query["archived"] = bson.M{"$ne": true}
		}
	}
	return findAll[model.Schedule](ctx, r.collection, query)
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *model.Schedule) error {
	return replaceByID(ctx, r.collection, schedule.ID, schedule)
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func (r *scheduleRepository) SetArchivedByMRN(ctx context.Context, mrn string, archived bool, at time.Time) (int64, error) {
	filter := bson.M{"patient_mrn": mrn}
	var update bson.M
	if archived {
		update = bson.M{"$set": bson.M{"archived": true, "archived_at": at}}
	} else {
		filter["archived"] = true
		update = bson.M{"$set": bson.M{"archived": false}, "$unset": bson.M{"archived_at": ""}}
	}

	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to flag schedules: %w", err)
	}
	return res.ModifiedCount, nil
}
