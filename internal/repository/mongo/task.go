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

type taskRepository struct {
	collection *driver.Collection
}

func NewTaskRepository(db *driver.Database) repository.TaskRepository {
	return &taskRepository{collection: db.Collection(tasksCollection)}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := insert(ctx, r.collection, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	return findOne[model.Task](ctx, r.collection, bson.M{"_id": id})
}

func (r *taskRepository) List(ctx context.Context, patientMRN string) ([]*model.Task, error) {
	filter := bson.M{}
	if patientMRN != "" {
		filter["patient_mrn"] = patientMRN
	}
	return findAll[model.Task](ctx, r.collection, filter)
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return replaceByID(ctx, r.collection, task.ID, task)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

// Toggle uses an update pipeline so completed and status change in one write.
func (r *taskRepository) Toggle(ctx context.Context, id string) (*model.Task, error) {
	pipeline := driver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$completed", true}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				"$completed", model.TaskStatusCompleted, model.TaskStatusPending,
			}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task model.Task
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&task); err != nil {
		return nil, translate(err)
	}
	return &task, nil
}
