package memory

import (
	"context"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

type TaskRepository struct {
	rows *table[model.Task]
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{rows: newTable[model.Task](nil)}
}

func (r *TaskRepository) Create(_ context.Context, task *model.Task) error {
	return r.rows.insert(task.ID, task, nil)
}

func (r *TaskRepository) Get(_ context.Context, id string) (*model.Task, error) {
	return r.rows.get(id)
}

func (r *TaskRepository) List(_ context.Context, patientMRN string) ([]*model.Task, error) {
	return r.rows.filter(func(t *model.Task) bool {
		return patientMRN == "" || t.PatientMRN == patientMRN
	}), nil
}

func (r *TaskRepository) Update(_ context.Context, task *model.Task) error {
	_, err := r.rows.update(task.ID, func(stored *model.Task) error {
		*stored = *task
		return nil
	})
	return err
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}

func (r *TaskRepository) Toggle(_ context.Context, id string) (*model.Task, error) {
	return r.rows.update(id, func(stored *model.Task) error {
		stored.Completed = !stored.Completed
		stored.Normalize()
		return nil
	})
}
