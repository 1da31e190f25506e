package memory

import (
	"context"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

func matchesStaff(filter model.StaffFilter, hospital string, active bool) bool {
	if filter.Hospital != "" && hospital != filter.Hospital {
		return false
	}
	return !filter.ActiveOnly || active
}

type ResidentRepository struct {
	rows *table[model.Resident]
}

func NewResidentRepository() *ResidentRepository {
	return &ResidentRepository{rows: newTable[model.Resident](nil)}
}

func (r *ResidentRepository) Create(_ context.Context, resident *model.Resident) error {
	return r.rows.insert(resident.ID, resident, func(existing *model.Resident) bool {
		return existing.Email == resident.Email
	})
}

func (r *ResidentRepository) Get(_ context.Context, id string) (*model.Resident, error) {
	return r.rows.get(id)
}

func (r *ResidentRepository) GetByEmail(_ context.Context, email string) (*model.Resident, error) {
	return r.rows.find(func(res *model.Resident) bool { return res.Email == email })
}

func (r *ResidentRepository) List(_ context.Context, filter model.StaffFilter) ([]*model.Resident, error) {
	return r.rows.filter(func(res *model.Resident) bool {
		return matchesStaff(filter, res.Hospital, res.IsActive)
	}), nil
}

func (r *ResidentRepository) Update(_ context.Context, resident *model.Resident) error {
	_, err := r.rows.update(resident.ID, func(stored *model.Resident) error {
		*stored = *resident
		return nil
	})
	return err
}

func (r *ResidentRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}

type AttendingRepository struct {
	rows *table[model.Attending]
}

func NewAttendingRepository() *AttendingRepository {
	return &AttendingRepository{rows: newTable[model.Attending](nil)}
}

func (r *AttendingRepository) Create(_ context.Context, attending *model.Attending) error {
	return r.rows.insert(attending.ID, attending, nil)
}

func (r *AttendingRepository) Get(_ context.Context, id string) (*model.Attending, error) {
	return r.rows.get(id)
}

func (r *AttendingRepository) List(_ context.Context, filter model.StaffFilter) ([]*model.Attending, error) {
	return r.rows.filter(func(a *model.Attending) bool {
		return matchesStaff(filter, a.Hospital, a.IsActive)
	}), nil
}

func (r *AttendingRepository) Update(_ context.Context, attending *model.Attending) error {
	_, err := r.rows.update(attending.ID, func(stored *model.Attending) error {
		*stored = *attending
		return nil
	})
	return err
}

func (r *AttendingRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}
