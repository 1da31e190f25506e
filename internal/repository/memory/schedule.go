package memory

import (
	"context"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type ScheduleRepository struct {
	rows *table[model.Schedule]
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{rows: newTable(func(s *model.Schedule) *model.Schedule {
		c := *s
		if s.ArchivedAt != nil {
			t := *s.ArchivedAt
			c.ArchivedAt = &t
		}
		return &c
	})}
}

func (r *ScheduleRepository) Create(_ context.Context, schedule *model.Schedule) error {
	return r.rows.insert(schedule.ID, schedule, nil)
}

func (r *ScheduleRepository) Get(_ context.Context, id string) (*model.Schedule, error) {
	return r.rows.get(id)
}

func (r *ScheduleRepository) List(_ context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error) {
	return r.rows.filter(func(s *model.Schedule) bool {
		if filter.PatientMRN != "" && s.PatientMRN != filter.PatientMRN {
			return false
		}
		if filter.Archived != nil && s.Archived != *filter.Archived {
			return false
		}
		return true
	}), nil
}

func (r *ScheduleRepository) Update(_ context.Context, schedule *model.Schedule) error {
	_, err := r.rows.update(schedule.ID, func(stored *model.Schedule) error {
		*stored = *schedule
		return nil
	})
	return err
}

func (r *ScheduleRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}

func (r *ScheduleRepository) SetArchivedByMRN(_ context.Context, mrn string, archived bool, at time.Time) (int64, error) {
	n := r.rows.updateWhere(
		func(s *model.Schedule) bool {
			return s.PatientMRN == mrn && (archived || s.Archived)
		},
		func(s *model.Schedule) bool {
			s.Archived = archived
			if archived {
				t := at
				s.ArchivedAt = &t
			} else {
				s.ArchivedAt = nil
			}
			return true
		},
	)
	return n, nil
}
