package memory

import (
	"context"

	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

// NewStore returns a process-local store. It backs the "memory" driver and tests.
func NewStore() *repository.Store {
	return &repository.Store{
		Patients:      NewPatientRepository(),
		Archive:       NewArchiveRepository(),
		Schedules:     NewScheduleRepository(),
		Tasks:         NewTaskRepository(),
		Notifications: NewNotificationRepository(),
		Usage:         NewUsageRepository(),
		Residents:     NewResidentRepository(),
		Attendings:    NewAttendingRepository(),
		Conferences:   NewConferenceRepository(),
		VSPSessions:   NewVSPRepository(),
		Users:         NewUserRepository(),
		Ping:          func(context.Context) error { return nil },
		Close:         func(context.Context) error { return nil },
	}
}
