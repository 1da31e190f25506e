package repository

import (
	"context"
	"errors"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

// ScheduleFilter narrows schedule listings. A nil Archived means all.
type ScheduleFilter struct {
	Archived   *bool
	PatientMRN string
}

// All repository interfaces in one file
type (
	// PatientRepository stores active patients keyed by MRN.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, mrn string) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		// Replace writes patient only if the stored version equals expectedVersion,
		// and bumps patient.Version on success.
		Replace(ctx context.Context, patient *model.Patient, expectedVersion int64) error
		Delete(ctx context.Context, mrn string) error
		ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]*model.Patient, error)
	}

	// ArchiveRepository stores archived patients keyed by MRN.
	ArchiveRepository interface {
		Create(ctx context.Context, patient *model.ArchivedPatient) error
		Get(ctx context.Context, mrn string) (*model.ArchivedPatient, error)
		// List is ordered by archived_at, newest first.
		List(ctx context.Context) ([]*model.ArchivedPatient, error)
		Delete(ctx context.Context, mrn string) error
	}

	ScheduleRepository interface {
		Create(ctx context.Context, schedule *model.Schedule) error
		Get(ctx context.Context, id string) (*model.Schedule, error)
		List(ctx context.Context, filter ScheduleFilter) ([]*model.Schedule, error)
		Update(ctx context.Context, schedule *model.Schedule) error
		Delete(ctx context.Context, id string) error
		// SetArchivedByMRN flags or unflags every schedule of a patient.
		SetArchivedByMRN(ctx context.Context, mrn string, archived bool, at time.Time) (int64, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		Get(ctx context.Context, id string) (*model.Task, error)
		List(ctx context.Context, patientMRN string) ([]*model.Task, error)
		Update(ctx context.Context, task *model.Task) error
		Delete(ctx context.Context, id string) error
		// Toggle flips completed and status in one write and returns the new task.
		Toggle(ctx context.Context, id string) (*model.Task, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		// ListByRecipient is ordered newest first. limit <= 0 means no limit.
		ListByRecipient(ctx context.Context, email string, unreadOnly bool, limit int64) ([]*model.Notification, error)
		MarkRead(ctx context.Context, email, id string) error
		MarkAllRead(ctx context.Context, email string) (int64, error)
		Delete(ctx context.Context, email, id string) error
	}

	UsageRepository interface {
		// Increment upserts the (user, type, value) counter.
		Increment(ctx context.Context, email string, itemType model.UsageItemType, value string, at time.Time) error
		// Top is ordered by usage_count desc, then first_used asc.
		Top(ctx context.Context, email string, itemType model.UsageItemType, limit int64) ([]*model.UsageStat, error)
	}

	ResidentRepository interface {
		Create(ctx context.Context, resident *model.Resident) error
		Get(ctx context.Context, id string) (*model.Resident, error)
		GetByEmail(ctx context.Context, email string) (*model.Resident, error)
		List(ctx context.Context, filter model.StaffFilter) ([]*model.Resident, error)
		Update(ctx context.Context, resident *model.Resident) error
		Delete(ctx context.Context, id string) error
	}

	AttendingRepository interface {
		Create(ctx context.Context, attending *model.Attending) error
		Get(ctx context.Context, id string) (*model.Attending, error)
		List(ctx context.Context, filter model.StaffFilter) ([]*model.Attending, error)
		Update(ctx context.Context, attending *model.Attending) error
		Delete(ctx context.Context, id string) error
	}

	ConferenceRepository interface {
		Create(ctx context.Context, conference *model.Conference) error
		Get(ctx context.Context, id string) (*model.Conference, error)
		List(ctx context.Context) ([]*model.Conference, error)
		Update(ctx context.Context, conference *model.Conference) error
		Delete(ctx context.Context, id string) error
	}

	VSPRepository interface {
		Create(ctx context.Context, session *model.VSPSession) error
		Get(ctx context.Context, id string) (*model.VSPSession, error)
		// List is ordered by start, latest first.
		List(ctx context.Context) ([]*model.VSPSession, error)
		Update(ctx context.Context, session *model.VSPSession) error
		Delete(ctx context.Context, id string) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
	}
)

// Store bundles every repository of one backend.
type Store struct {
	Patients      PatientRepository
	Archive       ArchiveRepository
	Schedules     ScheduleRepository
	Tasks         TaskRepository
	Notifications NotificationRepository
	Usage         UsageRepository
	Residents     ResidentRepository
	Attendings    AttendingRepository
	Conferences   ConferenceRepository
	VSPSessions   VSPRepository
	Users         UserRepository

	// Ping reports backend health; Close releases it. Both may be nil.
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
