package schedule

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/service/invite"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const defaultORDuration = 2 * time.Hour

// StaffNotifier fans a notification out to the active residents.
type StaffNotifier interface {
	NotifyActiveStaff(ctx context.Context, actor string, n model.Notification) (int, error)
}

type ScheduleServicer interface {
	Create(ctx context.Context, actor string, req *model.ScheduleRequest) (*model.Schedule, error)
	List(ctx context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error)
	Update(ctx context.Context, id string, req *model.ScheduleRequest) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo       repository.ScheduleRepository
	users      repository.UserRepository
	notifier   StaffNotifier
	invites    *invite.Sender
	orDuration time.Duration
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewService(repo repository.ScheduleRepository, users repository.UserRepository, notifier StaffNotifier,
	invites *invite.Sender, orDuration time.Duration, logger *zerolog.Logger) *Service {
	if orDuration <= 0 {
		orDuration = defaultORDuration
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		repo:       repo,
		users:      users,
		notifier:   notifier,
		invites:    invites,
		orDuration: orDuration,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor string, req *model.ScheduleRequest) (*model.Schedule, error) {
	schedule := &model.Schedule{ID: model.NewID()}
	req.Apply(schedule)
	schedule.Stamp(actor, s.now())

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.notifyCaseAdded(ctx, actor, schedule)

	if !schedule.IsAddon {
		s.invites.Send(ctx, invite.Request{
			Operation:   "schedule",
			To:          actor,
			Subject:     fmt.Sprintf("OR Case Scheduled: %s", schedule.PatientName),
			Title:       fmt.Sprintf("OR Case: %s - %s", schedule.PatientName, schedule.Procedure),
			Description: caseDescription(schedule, actor),
			Location:    "Operating Room",
			Date:        schedule.ScheduledDate,
			Time:        schedule.ScheduledTime,
			Duration:    s.orDuration,
			Attendees:   []string{actor},
		})
	}

	s.logger.Info().
		Str("schedule_id", schedule.ID).
		Str("mrn", schedule.PatientMRN).
		Bool("addon", schedule.IsAddon).
		Msg("Schedule created")
	return schedule, nil
}

func (s *Service) notifyCaseAdded(ctx context.Context, actor string, schedule *model.Schedule) {
	if s.notifier == nil {
		return
	}
	date := schedule.ScheduledDate
	if date == "" {
		date = "Not scheduled (Add-on list)"
	}
	message := strings.Join([]string{
		fmt.Sprintf("A new case has been added by %s:", s.displayName(ctx, actor)),
		"",
		fmt.Sprintf("Patient: %s (MRN: %s)", schedule.PatientName, schedule.PatientMRN),
		fmt.Sprintf("Procedure: %s", schedule.Procedure),
		fmt.Sprintf("Attending: %s", schedule.Staff),
		fmt.Sprintf("Status: %s", schedule.Status),
		fmt.Sprintf("Date: %s", date),
		"",
		"Please review and complete any necessary prep tasks.",
	}, "\n")

	_, err := s.notifier.NotifyActiveStaff(ctx, actor, model.Notification{
		Type:    model.NotificationCaseAdded,
		Title:   fmt.Sprintf("New Case Added: %s", schedule.PatientName),
		Message: message,
		CaseMRN: schedule.PatientMRN,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("mrn", schedule.PatientMRN).Msg("Failed to notify staff of new case")
	}
}

func caseDescription(schedule *model.Schedule, actor string) string {
	return strings.Join([]string{
		"OR Surgical Case",
		"",
		fmt.Sprintf("Patient: %s (MRN: %s)", schedule.PatientName, schedule.PatientMRN),
		fmt.Sprintf("Procedure: %s", schedule.Procedure),
		fmt.Sprintf("Attending Surgeon: %s", schedule.Staff),
		fmt.Sprintf("Status: %s", schedule.Status),
		"",
		fmt.Sprintf("Scheduled by: %s", actor),
	}, "\n")
}

func (s *Service) displayName(ctx context.Context, email string) string {
	if s.users == nil {
		return email
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || u.FullName == "" {
		return email
	}
	return u.FullName
}

func (s *Service) List(ctx context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Update replaces the editable fields. Archive flags and audit fields are kept.
func (s *Service) Update(ctx context.Context, id string, req *model.ScheduleRequest) error {
	schedule, err := s.repo.Get(ctx, id)
	if err != nil {
		return notFound(err)
	}
	req.Apply(schedule)
	if err := s.repo.Update(ctx, schedule); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Schedule", err)
	}
	return fmt.Errorf("failed to access schedule: %w", err)
}
