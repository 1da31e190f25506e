package patient

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

// SystemArchiver is recorded as archived_by for sweeps.
const SystemArchiver = "system_auto_archive"

// MaxDelayHours bounds sweep delays (ten years).
const MaxDelayHours = 10 * 365 * 24

func (s *Service) Archive(ctx context.Context, actor, mrn string) (*model.ArchiveResponse, error) {
	archived, err := s.moveToArchive(ctx, mrn, actor, model.ArchiveReasonManual, s.activity.Archived(actor))
	if err != nil {
		return nil, err
	}
	return &model.ArchiveResponse{
		Message:    "Patient archived successfully",
		MRN:        mrn,
		ArchivedAt: archived.ArchivedAt,
	}, nil
}

// moveToArchive copies the active patient into the archive, flags its
// schedules and removes the active record. Each step tolerates a previous
// run having stopped partway.
func (s *Service) moveToArchive(ctx context.Context, mrn, by, reason string, entry model.ActivityEntry) (*model.ArchivedPatient, error) {
	p, err := s.patients.Get(ctx, mrn)
	if err != nil {
		return nil, patientErr(err)
	}

	archived, err := s.archive.Get(ctx, mrn)
	switch {
	case err == nil && p.ExtendsLog(archived.ActivityLog):
		// An interrupted restore left edits newer than this copy.
		s.logger.Warn().Str("mrn", mrn).Msg("Archived copy is older than the active patient, replacing it")
		if err := s.archive.Delete(ctx, mrn); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to remove stale archived patient: %w", err)
		}
		if archived, err = s.insertArchived(ctx, p, by, reason, entry); err != nil {
			return nil, err
		}
	case err == nil:
		s.logger.Warn().Str("mrn", mrn).Msg("Patient already in archive, finishing an interrupted move")
	case stderrors.Is(err, repository.ErrNotFound):
		if archived, err = s.insertArchived(ctx, p, by, reason, entry); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	s.flagSchedules(ctx, mrn, true, archived.ArchivedAt)

	if err := s.patients.Delete(ctx, mrn); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to remove active patient: %w", err)
	}

	s.metrics.PatientsArchived.WithLabelValues(archived.ArchivedReason).Inc()
	s.publish(ctx, EventArchived, mrn, by, "", archived.ArchivedReason)
	s.logger.Info().
		Str("mrn", mrn).
		Str("archived_by", by).
		Str("reason", archived.ArchivedReason).
		Msg("Patient archived")
	return archived, nil
}

// insertArchived writes a fresh archived copy of p. When another mover inserted
// first, its copy is returned instead.
func (s *Service) insertArchived(ctx context.Context, p *model.Patient, by, reason string, entry model.ActivityEntry) (*model.ArchivedPatient, error) {
	archived := &model.ArchivedPatient{
		Patient:        *p.Clone(),
		ArchivedAt:     s.activity.Now(),
		ArchivedBy:     by,
		ArchivedReason: reason,
	}
	archived.ActivityLog = append(archived.ActivityLog, entry)

	if err := s.archive.Create(ctx, archived); err != nil {
		if !stderrors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to archive patient: %w", err)
		}
		existing, err := s.archive.Get(ctx, p.MRN)
		if err != nil {
			return nil, fmt.Errorf("failed to read archived patient: %w", err)
		}
		return existing, nil
	}
	return archived, nil
}

// Restore moves an archived patient back to the active collection as pending.
func (s *Service) Restore(ctx context.Context, actor, mrn string) (*model.RestoreResponse, error) {
	archived, err := s.archive.Get(ctx, mrn)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Archived patient", err)
		}
		return nil, fmt.Errorf("failed to read archived patient: %w", err)
	}

	restored := archived.Patient.Clone()
	restored.ActivityLog = append(restored.ActivityLog, s.activity.Restored(actor))
	restored.Status = model.PatientStatusPending
	s.stampUpdate(restored, actor)

	if err := s.patients.Create(ctx, restored); err != nil {
		if !stderrors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to restore patient: %w", err)
		}
		active, gerr := s.patients.Get(ctx, mrn)
		if gerr != nil {
			return nil, fmt.Errorf("failed to read active patient: %w", gerr)
		}
		prefix := len(archived.ActivityLog)
		if !active.ExtendsLog(archived.ActivityLog) || !active.RestoredAfter(prefix) {
			return nil, errors.Conflict(fmt.Sprintf("Patient %s is both active and archived; re-run archive to complete the move", mrn), err)
		}
		s.logger.Warn().Str("mrn", mrn).Msg("Patient already restored, finishing an interrupted move")
	}

	s.flagSchedules(ctx, mrn, false, time.Time{})

	if err := s.archive.Delete(ctx, mrn); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to remove archived patient: %w", err)
	}

	s.metrics.PatientsRestored.Inc()
	s.publish(ctx, EventRestored, mrn, actor, model.PatientStatusPending, "")
	s.logger.Info().Str("mrn", mrn).Str("restored_by", actor).Msg("Patient restored")

	return &model.RestoreResponse{Message: "Patient restored successfully", MRN: mrn}, nil
}

// AutoArchiveSweep archives completed patients whose completed_at is older
// than delayHours. Per-patient failures are logged and skipped.
func (s *Service) AutoArchiveSweep(ctx context.Context, delayHours int) (int, error) {
	if delayHours < 0 {
		return 0, errors.InvalidArgument("delay_hours must not be negative")
	}
	if delayHours > MaxDelayHours {
		return 0, errors.InvalidArgument("delay_hours must not exceed %d", MaxDelayHours)
	}

	start := time.Now()
	defer func() {
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := s.activity.Now().Add(-time.Duration(delayHours) * time.Hour)
	candidates, err := s.patients.ListCompletedBefore(ctx, cutoff)
	if err != nil {
		s.metrics.SweepRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to list completed patients: %w", err)
	}

	reason := model.AutoArchiveReason(delayHours)
	count := 0
	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			s.metrics.SweepRuns.WithLabelValues("canceled").Inc()
			return count, err
		}

		_, err := s.moveToArchive(ctx, p.MRN, SystemArchiver, reason, s.activity.AutoArchived(delayHours))
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				// Lost a race with another sweeper or a manual archive.
				s.logger.Debug().Str("mrn", p.MRN).Msg("Patient already archived")
				continue
			}
			s.logger.Error().Err(err).Str("mrn", p.MRN).Msg("Failed to auto-archive patient")
			continue
		}
		count++
	}

	s.metrics.SweepRuns.WithLabelValues("success").Inc()
	if count > 0 {
		s.logger.Info().Int("archived_count", count).Int("delay_hours", delayHours).Msg("Auto-archive sweep finished")
	}
	return count, nil
}

func (s *Service) ListArchived(ctx context.Context) ([]*model.ArchivedPatient, error) {
	out, err := s.archive.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived patients: %w", err)
	}
	return out, nil
}

func (s *Service) GetArchived(ctx context.Context, mrn string) (*model.ArchivedPatient, error) {
	p, err := s.archive.Get(ctx, mrn)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Archived patient", err)
		}
		return nil, fmt.Errorf("failed to read archived patient: %w", err)
	}
	return p, nil
}

// flagSchedules is best effort: a failure is logged and counted, never returned.
func (s *Service) flagSchedules(ctx context.Context, mrn string, archived bool, at time.Time) {
	if s.schedules == nil {
		return
	}
	n, err := s.schedules.SetArchivedByMRN(ctx, mrn, archived, at)
	if err != nil {
		s.metrics.ScheduleFlagFailures.Inc()
		s.logger.Error().Err(err).
			Str("mrn", mrn).
			Bool("archived", archived).
			Msg("Failed to update schedule archive flags")
		return
	}
	s.logger.Debug().Str("mrn", mrn).Int64("schedules", n).Bool("archived", archived).Msg("Schedule archive flags updated")
}
