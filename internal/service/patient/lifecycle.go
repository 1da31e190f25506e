package patient

import (
	"context"
	"fmt"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

func (s *Service) TransitionToOR(ctx context.Context, actor, mrn string) (*model.StatusChangeResponse, error) {
	var changed bool
	p, err := s.mutate(ctx, mrn, func(p *model.Patient) error {
		changed = false
		if p.Status == model.PatientStatusInOR {
			return errUnchanged
		}
		if err := s.checkTransition(p.Status, model.PatientStatusInOR); err != nil {
			return err
		}
		from := p.Status
		p.Status = model.PatientStatusInOR
		p.ActivityLog = append(p.ActivityLog, s.activity.SentToOR(actor, from))
		s.stampUpdate(p, actor)
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, EventStatusChanged, mrn, actor, p.Status, "")
		s.notifyStaff(ctx, actor, model.Notification{
			Type:    model.NotificationCaseUpdated,
			Title:   fmt.Sprintf("Patient in OR: %s", p.PatientName),
			Message: fmt.Sprintf("Patient %s (MRN: %s) has been sent to the operating room.", p.PatientName, mrn),
			CaseMRN: mrn,
		})
	}

	return &model.StatusChangeResponse{
		Message: "Patient sent to OR successfully",
		Status:  model.PatientStatusInOR,
	}, nil
}

// MarkComplete stamps completed_at, the anchor for auto-archival. Completing
// an already completed patient keeps the first anchor.
func (s *Service) MarkComplete(ctx context.Context, actor, mrn string) (*model.StatusChangeResponse, error) {
	var changed bool
	p, err := s.mutate(ctx, mrn, func(p *model.Patient) error {
		changed = false
		if p.Status == model.PatientStatusCompleted {
			return errUnchanged
		}
		if err := s.checkTransition(p.Status, model.PatientStatusCompleted); err != nil {
			return err
		}
		from := p.Status
		now := s.activity.Now()
		p.Status = model.PatientStatusCompleted
		p.CompletedAt = &now
		p.ActivityLog = append(p.ActivityLog, s.activity.ProcedureCompleted(actor, from))
		s.stampUpdate(p, actor)
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, EventProcedureCompleted, mrn, actor, p.Status, "")
		s.notifyStaff(ctx, actor, model.Notification{
			Type:    model.NotificationCaseUpdated,
			Title:   fmt.Sprintf("Procedure Completed: %s", p.PatientName),
			Message: fmt.Sprintf("Procedure for %s (MRN: %s) has been marked as completed.", p.PatientName, mrn),
			CaseMRN: mrn,
		})
	}

	delay := s.cfg.AutoArchiveDelayHours
	return &model.StatusChangeResponse{
		Message:            "Procedure marked as complete",
		Status:             model.PatientStatusCompleted,
		CompletedAt:        p.CompletedAt,
		AutoArchiveInHours: &delay,
	}, nil
}

func (s *Service) notifyStaff(ctx context.Context, actor string, n model.Notification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.NotifyActiveStaff(ctx, actor, n); err != nil {
		s.logger.Warn().Err(err).Str("mrn", n.CaseMRN).Msg("Failed to notify staff")
	}
}
