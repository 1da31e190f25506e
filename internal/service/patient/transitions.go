package patient

import (
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

// allowedFrom lists, per target status, the statuses it may be entered from.
// Leaving completed is only possible through Archive and Restore.
var allowedFrom = map[model.PatientStatus][]model.PatientStatus{
	model.PatientStatusPending:   {model.PatientStatusConfirmed, model.PatientStatusDeficient},
	model.PatientStatusConfirmed: {model.PatientStatusPending, model.PatientStatusDeficient},
	model.PatientStatusDeficient: {model.PatientStatusPending, model.PatientStatusConfirmed},
	model.PatientStatusInOR:      {model.PatientStatusPending, model.PatientStatusConfirmed, model.PatientStatusDeficient},
	model.PatientStatusCompleted: {
		model.PatientStatusPending,
		model.PatientStatusConfirmed,
		model.PatientStatusDeficient,
		model.PatientStatusInOR,
	},
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to model.PatientStatus) bool {
	for _, st := range allowedFrom[to] {
		if st == from {
			return true
		}
	}
	return false
}

func (s *Service) checkTransition(from, to model.PatientStatus) error {
	if !to.Valid() {
		return invalidStatus(to)
	}
	if !s.cfg.EnforceTransitions || CanTransition(from, to) {
		return nil
	}
	return errors.InvalidArgument("Cannot change status from '%s' to '%s'", from, to)
}
