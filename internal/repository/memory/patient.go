package memory

import (
	"context"
	"sort"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type PatientRepository struct {
	rows *table[model.Patient]
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{rows: newTable((*model.Patient).Clone)}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	return r.rows.insert(patient.MRN, patient, nil)
}

func (r *PatientRepository) Get(_ context.Context, mrn string) (*model.Patient, error) {
	return r.rows.get(mrn)
}

func (r *PatientRepository) List(_ context.Context) ([]*model.Patient, error) {
	return r.rows.filter(nil), nil
}

func (r *PatientRepository) Replace(_ context.Context, patient *model.Patient, expectedVersion int64) error {
	_, err := r.rows.update(patient.MRN, func(stored *model.Patient) error {
		if stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		*stored = *patient.Clone()
		stored.Version = expectedVersion + 1
		return nil
	})
	if err != nil {
		return err
	}
	patient.Version = expectedVersion + 1
	return nil
}

func (r *PatientRepository) Delete(_ context.Context, mrn string) error {
	return r.rows.delete(mrn)
}

func (r *PatientRepository) ListCompletedBefore(_ context.Context, cutoff time.Time) ([]*model.Patient, error) {
	return r.rows.filter(func(p *model.Patient) bool {
		return p.Status == model.PatientStatusCompleted && p.CompletedAt != nil && p.CompletedAt.Before(cutoff)
	}), nil
}

type ArchiveRepository struct {
	rows *table[model.ArchivedPatient]
}

func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{rows: newTable(func(a *model.ArchivedPatient) *model.ArchivedPatient {
		c := *a
		c.Patient = *a.Patient.Clone()
		return &c
	})}
}

func (r *ArchiveRepository) Create(_ context.Context, patient *model.ArchivedPatient) error {
	return r.rows.insert(patient.MRN, patient, nil)
}

func (r *ArchiveRepository) Get(_ context.Context, mrn string) (*model.ArchivedPatient, error) {
	return r.rows.get(mrn)
}

func (r *ArchiveRepository) List(_ context.Context) ([]*model.ArchivedPatient, error) {
	out := r.rows.filter(nil)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArchivedAt.After(out[j].ArchivedAt)
	})
	return out, nil
}

func (r *ArchiveRepository) Delete(_ context.Context, mrn string) error {
	return r.rows.delete(mrn)
}
