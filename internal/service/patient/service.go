package patient

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/service/activity"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
	"github.com/drfrankproulx-cmd/OProom/pkg/validator"
)

const maxWriteAttempts = 3

// Lifecycle event types published on messaging.ChannelPatientLifecycle.
const (
	EventCreated            = "patient.created"
	EventUpdated            = "patient.updated"
	EventStatusChanged      = "patient.status_changed"
	EventProcedureCompleted = "patient.procedure_completed"
	EventArchived           = "patient.archived"
	EventRestored           = "patient.restored"
)

// errUnchanged aborts a mutation that has nothing to write.
var errUnchanged = stderrors.New("patient unchanged")

type Config struct {
	AutoArchiveDelayHours int
	EnforceTransitions    bool
}

// UsageTracker records diagnosis and CPT entries for suggestions.
type UsageTracker interface {
	Track(ctx context.Context, user string, itemType model.UsageItemType, value string) error
}

// StaffNotifier fans a notification out to active staff except the actor.
type StaffNotifier interface {
	NotifyActiveStaff(ctx context.Context, actor string, n model.Notification) (int, error)
}

type PatientServicer interface {
	Create(ctx context.Context, actor string, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, mrn string) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Update(ctx context.Context, actor, mrn string, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, mrn string) error
	AddComment(ctx context.Context, actor, mrn, text string) (*model.Comment, error)
	UpdateChecklistItem(ctx context.Context, actor, mrn, item string, checked bool) (*model.ChecklistUpdateResponse, error)

	TransitionToOR(ctx context.Context, actor, mrn string) (*model.StatusChangeResponse, error)
	MarkComplete(ctx context.Context, actor, mrn string) (*model.StatusChangeResponse, error)
	Archive(ctx context.Context, actor, mrn string) (*model.ArchiveResponse, error)
	Restore(ctx context.Context, actor, mrn string) (*model.RestoreResponse, error)
	AutoArchiveSweep(ctx context.Context, delayHours int) (int, error)
	ListArchived(ctx context.Context) ([]*model.ArchivedPatient, error)
	GetArchived(ctx context.Context, mrn string) (*model.ArchivedPatient, error)
	DelayHours() int
}

// Service owns every patient status, checklist and archive transition and
// guarantees each one lands in the activity log.
type Service struct {
	patients  repository.PatientRepository
	archive   repository.ArchiveRepository
	schedules repository.ScheduleRepository
	users     repository.UserRepository

	usage     UsageTracker
	notifier  StaffNotifier
	publisher *messaging.Publisher
	activity  *activity.Recorder
	validator validator.Validator
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	cfg       Config
}

func NewService(store *repository.Store, usage UsageTracker, notifier StaffNotifier, broker messaging.Broker,
	m *metrics.Metrics, logger *zerolog.Logger, cfg Config) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		patients:  store.Patients,
		archive:   store.Archive,
		schedules: store.Schedules,
		users:     store.Users,
		usage:     usage,
		notifier:  notifier,
		publisher: messaging.NewPublisher(broker, messaging.ChannelPatientLifecycle, logger),
		activity:  activity.NewRecorder(),
		validator: validator.New(),
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
	}
}

// WithRecorder swaps the activity recorder, mainly to pin the clock in tests.
func (s *Service) WithRecorder(r *activity.Recorder) *Service {
	s.activity = r
	return s
}

func (s *Service) DelayHours() int {
	return s.cfg.AutoArchiveDelayHours
}

func (s *Service) Create(ctx context.Context, actor string, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, errors.Unprocessable(err.Error(), err)
	}

	status := req.Status
	if status == "" {
		status = model.PatientStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	if err := s.ensureMRNFree(ctx, req.MRN); err != nil {
		return nil, err
	}

	now := s.activity.Now()
	patient := &model.Patient{
		MRN:           req.MRN,
		PatientName:   req.PatientName,
		DOB:           req.DOB,
		Diagnosis:     req.Diagnosis,
		Procedures:    req.Procedures,
		ProcedureCode: req.ProcedureCode,
		Attending:     req.Attending,
		Status:        status,
		Comments:      []model.Comment{},
		ActivityLog:   []model.ActivityEntry{s.activity.Created(actor)},
		CreatedBy:     actor,
		CreatedAt:     now,
	}
	if req.PrepChecklist != nil {
		patient.PrepChecklist = *req.PrepChecklist
	}
	if status == model.PatientStatusCompleted {
		patient.CompletedAt = &now
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.InvalidArgument("Patient with MRN %s already exists", req.MRN)
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.track(ctx, actor, model.UsageDiagnosis, patient.Diagnosis)
	s.track(ctx, actor, model.UsageCPTCode, patient.ProcedureCode)
	s.publish(ctx, EventCreated, patient.MRN, actor, patient.Status, "")

	return patient, nil
}

// ensureMRNFree rejects an MRN held by an active or an archived patient.
func (s *Service) ensureMRNFree(ctx context.Context, mrn string) error {
	if _, err := s.patients.Get(ctx, mrn); err == nil {
		return errors.InvalidArgument("Patient with MRN %s already exists", mrn)
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check patient: %w", err)
	}

	if _, err := s.archive.Get(ctx, mrn); err == nil {
		return errors.InvalidArgument("Patient with MRN %s is archived; restore it instead", mrn)
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check archive: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, mrn string) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, mrn)
	if err != nil {
		return nil, patientErr(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) Delete(ctx context.Context, mrn string) error {
	if err := s.patients.Delete(ctx, mrn); err != nil {
		return patientErr(err)
	}
	return nil
}

// Update applies the non-nil fields of req and logs one entry listing what changed.
func (s *Service) Update(ctx context.Context, actor, mrn string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, invalidStatus(*req.Status)
	}

	var before model.Patient
	p, err := s.mutate(ctx, mrn, func(p *model.Patient) error {
		before = *p
		var changes []activity.Change
		set := func(field string, dst *string, v *string) {
			if v == nil || *v == *dst {
				return
			}
			changes = append(changes, activity.Change{Field: field, Old: *dst, New: *v})
			*dst = *v
		}
		set("patient_name", &p.PatientName, req.PatientName)
		set("dob", &p.DOB, req.DOB)
		set("diagnosis", &p.Diagnosis, req.Diagnosis)
		set("procedures", &p.Procedures, req.Procedures)
		set("attending", &p.Attending, req.Attending)

		if req.Status != nil && *req.Status != p.Status {
			if err := s.checkTransition(p.Status, *req.Status); err != nil {
				return err
			}
			changes = append(changes, activity.Change{Field: "status", Old: string(p.Status), New: string(*req.Status)})
			p.Status = *req.Status
			if p.Status == model.PatientStatusCompleted {
				now := s.activity.Now()
				p.CompletedAt = &now
			}
		}

		// procedure_code is saved but, as before, left out of the diff.
		codeChanged := req.ProcedureCode != nil && *req.ProcedureCode != p.ProcedureCode
		if codeChanged {
			p.ProcedureCode = *req.ProcedureCode
		}

		entry, ok := s.activity.Updated(actor, changes)
		if !ok && !codeChanged {
			return errUnchanged
		}
		if ok {
			p.ActivityLog = append(p.ActivityLog, entry)
		}
		s.stampUpdate(p, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Diagnosis != before.Diagnosis {
		s.track(ctx, actor, model.UsageDiagnosis, p.Diagnosis)
	}
	if p.ProcedureCode != before.ProcedureCode {
		s.track(ctx, actor, model.UsageCPTCode, p.ProcedureCode)
	}
	if p.Version != before.Version {
		s.publish(ctx, EventUpdated, mrn, actor, p.Status, "")
	}
	return p, nil
}

func (s *Service) AddComment(ctx context.Context, actor, mrn, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.InvalidArgument("comment_text is required")
	}

	comment := model.Comment{
		CommentText: text,
		CreatedBy:   actor,
		CreatedAt:   s.activity.Now(),
	}
	if s.users != nil {
		if u, err := s.users.GetByEmail(ctx, actor); err == nil && u.FullName != "" {
			comment.CreatedByName = u.FullName
		}
	}

	_, err := s.mutate(ctx, mrn, func(p *model.Patient) error {
		p.Comments = append(p.Comments, comment)
		p.ActivityLog = append(p.ActivityLog, s.activity.CommentAdded(actor, text))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Service) UpdateChecklistItem(ctx context.Context, actor, mrn, item string, checked bool) (*model.ChecklistUpdateResponse, error) {
	if !model.IsChecklistItem(item) {
		return nil, errors.InvalidArgument("Invalid checklist item. Must be one of: %s", strings.Join(model.ChecklistItems, ", "))
	}

	_, err := s.mutate(ctx, mrn, func(p *model.Patient) error {
		p.PrepChecklist.Set(item, checked)
		p.ActivityLog = append(p.ActivityLog, s.activity.ChecklistUpdated(actor, item, checked))
		s.stampUpdate(p, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &model.ChecklistUpdateResponse{
		Message:       "Checklist updated successfully",
		ChecklistItem: item,
		Checked:       checked,
	}, nil
}

// mutate re-reads the patient and retries fn when a concurrent write wins the
// version check. fn returning errUnchanged ends the call without a write.
func (s *Service) mutate(ctx context.Context, mrn string, fn func(p *model.Patient) error) (*model.Patient, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		p, err := s.patients.Get(ctx, mrn)
		if err != nil {
			return nil, patientErr(err)
		}
		expected := p.Version

		if err := fn(p); err != nil {
			if stderrors.Is(err, errUnchanged) {
				return p, nil
			}
			return nil, err
		}

		err = s.patients.Replace(ctx, p, expected)
		if err == nil {
			return p, nil
		}
		if !stderrors.Is(err, repository.ErrVersionConflict) {
			return nil, patientErr(err)
		}
		s.logger.Debug().Str("mrn", mrn).Int("attempt", attempt).Msg("Patient write lost a version race, retrying")
	}
	return nil, errors.Conflict("Patient was modified concurrently, please retry", repository.ErrVersionConflict)
}

func (s *Service) stampUpdate(p *model.Patient, actor string) {
	now := s.activity.Now()
	p.UpdatedBy = actor
	p.UpdatedAt = &now
}

func (s *Service) track(ctx context.Context, actor string, itemType model.UsageItemType, value string) {
	if s.usage == nil || strings.TrimSpace(value) == "" {
		return
	}
	if err := s.usage.Track(ctx, actor, itemType, value); err != nil {
		s.logger.Warn().Err(err).Str("item_type", string(itemType)).Msg("Failed to track usage")
	}
}

func (s *Service) publish(ctx context.Context, eventType, mrn, actor string, status model.PatientStatus, reason string) {
	s.publisher.Publish(ctx, eventType, &model.PatientEvent{MRN: mrn, Actor: actor, Status: status, Reason: reason})
}

func patientErr(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Patient", err)
	}
	return fmt.Errorf("failed to access patient: %w", err)
}

func invalidStatus(status model.PatientStatus) error {
	names := make([]string, 0, len(model.PatientStatuses))
	for _, st := range model.PatientStatuses {
		names = append(names, string(st))
	}
	return errors.InvalidArgument("Invalid status %q. Must be one of: %s", status, strings.Join(names, ", "))
}
