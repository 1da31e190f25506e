package patient

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/internal/service/activity"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

const actor = "dr.smith@umn.edu"

type recordedUsage struct {
	itemType model.UsageItemType
	value    string
}

type fakeUsage struct {
	mu    sync.Mutex
	calls []recordedUsage
}

func (f *fakeUsage) Track(_ context.Context, _ string, itemType model.UsageItemType, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedUsage{itemType, value})
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (f *fakeNotifier) NotifyActiveStaff(_ context.Context, _ string, n model.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return 1, nil
}

type fixture struct {
	svc      *Service
	store    *repository.Store
	usage    *fakeUsage
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		usage:    &fakeUsage{},
		notifier: &fakeNotifier{},
		metrics:  metrics.NewNop(),
	}
	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f.clock = &clock
	f.svc = NewService(store, f.usage, f.notifier, nil, f.metrics, nil, Config{
		AutoArchiveDelayHours: 48,
		EnforceTransitions:    true,
	}).WithRecorder(activity.NewRecorderWithClock(func() time.Time {
		*f.clock = f.clock.Add(time.Millisecond)
		return *f.clock
	}))
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) create(t *testing.T, mrn string) *model.Patient {
	t.Helper()
	p, err := f.svc.Create(context.Background(), actor, &model.CreatePatientRequest{
		MRN:           mrn,
		PatientName:   "Jane Doe",
		DOB:           "2010-02-03",
		Diagnosis:     "Cleft palate",
		ProcedureCode: "42200",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) logLen(t *testing.T, mrn string) int {
	t.Helper()
	p, err := f.svc.Get(context.Background(), mrn)
	require.NoError(t, err)
	return len(p.ActivityLog)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "M1")

	assert.Equal(t, model.PatientStatusPending, p.Status)
	assert.Equal(t, model.PrepChecklist{}, p.PrepChecklist)
	assert.Empty(t, p.Comments)
	require.Len(t, p.ActivityLog, 1)
	assert.Equal(t, model.ActionCreated, p.ActivityLog[0].Action)
	assert.Equal(t, "Patient record created", p.ActivityLog[0].Details)
	assert.Equal(t, []recordedUsage{
		{model.UsageDiagnosis, "Cleft palate"},
		{model.UsageCPTCode, "42200"},
	}, f.usage.calls)

	stored, err := f.svc.Get(context.Background(), "M1")
	require.NoError(t, err)
	assert.NotNil(t, stored.Comments)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, actor, &model.CreatePatientRequest{MRN: "M1"})
	assert.True(t, errors.Is(err, errors.ErrUnprocessable))

	_, err = f.svc.Create(ctx, actor, &model.CreatePatientRequest{MRN: "M1", PatientName: "A", DOB: "x", Status: "archived"})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestCreateRejectsMRNInEitherCollection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	_, err := f.svc.Create(ctx, actor, &model.CreatePatientRequest{MRN: "M1", PatientName: "B", DOB: "x"})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = f.svc.Archive(ctx, actor, "M1")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, actor, &model.CreatePatientRequest{MRN: "M1", PatientName: "B", DOB: "x"})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	assert.Contains(t, errors.PublicMessage(err), "archived")
}

func TestUpdateDiff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")
	f.usage.calls = nil

	name := "Jane Q. Doe"
	diagnosis := "Cleft palate"
	status := model.PatientStatusConfirmed
	p, err := f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{
		PatientName: &name,
		Diagnosis:   &diagnosis,
		Status:      &status,
	})
	require.NoError(t, err)
	require.Len(t, p.ActivityLog, 2)
	assert.Equal(t, "patient_name: Jane Doe → Jane Q. Doe, status: pending → confirmed", p.ActivityLog[1].Details)
	assert.Equal(t, actor, p.UpdatedBy)
	assert.Empty(t, f.usage.calls, "unchanged diagnosis is not tracked")

	// No changes, no entry.
	p, err = f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{PatientName: &name})
	require.NoError(t, err)
	assert.Len(t, p.ActivityLog, 2)

	code := "21141"
	p, err = f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{ProcedureCode: &code})
	require.NoError(t, err)
	assert.Equal(t, "21141", p.ProcedureCode)
	assert.Len(t, p.ActivityLog, 2)
	assert.Equal(t, []recordedUsage{{model.UsageCPTCode, "21141"}}, f.usage.calls)

	_, err = f.svc.Update(ctx, actor, "nope", &model.UpdatePatientRequest{PatientName: &name})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")
	_, err := f.svc.MarkComplete(ctx, actor, "M1")
	require.NoError(t, err)

	pending := model.PatientStatusPending
	_, err = f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{Status: &pending})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	archived := model.PatientStatusArchived
	_, err = f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{Status: &archived})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to model.PatientStatus
		ok       bool
	}{
		{model.PatientStatusPending, model.PatientStatusConfirmed, true},
		{model.PatientStatusDeficient, model.PatientStatusInOR, true},
		{model.PatientStatusPending, model.PatientStatusCompleted, true},
		{model.PatientStatusInOR, model.PatientStatusCompleted, true},
		{model.PatientStatusInOR, model.PatientStatusPending, false},
		{model.PatientStatusCompleted, model.PatientStatusInOR, false},
		{model.PatientStatusCompleted, model.PatientStatusPending, false},
		{model.PatientStatusPending, model.PatientStatusArchived, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestTransitionsNotEnforced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.cfg.EnforceTransitions = false
	f.create(t, "M1")
	_, err := f.svc.MarkComplete(ctx, actor, "M1")
	require.NoError(t, err)

	pending := model.PatientStatusPending
	p, err := f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusPending, p.Status)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Users.Create(ctx, &model.User{ID: "u1", Email: actor, FullName: "Dr. Smith"}))
	f.create(t, "M1")

	c, err := f.svc.AddComment(ctx, actor, "M1", "Needs updated CT before surgery")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", c.CreatedByName)

	p, _ := f.svc.Get(ctx, "M1")
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "Added comment: Needs updated CT before surgery...", p.ActivityLog[1].Details)

	_, err = f.svc.AddComment(ctx, actor, "M1", "   ")
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	_, err = f.svc.AddComment(ctx, actor, "M404", "x")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateChecklistItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	resp, err := f.svc.UpdateChecklistItem(ctx, actor, "M1", model.ChecklistLabTests, true)
	require.NoError(t, err)
	assert.Equal(t, "Checklist updated successfully", resp.Message)

	p, _ := f.svc.Get(ctx, "M1")
	assert.True(t, p.PrepChecklist.LabTests)
	assert.Equal(t, "Updated Lab Tests: checked", p.ActivityLog[1].Details)
	assert.NotNil(t, p.UpdatedAt)

	before := p.PrepChecklist
	_, err = f.svc.UpdateChecklistItem(ctx, actor, "M1", "blood_type", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	assert.Equal(t, "Invalid checklist item. Must be one of: xrays, lab_tests, insurance_approval, medical_optimization", errors.PublicMessage(err))

	p, _ = f.svc.Get(ctx, "M1")
	assert.Equal(t, before, p.PrepChecklist)
	assert.Len(t, p.ActivityLog, 2)

	_, err = f.svc.UpdateChecklistItem(ctx, actor, "M404", model.ChecklistXRays, true)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTransitionToOR(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	resp, err := f.svc.TransitionToOR(ctx, actor, "M1")
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusInOR, resp.Status)

	p, _ := f.svc.Get(ctx, "M1")
	assert.Equal(t, "Patient sent to OR - Status changed from 'pending' to 'in_or'", p.ActivityLog[1].Details)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Patient in OR: Jane Doe", f.notifier.sent[0].Title)
	assert.Equal(t, "Patient Jane Doe (MRN: M1) has been sent to the operating room.", f.notifier.sent[0].Message)

	// Repeating is a no-op.
	_, err = f.svc.TransitionToOR(ctx, actor, "M1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.logLen(t, "M1"))
	assert.Len(t, f.notifier.sent, 1)

	_, err = f.svc.MarkComplete(ctx, actor, "M1")
	require.NoError(t, err)
	_, err = f.svc.TransitionToOR(ctx, actor, "M1")
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestMarkCompleteKeepsFirstAnchor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	first, err := f.svc.MarkComplete(ctx, actor, "M1")
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	require.NotNil(t, first.AutoArchiveInHours)
	assert.Equal(t, 48, *first.AutoArchiveInHours)

	f.advance(time.Hour)
	second, err := f.svc.MarkComplete(ctx, actor, "M1")
	require.NoError(t, err)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))
	assert.Equal(t, 2, f.logLen(t, "M1"))

	p, _ := f.svc.Get(ctx, "M1")
	assert.Equal(t, "Procedure completed - Status changed from 'pending' to 'completed'", p.ActivityLog[1].Details)
	assert.Equal(t, "Procedure Completed: Jane Doe", f.notifier.sent[0].Title)
}

type conflictingPatients struct {
	repository.PatientRepository
	failures int
}

func (c *conflictingPatients) Replace(ctx context.Context, p *model.Patient, expected int64) error {
	if c.failures > 0 {
		c.failures--
		return repository.ErrVersionConflict
	}
	return c.PatientRepository.Replace(ctx, p, expected)
}

func TestMutateRetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")
	repo := &conflictingPatients{PatientRepository: f.store.Patients, failures: 2}
	f.svc.patients = repo

	_, err := f.svc.UpdateChecklistItem(ctx, actor, "M1", model.ChecklistXRays, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.logLen(t, "M1"))

	repo.failures = maxWriteAttempts
	_, err = f.svc.UpdateChecklistItem(ctx, actor, "M1", model.ChecklistXRays, false)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.True(t, stderrors.Is(err, repository.ErrVersionConflict))
	assert.Equal(t, 2, f.logLen(t, "M1"))
}

func TestActivityLogGrowsByOnePerOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	steps := []func() error{
		func() error { _, err := f.svc.AddComment(ctx, actor, "M1", "note"); return err },
		func() error {
			_, err := f.svc.UpdateChecklistItem(ctx, actor, "M1", model.ChecklistXRays, true)
			return err
		},
		func() error {
			s := model.PatientStatusDeficient
			_, err := f.svc.Update(ctx, actor, "M1", &model.UpdatePatientRequest{Status: &s})
			return err
		},
		func() error { _, err := f.svc.TransitionToOR(ctx, actor, "M1"); return err },
		func() error { _, err := f.svc.MarkComplete(ctx, actor, "M1"); return err },
	}
	for i, step := range steps {
		before := f.logLen(t, "M1")
		require.NoError(t, step(), "step %d", i)
		assert.Equal(t, before+1, f.logLen(t, "M1"), "step %d", i)
	}
}

func TestMetricsAreRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "M1")

	_, err := f.svc.Archive(ctx, actor, "M1")
	require.NoError(t, err)
	_, err = f.svc.Restore(ctx, actor, "M1")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PatientsArchived.WithLabelValues(model.ArchiveReasonManual)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PatientsRestored))
}
