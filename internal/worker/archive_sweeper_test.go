package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/internal/service/patient"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	pkgworker "github.com/drfrankproulx-cmd/OProom/pkg/worker"
)

type stubSweeper struct {
	delays []int
	count  int
	err    error
}

func (s *stubSweeper) AutoArchiveSweep(_ context.Context, delayHours int) (int, error) {
	s.delays = append(s.delays, delayHours)
	return s.count, s.err
}

func TestArchiveSweepWorkerPassesDelay(t *testing.T) {
	s := &stubSweeper{count: 2}
	w := NewArchiveSweepWorker(s, 48, nil)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []int{48}, s.delays)
}

func TestArchiveSweepWorkerWrapsError(t *testing.T) {
	boom := errors.New("mongo down")
	w := NewArchiveSweepWorker(&stubSweeper{err: boom}, 48, nil)

	err := w.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "auto-archive sweep")
}

func TestArchiveSweepWorkerArchivesThroughProcessor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := patient.NewService(store, nil, nil, messaging.NopBroker{}, nil, nil, patient.Config{
		AutoArchiveDelayHours: 0,
		EnforceTransitions:    true,
	})

	_, err := svc.Create(ctx, "chief@umn.edu", &model.CreatePatientRequest{
		MRN:         "M1",
		PatientName: "Jane Roe",
		DOB:         "1980-02-01",
		Status:      model.PatientStatusCompleted,
	})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	w := NewArchiveSweepWorker(svc, 0, nil)
	p, err := pkgworker.NewProcessor(w.Run, pkgworker.ProcessorConfig{Name: "auto-archive", PollInterval: time.Hour}, nil)
	require.NoError(t, err)
	require.NoError(t, p.RunOnce(ctx))

	archived, err := svc.GetArchived(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, patient.SystemArchiver, archived.ArchivedBy)
}
