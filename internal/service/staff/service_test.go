package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

func newTestService() *Service {
	return NewService(memory.NewResidentRepository(), memory.NewAttendingRepository())
}

func TestCreateResidentRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	res, err := s.CreateResident(ctx, "admin@umn.edu", &model.ResidentRequest{Name: "A", Email: "a@umn.edu", Hospital: "UMN"})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	assert.Equal(t, "admin@umn.edu", res.CreatedBy)

	_, err = s.CreateResident(ctx, "admin@umn.edu", &model.ResidentRequest{Name: "B", Email: "a@umn.edu", Hospital: "UMN"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	assert.Equal(t, "Resident with this email already exists", errors.PublicMessage(err))
}

func TestActiveResidentsCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.CreateResident(ctx, "x", &model.ResidentRequest{Name: "A", Email: "a@umn.edu", Hospital: "UMN"})
	require.NoError(t, err)
	active, err := s.ActiveResidents(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	inactive := false
	b, err := s.CreateResident(ctx, "x", &model.ResidentRequest{Name: "B", Email: "b@umn.edu", Hospital: "UMN", IsActive: &inactive})
	require.NoError(t, err)
	active, _ = s.ActiveResidents(ctx)
	assert.Len(t, active, 1)

	require.NoError(t, s.UpdateResident(ctx, b.ID, &model.ResidentRequest{Name: "B", Email: "b@umn.edu", Hospital: "UMN"}))
	active, _ = s.ActiveResidents(ctx)
	assert.Len(t, active, 2)

	require.NoError(t, s.DeleteResident(ctx, b.ID))
	active, _ = s.ActiveResidents(ctx)
	assert.Len(t, active, 1)
}

func TestStaffNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	err := s.DeleteResident(ctx, "missing")
	assert.Equal(t, "Resident not found", errors.PublicMessage(err))

	err = s.UpdateAttending(ctx, "missing", &model.AttendingRequest{Name: "Dr X", Hospital: "UMN"})
	assert.Equal(t, "Attending not found", errors.PublicMessage(err))
}

func TestAttendingsFilterByHospital(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.CreateAttending(ctx, "x", &model.AttendingRequest{Name: "Dr A", Hospital: "UMN"})
	require.NoError(t, err)
	_, err = s.CreateAttending(ctx, "x", &model.AttendingRequest{Name: "Dr B", Hospital: "Gillette"})
	require.NoError(t, err)

	got, err := s.ListAttendings(ctx, model.StaffFilter{Hospital: "Gillette", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr B", got[0].Name)
}
