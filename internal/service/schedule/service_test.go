package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/internal/email"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/internal/service/invite"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const actor = "chief@umn.edu"

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

type recordingEmail struct {
	email.Disabled
	invites []*email.Invite
}

func (r *recordingEmail) SendInvite(_ context.Context, inv *email.Invite) (bool, error) {
	r.invites = append(r.invites, inv)
	return true, nil
}

func newService(t *testing.T, syncEnabled bool) (*Service, *fakeNotifier, *recordingEmail, *repository.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Users.Create(context.Background(), &model.User{ID: "u1", Email: actor, FullName: "Dr. Chief"}))
	n := &fakeNotifier{}
	mail := &recordingEmail{}
	sender := invite.NewSender(mail, syncEnabled, time.UTC, "", nil, nil)
	return NewService(store.Schedules, store.Users, n, sender, 0, nil), n, mail, store
}

func request() *model.ScheduleRequest {
	return &model.ScheduleRequest{
		PatientMRN:    "M1",
		PatientName:   "Jane Doe",
		Procedure:     "Palate repair",
		Staff:         "Dr. Smith",
		ScheduledDate: "2025-03-01",
		ScheduledTime: "07:30",
	}
}

func TestCreateAppliesDefaultsAndNotifies(t *testing.T) {
	svc, n, mail, _ := newService(t, false)

	s, err := svc.Create(context.Background(), actor, request())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, model.ScheduleStatusScheduled, s.Status)
	assert.Equal(t, model.PriorityMedium, s.Priority)
	assert.Equal(t, actor, s.CreatedBy)

	require.Len(t, n.sent, 1)
	assert.Equal(t, model.NotificationCaseAdded, n.sent[0].Type)
	assert.Equal(t, "New Case Added: Jane Doe", n.sent[0].Title)
	assert.Equal(t, "M1", n.sent[0].CaseMRN)
	assert.Contains(t, n.sent[0].Message, "A new case has been added by Dr. Chief:")
	assert.Contains(t, n.sent[0].Message, "Date: 2025-03-01")

	assert.Empty(t, mail.invites)
}

func TestCreateAddonMessage(t *testing.T) {
	svc, n, _, _ := newService(t, true)
	req := request()
	req.ScheduledDate = ""
	req.IsAddon = true

	_, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0].Message, "Date: Not scheduled (Add-on list)")
}

func TestCreateSendsInviteWhenSyncEnabled(t *testing.T) {
	svc, _, mail, _ := newService(t, true)

	_, err := svc.Create(context.Background(), actor, request())
	require.NoError(t, err)
	require.Len(t, mail.invites, 1)
	assert.Equal(t, actor, mail.invites[0].To)
	assert.Equal(t, "OR Case Scheduled: Jane Doe", mail.invites[0].Subject)
	assert.Contains(t, string(mail.invites[0].ICS), "Operating Room")

	req := request()
	req.IsAddon = true
	_, err = svc.Create(context.Background(), actor, req)
	require.NoError(t, err)
	assert.Len(t, mail.invites, 1)
}

func TestListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _, store := newService(t, false)
	s, err := svc.Create(ctx, actor, request())
	require.NoError(t, err)

	req := request()
	req.Priority = "high"
	require.NoError(t, svc.Update(ctx, s.ID, req))
	got, err := store.Schedules.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, actor, got.CreatedBy)

	_, err = store.Schedules.SetArchivedByMRN(ctx, "M1", true, time.Now())
	require.NoError(t, err)
	all, err := svc.List(ctx, repository.ScheduleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	active := false
	visible, err := svc.List(ctx, repository.ScheduleFilter{Archived: &active})
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, svc.Delete(ctx, s.ID))
	err = svc.Delete(ctx, s.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	err = svc.Update(ctx, s.ID, req)
	assert.Equal(t, "Schedule not found", errors.PublicMessage(err))
}
