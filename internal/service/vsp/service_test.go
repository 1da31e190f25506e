package vsp

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/internal/calendar"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

const actor = "chief@umn.edu"

type fakeProvider struct {
	created   []*calendar.Event
	deleted   []string
	deleteErr error
}

func (f *fakeProvider) CreateEvent(_ context.Context, _ string, e *calendar.Event) (*calendar.ProviderEvent, error) {
	f.created = append(f.created, e)
	return &calendar.ProviderEvent{ID: "evt-1"}, nil
}

func (f *fakeProvider) UpdateEvent(context.Context, string, string, *calendar.Event) (*calendar.ProviderEvent, error) {
	return nil, stderrors.New("not supported")
}

func (f *fakeProvider) DeleteEvent(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func request() *model.VSPSessionRequest {
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	return &model.VSPSessionRequest{
		PatientName: "Jane Doe",
		MRN:         "M1",
		Procedure:   "Mandible reconstruction",
		Start:       start,
		End:         start.Add(time.Hour),
		Attendees:   []string{"a@umn.edu"},
	}
}

func TestCreateStoresEventID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	provider := &fakeProvider{}
	svc := NewService(store.VSPSessions, provider, "America/Chicago", nil, nil)

	resp, err := svc.Create(ctx, actor, request())
	require.NoError(t, err)
	assert.Equal(t, "VSP session created", resp.Message)
	assert.Equal(t, "evt-1", resp.VSPSession.CalendarEventID)
	assert.Equal(t, model.VSPStatusScheduled, resp.VSPSession.Status)

	require.Len(t, provider.created, 1)
	e := provider.created[0]
	assert.Equal(t, "VSP Session: Jane Doe - Mandible reconstruction", e.Title)
	assert.Equal(t, "Virtual - See link in description", e.Location)
	assert.Equal(t, "America/Chicago", e.TimeZone)
	assert.Contains(t, e.Description, "Attending: N/A")

	stored, err := svc.Get(ctx, resp.VSPSession.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", stored.CalendarEventID)
}

func TestCreateRecordsCalendarError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := metrics.NewNop()
	svc := NewService(store.VSPSessions, calendar.Unavailable{}, "America/Chicago", m, nil)

	resp, err := svc.Create(ctx, actor, request())
	require.NoError(t, err)
	assert.Empty(t, resp.VSPSession.CalendarEventID)
	assert.Equal(t, calendar.ErrProviderUnavailable.Error(), resp.VSPSession.CalendarError)

	stored, err := svc.Get(ctx, resp.VSPSession.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.ErrProviderUnavailable.Error(), stored.CalendarError)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalendarFailures.WithLabelValues("vsp_create")))
}

func TestDeleteIsBestEffortOnCalendar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	provider := &fakeProvider{deleteErr: stderrors.New("token expired")}
	svc := NewService(store.VSPSessions, provider, "America/Chicago", nil, nil)

	resp, err := svc.Create(ctx, actor, request())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actor, resp.VSPSession.ID))
	assert.Equal(t, []string{"evt-1"}, provider.deleted)

	_, err = svc.Get(ctx, resp.VSPSession.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, "VSP session not found", errors.PublicMessage(err))
	assert.True(t, errors.Is(svc.Delete(ctx, actor, resp.VSPSession.ID), errors.ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.VSPSessions, nil, "", nil, nil)

	early := request()
	late := request()
	late.Start = late.Start.Add(48 * time.Hour)
	late.End = late.End.Add(48 * time.Hour)
	_, err := svc.Create(ctx, actor, early)
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, late)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Start.After(list[1].Start))
}
