package calendar

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/pkg/circuitbreaker"
)

func TestInviteBytes(t *testing.T) {
	loc, err := LoadLocation("America/Chicago")
	require.NoError(t, err)
	start, err := Local("2025-03-14", "07:30", loc)
	require.NoError(t, err)

	invite := &Invite{
		Title:       "OR Case: Jane Doe - LeFort I",
		Description: "OR Surgical Case",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Location:    "Operating Room",
		Organizer:   "or@umn.edu",
		Attendees:   []string{"dr@umn.edu", ""},
		Stamp:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	raw := invite.Bytes()

	assert.Contains(t, string(raw), "METHOD:REQUEST")
	assert.Contains(t, string(raw), "PRODID:-//OR Scheduler//umn.edu//")
	assert.Contains(t, string(raw), "STATUS:CONFIRMED")
	assert.Contains(t, string(raw), "RSVP=TRUE")

	cal, err := ics.ParseCalendar(bytes.NewReader(raw))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "1740830400000000000@orscheduler.umn.edu", ev.Id())
	assert.Equal(t, "OR Case: Jane Doe - LeFort I", ev.GetProperty(ics.ComponentPropertySummary).Value)

	gotStart, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))
	assert.Equal(t, 12, gotStart.UTC().Hour())

	attendees := ev.Attendees()
	require.Len(t, attendees, 1)
	assert.Equal(t, "dr@umn.edu", attendees[0].Email())
	assert.Equal(t, []string{"REQ-PARTICIPANT"}, attendees[0].ICalParameters["ROLE"])
	assert.Equal(t, []string{"TRUE"}, attendees[0].ICalParameters["RSVP"])
}

func TestLocal(t *testing.T) {
	loc, err := LoadLocation("America/Chicago")
	require.NoError(t, err)

	got, err := Local("2025-07-01", "", loc)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())
	assert.Equal(t, loc, got.Location())

	_, err = Local("07/01/2025", "", loc)
	assert.Error(t, err)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
}

type failingProvider struct {
	Unavailable
	calls int
}

func (p *failingProvider) CreateEvent(ctx context.Context, owner string, event *Event) (*ProviderEvent, error) {
	p.calls++
	return p.Unavailable.CreateEvent(ctx, owner, event)
}

func TestBreakerProviderOpens(t *testing.T) {
	inner := &failingProvider{}
	p := NewBreakerProvider(inner, nil)

	for i := 0; i < 5; i++ {
		_, err := p.CreateEvent(context.Background(), "dr@umn.edu", &Event{})
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	}

	_, err := p.CreateEvent(context.Background(), "dr@umn.edu", &Event{})
	assert.True(t, errors.Is(err, circuitbreaker.ErrOpen))
	assert.Equal(t, 5, inner.calls)
}
