// Package calendar renders iCalendar invites and talks to external calendar providers.
package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"
)

const (
	productID = "-//OR Scheduler//umn.edu//"
	uidDomain = "orscheduler.umn.edu"
)

// Invite is a single VEVENT sent as a METHOD:REQUEST calendar.
type Invite struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	Organizer   string
	Attendees   []string

	// UID and Stamp default to values derived from the current time.
	UID   string
	Stamp time.Time
}

// RFC 5545 spells booleans in upper case; ics.WithRSVP emits "true".
var rsvpTrue = &ics.KeyValues{Key: string(ics.ParameterRsvp), Value: []string{"TRUE"}}

func (i *Invite) Bytes() []byte {
	stamp := i.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	uid := i.UID
	if uid == "" {
		uid = fmt.Sprintf("%d@%s", stamp.UnixNano(), uidDomain)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(uid)
	event.SetSummary(i.Title)
	event.SetDescription(i.Description)
	event.SetStartAt(i.Start)
	event.SetEndAt(i.End)
	event.SetDtStampTime(stamp)
	event.SetLocation(i.Location)
	event.SetStatus(ics.ObjectStatusConfirmed)
	if i.Organizer != "" {
		event.SetOrganizer(i.Organizer)
	}
	for _, a := range i.Attendees {
		if a == "" {
			continue
		}
		event.AddAttendee(a, ics.ParticipationRoleReqParticipant, rsvpTrue)
	}

	return []byte(cal.Serialize())
}

// Local parses a "2006-01-02" date and an optional "15:04" clock time in loc.
// An empty clock means 08:00.
func Local(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if clock == "" {
		clock = "08:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name, falling back to UTC for "".
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
