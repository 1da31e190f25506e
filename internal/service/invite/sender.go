// Package invite emails calendar invites for scheduled cases and meetings.
package invite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/calendar"
	"github.com/drfrankproulx-cmd/OProom/internal/email"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

// Request describes one invite. Date is "2006-01-02", Time is an optional "15:04".
type Request struct {
	Operation   string
	To          string
	Cc          []string
	Subject     string
	Title       string
	Description string
	Location    string
	Date        string
	Time        string
	Duration    time.Duration
	Attendees   []string
}

type Sender struct {
	email   email.Service
	enabled bool
	loc     *time.Location
	from    string
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewSender returns a sender that is a no-op unless enabled is set.
func NewSender(svc email.Service, enabled bool, loc *time.Location, from string, m *metrics.Metrics, logger *zerolog.Logger) *Sender {
	if svc == nil {
		svc = email.Disabled{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Sender{email: svc, enabled: enabled, loc: loc, from: from, metrics: m, logger: logger}
}

func (s *Sender) Enabled() bool {
	return s != nil && s.enabled
}

// Send renders and mails the invite. Failures are logged and counted, and
// the returned bool reports whether a message actually went out.
func (s *Sender) Send(ctx context.Context, req Request) bool {
	if !s.Enabled() || req.Date == "" {
		return false
	}

	sent, err := s.send(ctx, req)
	if err != nil {
		s.metrics.CalendarFailures.WithLabelValues(req.Operation).Inc()
		s.logger.Warn().Err(err).
			Str("operation", req.Operation).
			Str("to", req.To).
			Msg("Failed to send calendar invite")
		return false
	}
	if sent {
		s.logger.Info().Str("operation", req.Operation).Str("to", req.To).Msg("Calendar invite sent")
	}
	return sent
}

func (s *Sender) send(ctx context.Context, req Request) (bool, error) {
	start, err := calendar.Local(req.Date, req.Time, s.loc)
	if err != nil {
		return false, err
	}

	organizer := s.from
	if organizer == "" {
		organizer = req.To
	}
	inv := &calendar.Invite{
		Title:       req.Title,
		Description: req.Description,
		Start:       start,
		End:         start.Add(req.Duration),
		Location:    req.Location,
		Organizer:   organizer,
		Attendees:   req.Attendees,
	}

	sent, err := s.email.SendInvite(ctx, &email.Invite{
		To:      req.To,
		Cc:      req.Cc,
		Subject: req.Subject,
		Body:    req.Description,
		ICS:     inv.Bytes(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to send %s invite: %w", req.Operation, err)
	}
	return sent, nil
}
