package vsp

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/calendar"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

const location = "Virtual - See link in description"

type VSPServicer interface {
	Create(ctx context.Context, actor string, req *model.VSPSessionRequest) (*model.VSPSessionResponse, error)
	List(ctx context.Context) ([]*model.VSPSession, error)
	Get(ctx context.Context, id string) (*model.VSPSession, error)
	Delete(ctx context.Context, actor, id string) error
}

type Service struct {
	repo     repository.VSPRepository
	provider calendar.Provider
	timeZone string
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.VSPRepository, provider calendar.Provider, timeZone string,
	m *metrics.Metrics, logger *zerolog.Logger) *Service {
	if provider == nil {
		provider = calendar.Unavailable{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		repo:     repo,
		provider: provider,
		timeZone: timeZone,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores the session, then tries to put it on the actor's calendar.
// A calendar failure is recorded on the session and does not fail the call.
func (s *Service) Create(ctx context.Context, actor string, req *model.VSPSessionRequest) (*model.VSPSessionResponse, error) {
	session := &model.VSPSession{
		ID:             model.NewID(),
		PatientName:    req.PatientName,
		MRN:            req.MRN,
		Procedure:      req.Procedure,
		Attending:      req.Attending,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		ConferenceLink: req.ConferenceLink,
		Attendees:      append([]string{}, req.Attendees...),
		Notes:          req.Notes,
		Status:         model.VSPStatusScheduled,
	}
	session.Stamp(actor, s.now())

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create vsp session: %w", err)
	}

	event, err := s.provider.CreateEvent(ctx, actor, s.event(session))
	if err != nil {
		s.metrics.CalendarFailures.WithLabelValues("vsp_create").Inc()
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to create calendar event for VSP session")
		session.CalendarError = err.Error()
	} else {
		session.CalendarEventID = event.ID
	}

	if err := s.repo.Update(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to store calendar outcome")
	}

	return &model.VSPSessionResponse{Message: "VSP session created", VSPSession: session}, nil
}

func (s *Service) event(session *model.VSPSession) *calendar.Event {
	return &calendar.Event{
		Title: fmt.Sprintf("VSP Session: %s - %s", session.PatientName, session.Procedure),
		Description: fmt.Sprintf("Virtual Surgical Planning Session\n\nPatient: %s\nMRN: %s\nProcedure: %s\nAttending: %s\n\nNotes: %s\n",
			orNA(session.PatientName), orNA(session.MRN), orNA(session.Procedure), orNA(session.Attending), session.Notes),
		Location:       location,
		Start:          session.Start,
		End:            session.End,
		TimeZone:       s.timeZone,
		Attendees:      session.Attendees,
		ConferenceLink: session.ConferenceLink,
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func (s *Service) List(ctx context.Context) ([]*model.VSPSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vsp sessions: %w", err)
	}
	return sessions, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.VSPSession, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

// Delete removes the calendar event when one exists, ignoring failures,
// then the session itself.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if session.CalendarEventID != "" {
		if err := s.provider.DeleteEvent(ctx, actor, session.CalendarEventID); err != nil {
			s.metrics.CalendarFailures.WithLabelValues("vsp_delete").Inc()
			s.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to delete calendar event")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("VSP session", err)
	}
	return fmt.Errorf("failed to access vsp session: %w", err)
}
