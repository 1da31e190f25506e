package conference

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/service/invite"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const defaultDuration = time.Hour

type ConferenceServicer interface {
	Create(ctx context.Context, actor string, req *model.ConferenceRequest) (*model.Conference, error)
	List(ctx context.Context) ([]*model.Conference, error)
	Update(ctx context.Context, id string, req *model.ConferenceRequest) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo     repository.ConferenceRepository
	invites  *invite.Sender
	duration time.Duration
	now      func() time.Time
}

func NewService(repo repository.ConferenceRepository, invites *invite.Sender, duration time.Duration) *Service {
	if duration <= 0 {
		duration = defaultDuration
	}
	return &Service{repo: repo, invites: invites, duration: duration, now: time.Now}
}

// Create stores the conference and mails the organizer an invite with the
// attendees on cc.
func (s *Service) Create(ctx context.Context, actor string, req *model.ConferenceRequest) (*model.Conference, error) {
	conf := &model.Conference{ID: model.NewID()}
	req.Apply(conf)
	conf.Stamp(actor, s.now())

	if err := s.repo.Create(ctx, conf); err != nil {
		return nil, fmt.Errorf("failed to create conference: %w", err)
	}

	s.invites.Send(ctx, invite.Request{
		Operation:   "conference",
		To:          actor,
		Cc:          conf.Attendees,
		Subject:     fmt.Sprintf("Meeting Scheduled: %s", conf.Title),
		Title:       conf.Title,
		Description: description(conf, actor),
		Location:    "Conference Room",
		Date:        conf.Date,
		Time:        conf.Time,
		Duration:    s.duration,
		Attendees:   conf.Attendees,
	})
	return conf, nil
}

func description(conf *model.Conference, organizer string) string {
	notes := conf.Notes
	if notes == "" {
		notes = "No additional notes"
	}
	attendees := "None listed"
	if len(conf.Attendees) > 0 {
		attendees = strings.Join(conf.Attendees, ", ")
	}
	return strings.Join([]string{
		conf.Title,
		"",
		notes,
		"",
		fmt.Sprintf("Organizer: %s", organizer),
		fmt.Sprintf("Attendees: %s", attendees),
	}, "\n")
}

func (s *Service) List(ctx context.Context) ([]*model.Conference, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conferences: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.ConferenceRequest) error {
	conf, err := s.repo.Get(ctx, id)
	if err != nil {
		return notFound(err)
	}
	req.Apply(conf)
	if err := s.repo.Update(ctx, conf); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Conference", err)
	}
	return fmt.Errorf("failed to access conference: %w", err)
}
