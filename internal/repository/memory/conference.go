package memory

import (
	"context"
	"sort"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

type ConferenceRepository struct {
	rows *table[model.Conference]
}

func NewConferenceRepository() *ConferenceRepository {
	return &ConferenceRepository{rows: newTable(func(c *model.Conference) *model.Conference {
		out := *c
		out.Attendees = append([]string(nil), c.Attendees...)
		return &out
	})}
}

func (r *ConferenceRepository) Create(_ context.Context, conference *model.Conference) error {
	return r.rows.insert(conference.ID, conference, nil)
}

func (r *ConferenceRepository) Get(_ context.Context, id string) (*model.Conference, error) {
	return r.rows.get(id)
}

func (r *ConferenceRepository) List(_ context.Context) ([]*model.Conference, error) {
	return r.rows.filter(nil), nil
}

func (r *ConferenceRepository) Update(_ context.Context, conference *model.Conference) error {
	_, err := r.rows.update(conference.ID, func(stored *model.Conference) error {
		*stored = *conference
		stored.Attendees = append([]string(nil), conference.Attendees...)
		return nil
	})
	return err
}

func (r *ConferenceRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}

type VSPRepository struct {
	rows *table[model.VSPSession]
}

func NewVSPRepository() *VSPRepository {
	return &VSPRepository{rows: newTable(func(s *model.VSPSession) *model.VSPSession {
		out := *s
		out.Attendees = append([]string(nil), s.Attendees...)
		return &out
	})}
}

func (r *VSPRepository) Create(_ context.Context, session *model.VSPSession) error {
	return r.rows.insert(session.ID, session, nil)
}

func (r *VSPRepository) Get(_ context.Context, id string) (*model.VSPSession, error) {
	return r.rows.get(id)
}

func (r *VSPRepository) List(_ context.Context) ([]*model.VSPSession, error) {
	out := r.rows.filter(nil)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.After(out[j].Start)
	})
	return out, nil
}

func (r *VSPRepository) Update(_ context.Context, session *model.VSPSession) error {
	_, err := r.rows.update(session.ID, func(stored *model.VSPSession) error {
		*stored = *session
		stored.Attendees = append([]string(nil), session.Attendees...)
		return nil
	})
	return err
}

func (r *VSPRepository) Delete(_ context.Context, id string) error {
	return r.rows.delete(id)
}
