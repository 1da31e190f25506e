package staff

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const (
	activeResidentsKey = "active_residents"
	activeTTL          = time.Minute
)

type StaffServicer interface {
	CreateResident(ctx context.Context, actor string, req *model.ResidentRequest) (*model.Resident, error)
	ListResidents(ctx context.Context, filter model.StaffFilter) ([]*model.Resident, error)
	UpdateResident(ctx context.Context, id string, req *model.ResidentRequest) error
	DeleteResident(ctx context.Context, id string) error
	ActiveResidents(ctx context.Context) ([]*model.Resident, error)

	CreateAttending(ctx context.Context, actor string, req *model.AttendingRequest) (*model.Attending, error)
	ListAttendings(ctx context.Context, filter model.StaffFilter) ([]*model.Attending, error)
	UpdateAttending(ctx context.Context, id string, req *model.AttendingRequest) error
	DeleteAttending(ctx context.Context, id string) error
}

// Service manages the resident and attending directories.
type Service struct {
	residents  repository.ResidentRepository
	attendings repository.AttendingRepository
	cache      *cache.Cache
	now        func() time.Time
}

func NewService(residents repository.ResidentRepository, attendings repository.AttendingRepository) *Service {
	return &Service{
		residents:  residents,
		attendings: attendings,
		cache:      cache.New(activeTTL, 2*activeTTL),
		now:        time.Now,
	}
}

func (s *Service) CreateResident(ctx context.Context, actor string, req *model.ResidentRequest) (*model.Resident, error) {
	if _, err := s.residents.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.InvalidArgument("Resident with this email already exists")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check resident email: %w", err)
	}

	resident := &model.Resident{ID: model.NewID()}
	req.Apply(resident)
	resident.Stamp(actor, s.now())

	if err := s.residents.Create(ctx, resident); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.InvalidArgument("Resident with this email already exists")
		}
		return nil, fmt.Errorf("failed to create resident: %w", err)
	}
	s.cache.Delete(activeResidentsKey)
	return resident, nil
}

func (s *Service) ListResidents(ctx context.Context, filter model.StaffFilter) ([]*model.Resident, error) {
	residents, err := s.residents.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}

func (s *Service) UpdateResident(ctx context.Context, id string, req *model.ResidentRequest) error {
	resident, err := s.residents.Get(ctx, id)
	if err != nil {
		return notFound("Resident", err)
	}
	req.Apply(resident)
	if err := s.residents.Update(ctx, resident); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return errors.InvalidArgument("Resident with this email already exists")
		}
		return notFound("Resident", err)
	}
	s.cache.Delete(activeResidentsKey)
	return nil
}

func (s *Service) DeleteResident(ctx context.Context, id string) error {
	if err := s.residents.Delete(ctx, id); err != nil {
		return notFound("Resident", err)
	}
	s.cache.Delete(activeResidentsKey)
	return nil
}

// ActiveResidents is the notification fan-out list, cached briefly.
func (s *Service) ActiveResidents(ctx context.Context) ([]*model.Resident, error) {
	if cached, ok := s.cache.Get(activeResidentsKey); ok {
		return cached.([]*model.Resident), nil
	}
	residents, err := s.residents.List(ctx, model.StaffFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active residents: %w", err)
	}
	s.cache.Set(activeResidentsKey, residents, cache.DefaultExpiration)
	return residents, nil
}

func (s *Service) CreateAttending(ctx context.Context, actor string, req *model.AttendingRequest) (*model.Attending, error) {
	attending := &model.Attending{ID: model.NewID()}
	req.Apply(attending)
	attending.Stamp(actor, s.now())

	if err := s.attendings.Create(ctx, attending); err != nil {
		return nil, fmt.Errorf("failed to create attending: %w", err)
	}
	return attending, nil
}

func (s *Service) ListAttendings(ctx context.Context, filter model.StaffFilter) ([]*model.Attending, error) {
	attendings, err := s.attendings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendings: %w", err)
	}
	return attendings, nil
}

func (s *Service) UpdateAttending(ctx context.Context, id string, req *model.AttendingRequest) error {
	attending, err := s.attendings.Get(ctx, id)
	if err != nil {
		return notFound("Attending", err)
	}
	req.Apply(attending)
	if err := s.attendings.Update(ctx, attending); err != nil {
		return notFound("Attending", err)
	}
	return nil
}

func (s *Service) DeleteAttending(ctx context.Context, id string) error {
	if err := s.attendings.Delete(ctx, id); err != nil {
		return notFound("Attending", err)
	}
	return nil
}

// notFound maps a repository miss to a 404 and wraps anything else.
func notFound(resource string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to access %s: %w", resource, err)
}
