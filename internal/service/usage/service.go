package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type UsageServicer interface {
	Track(ctx context.Context, user string, itemType model.UsageItemType, value string) error
	FrequentlyUsed(ctx context.Context, user string, itemType model.UsageItemType, limit int) ([]*model.UsageStat, error)
}

// Service ranks the diagnoses and CPT codes each user enters most often.
type Service struct {
	repo  repository.UsageRepository
	cache *cache.Cache
	now   func() time.Time
}

func NewService(repo repository.UsageRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cacheCleanup),
		now:   time.Now,
	}
}

// Track counts one use of value. Blank values are ignored.
func (s *Service) Track(ctx context.Context, user string, itemType model.UsageItemType, value string) error {
	if !itemType.Valid() {
		return errors.InvalidArgument("invalid item type %q", itemType)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if err := s.repo.Increment(ctx, user, itemType, value, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to track usage: %w", err)
	}
	s.invalidate(user, itemType)
	return nil
}

func (s *Service) FrequentlyUsed(ctx context.Context, user string, itemType model.UsageItemType, limit int) ([]*model.UsageStat, error) {
	if !itemType.Valid() {
		return nil, errors.InvalidArgument("invalid item type %q", itemType)
	}
	limit = ClampLimit(limit)

	key := cacheKey(user, itemType)
	if cached, ok := s.cache.Get(key); ok {
		stats := cached.([]*model.UsageStat)
		if len(stats) >= limit {
			return stats[:limit], nil
		}
	}

	stats, err := s.repo.Top(ctx, user, itemType, MaxLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	s.cache.Set(key, stats, cache.DefaultExpiration)

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// FrequentCPTCodes returns the user's top procedure codes.
func (s *Service) FrequentCPTCodes(ctx context.Context, user string, limit int) ([]model.FrequentCPTCode, error) {
	stats, err := s.FrequentlyUsed(ctx, user, model.UsageCPTCode, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.FrequentCPTCode, 0, len(stats))
	for _, st := range stats {
		out = append(out, model.FrequentCPTCode{Code: st.ItemValue})
	}
	return out, nil
}

func (s *Service) FrequentDiagnoses(ctx context.Context, user string, limit int) ([]model.FrequentDiagnosis, error) {
	stats, err := s.FrequentlyUsed(ctx, user, model.UsageDiagnosis, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.FrequentDiagnosis, 0, len(stats))
	for _, st := range stats {
		out = append(out, model.FrequentDiagnosis{Diagnosis: st.ItemValue})
	}
	return out, nil
}

// ClampLimit applies the default for non-positive limits and the upper cap.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Service) invalidate(user string, itemType model.UsageItemType) {
	s.cache.Delete(cacheKey(user, itemType))
}

func cacheKey(user string, itemType model.UsageItemType) string {
	return string(itemType) + ":" + user
}
