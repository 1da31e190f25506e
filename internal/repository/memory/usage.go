package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

type UsageRepository struct {
	mu    sync.Mutex
	stats map[usageKey]*model.UsageStat
}

type usageKey struct {
	email    string
	itemType model.UsageItemType
	value    string
}

func NewUsageRepository() *UsageRepository {
	return &UsageRepository{stats: make(map[usageKey]*model.UsageStat)}
}

func (r *UsageRepository) Increment(_ context.Context, email string, itemType model.UsageItemType, value string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := usageKey{email: email, itemType: itemType, value: value}
	stat, ok := r.stats[key]
	if !ok {
		stat = &model.UsageStat{UserEmail: email, ItemType: itemType, ItemValue: value, FirstUsed: at}
		r.stats[key] = stat
	}
	stat.UsageCount++
	stat.LastUsed = at
	return nil
}

func (r *UsageRepository) Top(_ context.Context, email string, itemType model.UsageItemType, limit int64) ([]*model.UsageStat, error) {
	r.mu.Lock()
	out := make([]*model.UsageStat, 0)
	for k, v := range r.stats {
		if k.email == email && k.itemType == itemType {
			c := *v
			out = append(out, &c)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		if !out[i].FirstUsed.Equal(out[j].FirstUsed) {
			return out[i].FirstUsed.Before(out[j].FirstUsed)
		}
		return out[i].ItemValue < out[j].ItemValue
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
