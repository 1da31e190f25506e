package memory

import (
	"context"
	"sort"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type NotificationRepository struct {
	rows *table[model.Notification]
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{rows: newTable[model.Notification](nil)}
}

func (r *NotificationRepository) Create(_ context.Context, n *model.Notification) error {
	return r.rows.insert(n.ID, n, nil)
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, email string, unreadOnly bool, limit int64) ([]*model.Notification, error) {
	out := r.rows.filter(func(n *model.Notification) bool {
		return n.RecipientEmail == email && (!unreadOnly || !n.Read)
	})
	// Newest first; ties keep reverse insertion order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, email, id string) error {
	_, err := r.rows.update(id, func(n *model.Notification) error {
		if n.RecipientEmail != email {
			return repository.ErrNotFound
		}
		n.Read = true
		return nil
	})
	return err
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, email string) (int64, error) {
	return r.rows.updateWhere(
		func(n *model.Notification) bool { return n.RecipientEmail == email && !n.Read },
		func(n *model.Notification) bool { n.Read = true; return true },
	), nil
}

func (r *NotificationRepository) Delete(_ context.Context, email, id string) error {
	n, err := r.rows.get(id)
	if err != nil {
		return err
	}
	if n.RecipientEmail != email {
		return repository.ErrNotFound
	}
	return r.rows.delete(id)
}
