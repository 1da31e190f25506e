package memory

import (
	"context"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

type UserRepository struct {
	rows *table[model.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: newTable[model.User](nil)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	return r.rows.insert(user.ID, user, func(existing *model.User) bool {
		return existing.Email == user.Email
	})
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.rows.find(func(u *model.User) bool { return u.Email == email })
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	out := r.rows.filter(nil)
	for _, u := range out {
		u.HashedPassword = ""
	}
	return out, nil
}
