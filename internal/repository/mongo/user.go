package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

type userRepository struct {
	collection *driver.Collection
}

func NewUserRepository(db *driver.Database) repository.UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := insert(ctx, r.collection, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, bson.M{"email": email})
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetProjection(bson.M{"hashed_password": 0})
	return findAll[model.User](ctx, r.collection, bson.M{}, opts)
}
