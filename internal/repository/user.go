package repository

import (
	"context"

	"socialfeed/internal/models"
	"socialfeed/internal/store"
)

// UserRepository reads and writes the users collection.
type UserRepository interface {
	List(ctx context.Context) (models.Users, error)
	SaveAll(ctx context.Context, users models.Users) error
}

type userRepository struct {
	store store.Store
	key   string
}

// NewUserRepository returns a UserRepository over s.
func NewUserRepository(s store.Store, keys store.Keys) UserRepository {
	return &userRepository{store: s, key: keys.Users()}
}

func (r *userRepository) List(ctx context.Context) (models.Users, error) {
	var users models.Users
	if err := loadCollection(ctx, r.store, r.key, store.CollectionUsers, &users); err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u == nil || u.ID == "" {
			continue
		}
		u.Following = uniqueIDs(u.Following, u.ID)
		out = append(out, u)
	}
	return out, nil
}

func (r *userRepository) SaveAll(ctx context.Context, users models.Users) error {
	if users == nil {
		users = models.Users{}
	}
	return saveCollection(ctx, r.store, r.key, store.CollectionUsers, users)
}
