package inmemdb

import (
	"context"

	"github.com/sogrim/sogrim/core/user"
)

type userRepository struct {
	db *table
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) GetUser(_ context.Context, id string) (user.User, error) {
	var usr user.User
	found, err := repo.db.get(id, &usr)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) CreateUserIfNotExist(_ context.Context, usr user.User) error {
	_, err := repo.db.putIfAbsent(usr.ID, usr)
	return err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) error {
	if _, err := repo.GetUser(ctx, usr.ID); err != nil {
		return err
	}
	return repo.db.put(usr.ID, usr)
}

func (repo *userRepository) SetPermissions(ctx context.Context, id string, perms user.Permissions) error {
	usr, err := repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	usr.Permissions = perms
	return repo.db.put(id, usr)
}
