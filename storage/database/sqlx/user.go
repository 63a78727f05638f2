package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/user"
)

type userRow struct {
	ID          string    `db:"id"`
	Permissions string    `db:"permissions"`
	Details     string    `db:"details"`
	Settings    string    `db:"settings"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func newUserRow(usr user.User) (userRow, error) {
	details, err := json.Marshal(usr.Details)
	if err != nil {
		return userRow{}, errors.Wrap(err, "encoding details")
	}
	settings, err := json.Marshal(usr.Settings)
	if err != nil {
		return userRow{}, errors.Wrap(err, "encoding settings")
	}
	return userRow{
		ID:          usr.ID,
		Permissions: string(usr.Permissions),
		Details:     string(details),
		Settings:    string(settings),
		CreatedAt:   usr.CreatedAt.UTC(),
		UpdatedAt:   usr.UpdatedAt.UTC(),
	}, nil
}

func (row userRow) toUser() (user.User, error) {
	usr := user.User{
		ID:          row.ID,
		Permissions: user.Permissions(row.Permissions),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(row.Details), &usr.Details); err != nil {
		return user.User{}, errors.Wrap(err, "decoding details")
	}
	if err := json.Unmarshal([]byte(row.Settings), &usr.Settings); err != nil {
		return user.User{}, errors.Wrap(err, "decoding settings")
	}
	return usr, nil
}

type userRepository struct {
	db core.DBExecutor
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) GetUser(ctx context.Context, id string) (user.User, error) {
	var row userRow
	q := repo.db.Rebind(`SELECT id, permissions, details, settings, created_at, updated_at FROM users WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser()
}

func (repo *userRepository) CreateUserIfNotExist(ctx context.Context, usr user.User) error {
	row, err := newUserRow(usr)
	if err != nil {
		return err
	}
	q := repo.db.Rebind(`INSERT INTO users (id, permissions, details, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`)
	if _, err := repo.db.ExecContext(ctx, q, row.ID, row.Permissions, row.Details, row.Settings, row.CreatedAt, row.UpdatedAt); err != nil {
		return errors.Wrap(err, "inserting user")
	}
	return nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) error {
	row, err := newUserRow(usr)
	if err != nil {
		return err
	}
	q := repo.db.Rebind(`UPDATE users SET details = ?, settings = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, row.Details, row.Settings, row.UpdatedAt, row.ID)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return checkAffected(res, user.ErrNotFound)
}

func (repo *userRepository) SetPermissions(ctx context.Context, id string, perms user.Permissions) error {
	q := repo.db.Rebind(`UPDATE users SET permissions = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q, string(perms), time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating permissions")
	}
	return checkAffected(res, user.ErrNotFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
