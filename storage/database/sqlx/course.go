package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/course"
)

var courseOrdering = core.DBOrdering{Field: "id", Ascending: true}

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	if err := repo.db.GetContext(ctx, &c, repo.db.Rebind(`SELECT id, name, credit FROM courses WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, `SELECT id, name, credit FROM courses ORDER BY `+courseOrdering.String()); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Name != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Name))+"%")
	}
	if filter.Number != "" {
		where = append(where, "id LIKE ?")
		args = append(args, escapeLike(filter.Number)+"%")
	}
	q := `SELECT id, name, credit FROM courses`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + courseOrdering.String()

	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	return courses, nil
}

// escapeLike drops LIKE wildcards from user input.
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}

func (repo *courseRepository) UpsertCourses(ctx context.Context, courses ...course.Course) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`INSERT INTO courses (id, name, credit) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, credit = excluded.credit`)
	for _, c := range courses {
		if _, err := tx.ExecContext(ctx, q, c.ID, c.Name, c.Credit); err != nil {
			return errors.Wrapf(err, "upserting course %s", c.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "committing courses")
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM courses WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return checkAffected(res, course.ErrNotFound)
}

func (repo *courseRepository) QueryMalags(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := repo.db.SelectContext(ctx, &ids, `SELECT id FROM malags ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting malags")
	}
	return ids, nil
}

func (repo *courseRepository) SetMalags(ctx context.Context, ids []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM malags`); err != nil {
		return errors.Wrap(err, "clearing malags")
	}
	q := tx.Rebind(`INSERT INTO malags (id) VALUES (?) ON CONFLICT (id) DO NOTHING`)
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return errors.Wrapf(err, "inserting malag %s", id)
		}
	}
	return errors.Wrap(tx.Commit(), "committing malags")
}
