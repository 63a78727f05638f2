package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/sogrim/sogrim/core/course"
)

const malagsKey = "malags"

type courseRepository struct {
	db     *table
	malags *table
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, malags: db.malags}
}

func (repo *courseRepository) query(keep func(c course.Course) bool) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := repo.db.each(func(row []byte) error {
		var c course.Course
		if err := json.Unmarshal(row, &c); err != nil {
			return err
		}
		if keep(c) {
			courses = append(courses, c)
		}
		return nil
	})
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, err
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	var c course.Course
	found, err := repo.db.get(id, &c)
	if err != nil {
		return course.Course{}, err
	}
	if !found {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	return repo.query(func(course.Course) bool { return true })
}

func (repo *courseRepository) FilterCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	return repo.query(func(c course.Course) bool {
		if filter.Number != "" && !strings.HasPrefix(c.ID, filter.Number) {
			return false
		}
		return filter.Name == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name))
	})
}

func (repo *courseRepository) UpsertCourses(_ context.Context, courses ...course.Course) error {
	for _, c := range courses {
		if err := repo.db.put(c.ID, c); err != nil {
			return err
		}
	}
	return nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	if !repo.db.delete(id) {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) QueryMalags(_ context.Context) ([]string, error) {
	ids := make([]string, 0)
	if _, err := repo.malags.get(malagsKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (repo *courseRepository) SetMalags(_ context.Context, ids []string) error {
	return repo.malags.put(malagsKey, ids)
}
