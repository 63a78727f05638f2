package degree

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

type (
	CatalogSource interface {
		GetByID(ctx context.Context, id string) (catalog.Catalog, error)
	}

	CourseSource interface {
		QueryAllAsMap(ctx context.Context) (map[string]course.Course, error)
		Malags(ctx context.Context) ([]string, error)
	}

	Service struct {
		catalogs CatalogSource
		courses  CourseSource
	}
)

func NewService(catalogs CatalogSource, courses CourseSource) *Service {
	return &Service{catalogs: catalogs, courses: courses}
}

// Evaluate loads the catalog, the course index and the malag list concurrently and computes st against them.
func (svc *Service) Evaluate(ctx context.Context, catalogID string, st *Status) error {
	var (
		cat     catalog.Catalog
		courses map[string]course.Course
		malags  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cat, err = svc.catalogs.GetByID(gctx, catalogID)
		return errors.Wrap(err, "loading catalog")
	})
	g.Go(func() (err error) {
		courses, err = svc.courses.QueryAllAsMap(gctx)
		return errors.Wrap(err, "loading courses")
	})
	g.Go(func() (err error) {
		malags, err = svc.courses.Malags(gctx)
		return errors.Wrap(err, "loading malags")
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return Compute(cat, courses, malags, st)
}
