package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		GetCatalog(ctx context.Context, id string) (Catalog, error)
		QueryDisplayCatalogs(ctx context.Context) ([]DisplayCatalog, error)
		UpsertCatalog(ctx context.Context, cat Catalog) error
		DeleteCatalog(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Catalog, error) {
	return svc.repo.GetCatalog(ctx, strings.TrimSpace(id))
}

func (svc *Service) QueryAll(ctx context.Context) ([]DisplayCatalog, error) {
	return svc.repo.QueryDisplayCatalogs(ctx)
}

// Save validates and upserts the catalog. A missing ID is generated.
func (svc *Service) Save(ctx context.Context, cat Catalog) (Catalog, error) {
	cat.ID = strings.TrimSpace(cat.ID)
	if cat.ID == "" {
		cat.ID = NewID()
	}
	if cat.CourseToBank == nil {
		cat.CourseToBank = map[string]string{}
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	if err := svc.repo.UpsertCatalog(ctx, cat); err != nil {
		return Catalog{}, errors.Wrap(err, "saving catalog")
	}
	return cat, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCatalog(ctx, id)
}
