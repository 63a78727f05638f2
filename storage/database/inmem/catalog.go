package inmemdb

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sogrim/sogrim/core/catalog"
)

type catalogRepository struct {
	db *table
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) GetCatalog(_ context.Context, id string) (catalog.Catalog, error) {
	var cat catalog.Catalog
	found, err := repo.db.get(id, &cat)
	if err != nil {
		return catalog.Catalog{}, err
	}
	if !found {
		return catalog.Catalog{}, catalog.ErrNotFound
	}
	return cat, nil
}

func (repo *catalogRepository) QueryDisplayCatalogs(_ context.Context) ([]catalog.DisplayCatalog, error) {
	cats := make([]catalog.DisplayCatalog, 0)
	err := repo.db.each(func(row []byte) error {
		var cat catalog.Catalog
		if err := json.Unmarshal(row, &cat); err != nil {
			return err
		}
		cats = append(cats, cat.Display())
		return nil
	})
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, err
}

func (repo *catalogRepository) UpsertCatalog(_ context.Context, cat catalog.Catalog) error {
	return repo.db.put(cat.ID, cat)
}

func (repo *catalogRepository) DeleteCatalog(_ context.Context, id string) error {
	if !repo.db.delete(id) {
		return catalog.ErrNotFound
	}
	return nil
}
