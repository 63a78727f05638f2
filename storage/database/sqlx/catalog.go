package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
)

type catalogRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	TotalCredit float64     `db:"total_credit"`
	Faculty     null.String `db:"faculty"`
	Data        string      `db:"data"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row catalogRow) display() catalog.DisplayCatalog {
	return catalog.DisplayCatalog{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		TotalCredit: row.TotalCredit,
		Faculty:     row.Faculty.String,
	}
}

type catalogRepository struct {
	db core.DBExecutor
}

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) GetCatalog(ctx context.Context, id string) (catalog.Catalog, error) {
	var row catalogRow
	q := repo.db.Rebind(`SELECT id, name, description, total_credit, faculty, data, updated_at FROM catalogs WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Catalog{}, catalog.ErrNotFound
		}
		return catalog.Catalog{}, errors.Wrap(err, "selecting catalog")
	}
	var cat catalog.Catalog
	if err := json.Unmarshal([]byte(row.Data), &cat); err != nil {
		return catalog.Catalog{}, errors.Wrap(err, "decoding catalog")
	}
	cat.ID = row.ID
	return cat, nil
}

func (repo *catalogRepository) QueryDisplayCatalogs(ctx context.Context) ([]catalog.DisplayCatalog, error) {
	var rows []catalogRow
	q := repo.db.Rebind(`SELECT id, name, description, total_credit, faculty, '' AS data, updated_at FROM catalogs ORDER BY ` +
		core.DBOrdering{Field: "name", Ascending: true}.String())
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting catalogs")
	}
	cats := make([]catalog.DisplayCatalog, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.display())
	}
	return cats, nil
}

func (repo *catalogRepository) UpsertCatalog(ctx context.Context, cat catalog.Catalog) error {
	data, err := json.Marshal(cat)
	if err != nil {
		return errors.Wrap(err, "encoding catalog")
	}
	q := repo.db.Rebind(`INSERT INTO catalogs (id, name, description, total_credit, faculty, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, description = excluded.description,
			total_credit = excluded.total_credit, faculty = excluded.faculty, data = excluded.data, updated_at = excluded.updated_at`)
	faculty := null.NewString(cat.Faculty, cat.Faculty != "")
	if _, err := repo.db.ExecContext(ctx, q, cat.ID, cat.Name, cat.Description, cat.TotalCredit, faculty, string(data), time.Now().UTC()); err != nil {
		return errors.Wrap(err, "upserting catalog")
	}
	return nil
}

func (repo *catalogRepository) DeleteCatalog(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM catalogs WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting catalog")
	}
	return checkAffected(res, catalog.ErrNotFound)
}
