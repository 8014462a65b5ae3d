package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"backendconf/internal/model"
	"backendconf/internal/repository"
)

// PropertyPostgres is a PostgreSQL implementation of repository.PropertyRepository.
type PropertyPostgres struct {
	db *sql.DB
}

// NewPropertyPostgres creates a new PropertyPostgres repository.
func NewPropertyPostgres(db *sql.DB) *PropertyPostgres {
	return &PropertyPostgres{db: db}
}

var _ repository.PropertyRepository = (*PropertyPostgres)(nil)

const propertyColumns = `id, name, sdk_folder_id, sdk_site_id,
		created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state`

func scanProperty(row interface{ Scan(...any) error }) (*model.Property, error) {
	var p model.Property
	if err := row.Scan(
		&p.ID, &p.Name, &p.SdkFolderID, &p.SdkSiteID,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedByUserID, &p.UpdatedByUserID, &p.WorkflowState,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive returns every active property ordered by name.
func (r *PropertyPostgres) ListActive(ctx context.Context) ([]model.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE workflow_state <> 'removed' ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	return props, rows.Err()
}

// placeholders builds a $n list for an IN clause starting at $1.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// FindByIDs returns the active properties matching the given ids.
func (r *PropertyPostgres) FindByIDs(ctx context.Context, ids []int64) ([]model.Property, error) {
	if len(ids) == 0 {
		return []model.Property{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := fmt.Sprintf(
		`SELECT %s FROM properties WHERE id IN (%s) AND workflow_state <> 'removed' ORDER BY id`,
		propertyColumns, placeholders(len(ids)))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := make([]model.Property, 0, len(ids))
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	return props, rows.Err()
}

// NamesByIDs returns a property id to name lookup for the given ids.
func (r *PropertyPostgres) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := fmt.Sprintf(`SELECT id, name FROM properties WHERE id IN (%s)`, placeholders(len(ids)))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
