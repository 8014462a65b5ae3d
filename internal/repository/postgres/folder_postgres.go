package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"backendconf/internal/model"
	"backendconf/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

const folderColumns = `id, created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state`

func scanFolder(row interface{ Scan(...any) error }) (*model.Folder, error) {
	var f model.Folder
	if err := row.Scan(
		&f.ID, &f.CreatedAt, &f.UpdatedAt, &f.CreatedByUserID, &f.UpdatedByUserID, &f.WorkflowState,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindByID loads the folder with its active children and computes
// deletability from the documents still referencing it.
func (r *FolderPostgres) FindByID(ctx context.Context, id int64) (*model.Folder, error) {
	f, err := scanFolder(r.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, f); err != nil {
		return nil, err
	}
	hasDocs, err := r.HasActiveDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	f.IsDeletable = !hasDocs
	return f, nil
}

func (r *FolderPostgres) loadChildren(ctx context.Context, f *model.Folder) error {
	if err := func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, folder_id, language_id, name, description,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
			FROM folder_translations
			WHERE folder_id = $1 AND workflow_state <> 'removed'
			ORDER BY id`, f.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var t model.FolderTranslation
			if err := rows.Scan(&t.ID, &t.FolderID, &t.LanguageID, &t.Name, &t.Description,
				&t.CreatedAt, &t.UpdatedAt, &t.CreatedByUserID, &t.UpdatedByUserID, &t.WorkflowState); err != nil {
				return err
			}
			f.Translations = append(f.Translations, t)
		}
		return rows.Err()
	}(); err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, folder_id, property_id, sdk_folder_id,
			created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
		FROM folder_properties
		WHERE folder_id = $1 AND workflow_state <> 'removed'
		ORDER BY id`, f.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.FolderProperty
		if err := rows.Scan(&p.ID, &p.FolderID, &p.PropertyID, &p.SdkFolderID,
			&p.CreatedAt, &p.UpdatedAt, &p.CreatedByUserID, &p.UpdatedByUserID, &p.WorkflowState); err != nil {
			return err
		}
		f.Properties = append(f.Properties, p)
	}
	return rows.Err()
}

// List returns a page of active folders ordered by the caller-language
// translation name. Folders without a usable translation sort last.
func (r *FolderPostgres) List(ctx context.Context, q repository.FolderQuery) (*repository.PageResult[model.Folder], error) {
	where := []string{`f.workflow_state <> 'removed'`}
	args := []any{q.LanguageID}
	countWhere := []string{`workflow_state <> 'removed'`}
	countArgs := []any{}
	if q.FolderID != nil {
		args = append(args, *q.FolderID)
		where = append(where, fmt.Sprintf(`f.id = $%d`, len(args)))
		countArgs = append(countArgs, *q.FolderID)
		countWhere = append(countWhere, `id = $1`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folders WHERE `+strings.Join(countWhere, " AND "),
		countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	items := make([]model.Folder, 0)
	if total == 0 {
		return &repository.PageResult[model.Folder]{Items: items, Total: 0}, nil
	}

	pageArgs := append(args, q.Limit, q.Offset)
	qList := fmt.Sprintf(`
		SELECT f.id, f.created_at, f.updated_at, f.created_by_user_id, f.updated_by_user_id, f.workflow_state
		FROM folders f
		LEFT JOIN folder_translations t
			ON t.folder_id = f.id AND t.language_id = $1
			AND t.workflow_state <> 'removed' AND t.name <> ''
		WHERE %s
		ORDER BY (t.name IS NULL), t.name, f.id
		LIMIT $%d OFFSET $%d`, cond, len(pageArgs)-1, len(pageArgs))

	rows, err := r.db.QueryContext(ctx, qList, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := r.loadChildren(ctx, &items[i]); err != nil {
			return nil, err
		}
		hasDocs, err := r.HasActiveDocuments(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].IsDeletable = !hasDocs
	}

	return &repository.PageResult[model.Folder]{Items: items, Total: total}, nil
}

// ListAll returns every active folder with its active translations.
func (r *FolderPostgres) ListAll(ctx context.Context) ([]model.Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE workflow_state <> 'removed' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := make([]model.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range folders {
		if err := r.loadChildren(ctx, &folders[i]); err != nil {
			return nil, err
		}
	}
	return folders, nil
}

// Create inserts the folder and its translations in one transaction.
func (r *FolderPostgres) Create(ctx context.Context, folder *model.Folder) (*model.Folder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO folders (created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
		VALUES ($1, $1, $2, $2, $3)
		RETURNING id`,
		now, folder.CreatedByUserID, model.WorkflowStateCreated,
	).Scan(&folder.ID); err != nil {
		return nil, err
	}

	for i := range folder.Translations {
		t := &folder.Translations[i]
		t.FolderID = folder.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO folder_translations (folder_id, language_id, name, description,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $5, $5, $6, $6, $7)
			RETURNING id`,
			t.FolderID, t.LanguageID, t.Name, t.Description,
			now, folder.CreatedByUserID, model.WorkflowStateCreated,
		).Scan(&t.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return folder, nil
}

// Apply executes every mutation in the change set in one transaction.
func (r *FolderPostgres) Apply(ctx context.Context, cs *model.FolderChangeSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	for _, t := range cs.UpdateTranslations {
		if _, err := tx.ExecContext(ctx, `
			UPDATE folder_translations
			SET name = $1, description = $2, updated_at = $3, updated_by_user_id = $4
			WHERE id = $5`,
			t.Name, t.Description, now, cs.UserID, t.ID); err != nil {
			return err
		}
	}

	for _, t := range cs.CreateTranslations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO folder_translations (folder_id, language_id, name, description,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $5, $5, $6, $6, $7)`,
			cs.FolderID, t.LanguageID, t.Name, t.Description,
			now, cs.UserID, model.WorkflowStateCreated); err != nil {
			return err
		}
	}

	for _, p := range cs.AddProperties {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO folder_properties (folder_id, property_id, sdk_folder_id,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $4, $5, $5, $6)`,
			cs.FolderID, p.PropertyID, p.SdkFolderID,
			now, cs.UserID, model.WorkflowStateCreated); err != nil {
			return err
		}
	}

	if cs.SoftDeleteFolder {
		if _, err := tx.ExecContext(ctx, `
			UPDATE folders SET workflow_state = $1, updated_at = $2, updated_by_user_id = $3
			WHERE id = $4`,
			model.WorkflowStateRemoved, now, cs.UserID, cs.FolderID); err != nil {
			return err
		}
		for _, table := range []string{"folder_translations", "folder_properties"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
				UPDATE %s SET workflow_state = $1, updated_at = $2, updated_by_user_id = $3
				WHERE folder_id = $4 AND workflow_state <> 'removed'`, table),
				model.WorkflowStateRemoved, now, cs.UserID, cs.FolderID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// HasActiveDocuments reports whether any active document still references
// the folder.
func (r *FolderPostgres) HasActiveDocuments(ctx context.Context, folderID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM documents WHERE folder_id = $1 AND workflow_state <> 'removed')`,
		folderID).Scan(&exists)
	return exists, err
}
