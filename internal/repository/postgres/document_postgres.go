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

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// documentSortColumns whitelists the sort fields expressible in SQL.
var documentSortColumns = map[string]string{
	"id":         "id",
	"start_at":   "start_at",
	"end_at":     "end_at",
	"folder_id":  "folder_id",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

const documentColumns = `id, start_at, end_at, folder_id, status, is_locked,
		created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID, &d.StartAt, &d.EndAt, &d.FolderID, &d.Status, &d.IsLocked,
		&d.CreatedAt, &d.UpdatedAt, &d.CreatedByUserID, &d.UpdatedByUserID, &d.WorkflowState,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByID loads the aggregate with all its children, regardless of
// workflow state. Callers filter to active rows where they need to.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns)
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, doc, false); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentPostgres) loadChildren(ctx context.Context, doc *model.Document, activeOnly bool) error {
	states := ""
	if activeOnly {
		states = ` AND workflow_state <> 'removed'`
	}

	if err := func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, document_id, language_id, name, description, extension_file,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
			FROM document_translations WHERE document_id = $1`+states+` ORDER BY id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var t model.DocumentTranslation
			if err := rows.Scan(&t.ID, &t.DocumentID, &t.LanguageID, &t.Name, &t.Description, &t.ExtensionFile,
				&t.CreatedAt, &t.UpdatedAt, &t.CreatedByUserID, &t.UpdatedByUserID, &t.WorkflowState); err != nil {
				return err
			}
			doc.Translations = append(doc.Translations, t)
		}
		return rows.Err()
	}(); err != nil {
		return err
	}

	if err := func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, document_id, language_id, extension, name, file, hash,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
			FROM document_uploaded_datas WHERE document_id = $1`+states+` ORDER BY id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var u model.DocumentUploadedData
			if err := rows.Scan(&u.ID, &u.DocumentID, &u.LanguageID, &u.Extension, &u.Name, &u.File, &u.Hash,
				&u.CreatedAt, &u.UpdatedAt, &u.CreatedByUserID, &u.UpdatedByUserID, &u.WorkflowState); err != nil {
				return err
			}
			doc.UploadedData = append(doc.UploadedData, u)
		}
		return rows.Err()
	}(); err != nil {
		return err
	}

	if err := func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, document_id, property_id,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
			FROM document_properties WHERE document_id = $1`+states+` ORDER BY id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p model.DocumentProperty
			if err := rows.Scan(&p.ID, &p.DocumentID, &p.PropertyID,
				&p.CreatedAt, &p.UpdatedAt, &p.CreatedByUserID, &p.UpdatedByUserID, &p.WorkflowState); err != nil {
				return err
			}
			doc.Properties = append(doc.Properties, p)
		}
		return rows.Err()
	}(); err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, property_id, sdk_site_id, sdk_case_id,
			created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state
		FROM document_sites WHERE document_id = $1`+states+` ORDER BY id`, doc.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.DocumentSite
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.PropertyID, &s.SdkSiteID, &s.SdkCaseID,
			&s.CreatedAt, &s.UpdatedAt, &s.CreatedByUserID, &s.UpdatedByUserID, &s.WorkflowState); err != nil {
			return err
		}
		doc.Sites = append(doc.Sites, s)
	}
	return rows.Err()
}

func buildDocumentFilter(q repository.DocumentQuery) (string, []any) {
	where := []string{`workflow_state <> 'removed'`}
	args := []any{}

	if q.PropertyID != -1 {
		args = append(args, q.PropertyID)
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM document_properties dp WHERE dp.document_id = documents.id AND dp.property_id = $%d AND dp.workflow_state <> 'removed')`,
			len(args)))
	}
	if q.FolderID != nil {
		args = append(args, *q.FolderID)
		where = append(where, fmt.Sprintf(`folder_id = $%d`, len(args)))
	}
	if q.DocumentID != nil {
		args = append(args, *q.DocumentID)
		where = append(where, fmt.Sprintf(`id = $%d`, len(args)))
	}
	if q.Expiration != nil {
		now := q.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		soon := now.Add(30 * 24 * time.Hour)
		switch *q.Expiration {
		case repository.ExpirationExpired:
			args = append(args, now)
			where = append(where, fmt.Sprintf(`end_at <= $%d`, len(args)))
		case repository.ExpirationSoon:
			args = append(args, now, soon)
			where = append(where, fmt.Sprintf(`end_at > $%d AND end_at <= $%d`, len(args)-1, len(args)))
		case repository.ExpirationLater:
			args = append(args, soon)
			where = append(where, fmt.Sprintf(`end_at > $%d`, len(args)))
		}
	}

	return strings.Join(where, " AND "), args
}

func documentSortClause(sort string, dsc bool) string {
	col, ok := documentSortColumns[sort]
	if !ok {
		return `created_at DESC, id DESC`
	}
	dir := "ASC"
	if dsc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

// List returns a filtered, sorted page with active children embedded.
// The total is counted first and the page fetch is skipped when it is zero.
func (r *DocumentPostgres) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	where, args := buildDocumentFilter(q)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	items := make([]model.Document, 0)
	if total == 0 {
		return &repository.PageResult[model.Document]{Items: items, Total: 0}, nil
	}

	pageArgs := append(args, q.Limit, q.Offset)
	qList := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		documentColumns, where, documentSortClause(q.Sort, q.SortDsc), len(pageArgs)-1, len(pageArgs))

	rows, err := r.db.QueryContext(ctx, qList, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := r.loadChildren(ctx, &items[i], true); err != nil {
			return nil, err
		}
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Names returns id/name pairs in the requested language, ordered by name.
func (r *DocumentPostgres) Names(ctx context.Context, languageID, propertyID int64) ([]model.DocumentName, error) {
	q := `
		SELECT d.id, t.name
		FROM documents d
		JOIN document_translations t
			ON t.document_id = d.id AND t.language_id = $1 AND t.workflow_state <> 'removed'
		WHERE d.workflow_state <> 'removed'`
	args := []any{languageID}
	if propertyID != -1 {
		args = append(args, propertyID)
		q += `
		AND EXISTS (SELECT 1 FROM document_properties dp WHERE dp.document_id = d.id AND dp.property_id = $2 AND dp.workflow_state <> 'removed')`
	}
	q += `
		ORDER BY t.name, d.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]model.DocumentName, 0)
	for rows.Next() {
		var n model.DocumentName
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Create inserts the aggregate and all its children in one transaction and
// assigns the generated ids back onto the models.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO documents (start_at, end_at, folder_id, status, is_locked,
			created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $7, $8)
		RETURNING id`,
		doc.StartAt, doc.EndAt, doc.FolderID, doc.Status, doc.IsLocked,
		now, doc.CreatedByUserID, model.WorkflowStateCreated,
	).Scan(&doc.ID); err != nil {
		return nil, err
	}

	for i := range doc.Translations {
		t := &doc.Translations[i]
		t.DocumentID = doc.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO document_translations (document_id, language_id, name, description, extension_file,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $7, $8)
			RETURNING id`,
			t.DocumentID, t.LanguageID, t.Name, t.Description, t.ExtensionFile,
			now, doc.CreatedByUserID, model.WorkflowStateCreated,
		).Scan(&t.ID); err != nil {
			return nil, err
		}
	}

	for i := range doc.UploadedData {
		u := &doc.UploadedData[i]
		u.DocumentID = doc.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO document_uploaded_datas (document_id, language_id, extension, name, file, hash,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $8, $9)
			RETURNING id`,
			u.DocumentID, u.LanguageID, u.Extension, u.Name, u.File, u.Hash,
			now, doc.CreatedByUserID, model.WorkflowStateCreated,
		).Scan(&u.ID); err != nil {
			return nil, err
		}
	}

	for i := range doc.Properties {
		p := &doc.Properties[i]
		p.DocumentID = doc.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO document_properties (document_id, property_id,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $3, $4, $4, $5)
			RETURNING id`,
			p.DocumentID, p.PropertyID,
			now, doc.CreatedByUserID, model.WorkflowStateCreated,
		).Scan(&p.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Apply executes every mutation in the change set in one transaction.
func (r *DocumentPostgres) Apply(ctx context.Context, cs *model.DocumentChangeSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	for _, t := range cs.UpdateTranslations {
		if _, err := tx.ExecContext(ctx, `
			UPDATE document_translations
			SET name = $1, description = $2, extension_file = $3, updated_at = $4, updated_by_user_id = $5
			WHERE id = $6`,
			t.Name, t.Description, t.ExtensionFile, now, cs.UserID, t.ID); err != nil {
			return err
		}
	}

	for _, u := range cs.UpsertUploads {
		if u.ID == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO document_uploaded_datas (document_id, language_id, extension, name, file, hash,
					created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $8, $9)`,
				cs.DocumentID, u.LanguageID, u.Extension, u.Name, u.File, u.Hash,
				now, cs.UserID, model.WorkflowStateCreated); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
				UPDATE document_uploaded_datas
				SET name = $1, file = $2, hash = $3, updated_at = $4, updated_by_user_id = $5
				WHERE id = $6`,
				u.Name, u.File, u.Hash, now, cs.UserID, u.ID); err != nil {
				return err
			}
		}
	}

	for _, p := range cs.AddProperties {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_properties (document_id, property_id,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $3, $4, $4, $5)`,
			cs.DocumentID, p.PropertyID, now, cs.UserID, model.WorkflowStateCreated); err != nil {
			return err
		}
	}

	if err := softDeleteRows(ctx, tx, "document_properties", cs.RemovePropertyIDs, now, cs.UserID); err != nil {
		return err
	}
	if err := softDeleteRows(ctx, tx, "document_sites", cs.RemoveSiteIDs, now, cs.UserID); err != nil {
		return err
	}
	if err := softDeleteRows(ctx, tx, "document_translations", cs.RemoveTranslationIDs, now, cs.UserID); err != nil {
		return err
	}

	// The document row itself is written last, so the removal marker never
	// precedes its children's soft deletes.
	set := []string{`updated_at = $1`, `updated_by_user_id = $2`}
	args := []any{now, cs.UserID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if cs.EndAt != nil {
		add("end_at", *cs.EndAt)
	}
	if cs.FolderID != nil {
		add("folder_id", *cs.FolderID)
	}
	if cs.Status != nil {
		add("status", *cs.Status)
	}
	if cs.IsLocked != nil {
		add("is_locked", *cs.IsLocked)
	}
	if cs.SoftDeleteDocument {
		add("workflow_state", model.WorkflowStateRemoved)
	}
	args = append(args, cs.DocumentID)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE documents SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args)), args...); err != nil {
		return err
	}

	return tx.Commit()
}

func softDeleteRows(ctx context.Context, tx *sql.Tx, table string, ids []int64, now time.Time, userID int64) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s SET workflow_state = $1, updated_at = $2, updated_by_user_id = $3 WHERE id = $4`, table),
			model.WorkflowStateRemoved, now, userID, id); err != nil {
			return err
		}
	}
	return nil
}

// SaveSite inserts or updates the active site association for the
// (document, property) pair, so retries never duplicate rows.
func (r *DocumentPostgres) SaveSite(ctx context.Context, site *model.DocumentSite) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM document_sites
		WHERE document_id = $1 AND property_id = $2 AND workflow_state <> 'removed'`,
		site.DocumentID, site.PropertyID).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO document_sites (document_id, property_id, sdk_site_id, sdk_case_id,
				created_at, updated_at, created_by_user_id, updated_by_user_id, workflow_state)
			VALUES ($1, $2, $3, $4, $5, $5, $6, $6, $7)
			RETURNING id`,
			site.DocumentID, site.PropertyID, site.SdkSiteID, site.SdkCaseID,
			now, site.CreatedByUserID, model.WorkflowStateCreated,
		).Scan(&site.ID); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		site.ID = existingID
		if _, err := tx.ExecContext(ctx, `
			UPDATE document_sites SET sdk_site_id = $1, sdk_case_id = $2, updated_at = $3, updated_by_user_id = $4
			WHERE id = $5`,
			site.SdkSiteID, site.SdkCaseID, now, site.UpdatedByUserID, existingID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
