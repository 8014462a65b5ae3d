package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"backendconf/internal/model"
	"backendconf/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var auditCols = []string{"created_at", "updated_at", "created_by_user_id", "updated_by_user_id", "workflow_state"}

func docCols() []string {
	return append([]string{"id", "start_at", "end_at", "folder_id", "status", "is_locked"}, auditCols...)
}

func expectEmptyChildren(mock sqlmock.Sqlmock, docID int64) {
	mock.ExpectQuery("SELECT (.+) FROM document_translations WHERE document_id").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "language_id", "name", "description", "extension_file"}, auditCols...)))
	mock.ExpectQuery("SELECT (.+) FROM document_uploaded_datas WHERE document_id").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "language_id", "extension", "name", "file", "hash"}, auditCols...)))
	mock.ExpectQuery("SELECT (.+) FROM document_properties WHERE document_id").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "property_id"}, auditCols...)))
	mock.ExpectQuery("SELECT (.+) FROM document_sites WHERE document_id").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "property_id", "sdk_site_id", "sdk_case_id"}, auditCols...)))
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(docCols()).
				AddRow(7, now, now.Add(24*time.Hour), 3, false, false, now, now, 1, 1, "created"))

		mock.ExpectQuery("SELECT (.+) FROM document_translations WHERE document_id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "language_id", "name", "description", "extension_file"}, auditCols...)).
				AddRow(11, 7, 1, "Manual", "", "docx", now, now, 1, 1, "created").
				AddRow(12, 7, 2, "Vejledning", "", "docx", now, now, 1, 1, "created"))
		mock.ExpectQuery("SELECT (.+) FROM document_uploaded_datas WHERE document_id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "language_id", "extension", "name", "file", "hash"}, auditCols...)).
				AddRow(21, 7, 1, "docx", "manual.docx", "abc123.docx", "abc123", now, now, 1, 1, "created"))
		mock.ExpectQuery("SELECT (.+) FROM document_properties WHERE document_id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "property_id"}, auditCols...)).
				AddRow(31, 7, 5, now, now, 1, 1, "created"))
		mock.ExpectQuery("SELECT (.+) FROM document_sites WHERE document_id").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(append([]string{"id", "document_id", "property_id", "sdk_site_id", "sdk_case_id"}, auditCols...)).
				AddRow(41, 7, 5, 9, 77, now, now, 1, 1, "created"))

		doc, err := repo.FindByID(ctx, 7)

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, int64(7), doc.ID)
		assert.Len(t, doc.Translations, 2)
		assert.Len(t, doc.UploadedData, 1)
		assert.Len(t, doc.Properties, 1)
		assert.Len(t, doc.Sites, 1)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, 99)

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success with property filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE (.+) ORDER BY").
			WithArgs(int64(5), 10, 0).
			WillReturnRows(sqlmock.NewRows(docCols()).
				AddRow(7, now, now.Add(24*time.Hour), 3, false, false, now, now, 1, 1, "created"))
		expectEmptyChildren(mock, 7)

		res, err := repo.List(ctx, repository.DocumentQuery{
			PropertyID: 5,
			PageQuery:  repository.PageQuery{Limit: 10},
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("zero total skips page query", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		res, err := repo.List(ctx, repository.DocumentQuery{
			PropertyID: -1,
			PageQuery:  repository.PageQuery{Limit: 10},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expiration bucket adds range condition", func(t *testing.T) {
		exp := repository.ExpirationSoon
		at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WithArgs(at, at.Add(30*24*time.Hour)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		_, err := repo.List(ctx, repository.DocumentQuery{
			PropertyID: -1,
			Expiration: &exp,
			Now:        at,
			PageQuery:  repository.PageQuery{Limit: 10},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_Names(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT d.id, t.name").
		WithArgs(int64(2), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Alpha").
			AddRow(2, "Beta"))

	names, err := repo.Names(ctx, 2, 5)

	assert.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Equal(t, "Alpha", names[0].Name)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	doc := &model.Document{
		StartAt:  now,
		EndAt:    now.Add(24 * time.Hour),
		FolderID: 3,
		Audit:    model.Audit{CreatedByUserID: 1},
		Translations: []model.DocumentTranslation{
			{LanguageID: 1, Name: "Manual", ExtensionFile: "docx"},
		},
		UploadedData: []model.DocumentUploadedData{
			{LanguageID: 1, Extension: "docx", Name: "manual.docx", File: "abc.docx", Hash: "abc"},
		},
		Properties: []model.DocumentProperty{
			{PropertyID: 5},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO document_translations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO document_uploaded_datas").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectQuery("INSERT INTO document_properties").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectCommit()

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), result.ID)
	assert.Equal(t, int64(11), result.Translations[0].ID)
	assert.Equal(t, int64(7), result.Translations[0].DocumentID)
	assert.Equal(t, int64(21), result.UploadedData[0].ID)
	assert.Equal(t, int64(31), result.Properties[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Apply(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("soft delete cascade", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE document_sites SET workflow_state").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE document_translations SET workflow_state").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE documents SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Apply(ctx, &model.DocumentChangeSet{
			DocumentID:           7,
			UserID:               1,
			SoftDeleteDocument:   true,
			RemoveSiteIDs:        []int64{41},
			RemoveTranslationIDs: []int64{11},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert uploads and properties", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE document_translations").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO document_uploaded_datas").
			WillReturnResult(sqlmock.NewResult(22, 1))
		mock.ExpectExec("UPDATE document_uploaded_datas").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO document_properties").
			WillReturnResult(sqlmock.NewResult(32, 1))
		mock.ExpectExec("UPDATE document_properties SET workflow_state").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE documents SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		status := true
		err := repo.Apply(ctx, &model.DocumentChangeSet{
			DocumentID: 7,
			UserID:     1,
			Status:     &status,
			UpdateTranslations: []model.DocumentTranslation{
				{ID: 11, Name: "Renamed", ExtensionFile: "docx"},
			},
			UpsertUploads: []model.DocumentUploadedData{
				{LanguageID: 2, Extension: "pdf", Name: "manual.pdf", File: "def.pdf", Hash: "def"},
				{ID: 21, LanguageID: 1, Extension: "docx", Name: "manual.docx", File: "abc.docx", Hash: "abc"},
			},
			AddProperties:     []model.DocumentProperty{{PropertyID: 6}},
			RemovePropertyIDs: []int64{31},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_SaveSite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("inserts when no active row exists", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM document_sites").
			WithArgs(int64(7), int64(5)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("INSERT INTO document_sites").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
		mock.ExpectCommit()

		site := &model.DocumentSite{DocumentID: 7, PropertyID: 5, SdkSiteID: 9, SdkCaseID: 77}
		err := repo.SaveSite(ctx, site)

		assert.NoError(t, err)
		assert.Equal(t, int64(41), site.ID)
	})

	t.Run("updates the existing active row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM document_sites").
			WithArgs(int64(7), int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
		mock.ExpectExec("UPDATE document_sites SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		site := &model.DocumentSite{DocumentID: 7, PropertyID: 5, SdkSiteID: 9, SdkCaseID: 78}
		err := repo.SaveSite(ctx, site)

		assert.NoError(t, err)
		assert.Equal(t, int64(41), site.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func IsNoRowsError(err error) bool {
	return err == sql.ErrNoRows
}
