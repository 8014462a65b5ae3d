package repository

import (
	"context"

	"backendconf/internal/model"
)

// FolderQuery holds the filter/page parameters for folder listing. Ordering
// is by the folder's translation name in LanguageID; folders without a
// translation in that language sort last.
type FolderQuery struct {
	LanguageID int64
	FolderID   *int64
	PageQuery
}

// FolderRepository defines data access for folder aggregates.
type FolderRepository interface {
	// FindByID loads the aggregate with its active child collections and
	// the derived IsDeletable flag.
	FindByID(ctx context.Context, id int64) (*model.Folder, error)

	// List returns a page of active folders ordered by an explicit rank:
	// the translation name in the caller's language, NULLs last.
	List(ctx context.Context, q FolderQuery) (*PageResult[model.Folder], error)

	// ListAll returns every active folder with its active translations.
	ListAll(ctx context.Context) ([]model.Folder, error)

	// Create inserts the folder and its translations in one transaction.
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// Apply executes every mutation in the change set in one transaction.
	Apply(ctx context.Context, cs *model.FolderChangeSet) error

	// HasActiveDocuments reports whether any non-removed document references
	// the folder. A folder is deletable only when this is false.
	HasActiveDocuments(ctx context.Context, folderID int64) (bool, error)
}
