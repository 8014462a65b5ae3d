package repository

import (
	"context"
	"time"

	"backendconf/internal/model"
)

// Expiration filter buckets for document listing. Buckets are mutually
// exclusive; the zero pointer means unfiltered.
const (
	ExpirationExpired  = 0 // end_at <= now
	ExpirationSoon     = 1 // now < end_at <= now+30d
	ExpirationLater    = 2 // end_at > now+30d
	expirationSoonDays = 30
)

// PostSortFields lists sort keys that cannot be expressed in the query and
// are resolved after materialization instead.
var PostSortFields = map[string]bool{
	"property_names": true,
}

// DocumentQuery holds the filter/sort/page parameters for document listing.
// Filters compose conjunctively. PropertyID of -1 means unfiltered.
type DocumentQuery struct {
	PropertyID int64
	FolderID   *int64
	DocumentID *int64
	Expiration *int
	Sort       string
	SortDsc    bool
	Now        time.Time
	PageQuery
}

// DocumentRepository defines data access for document aggregates using SQL
// queries only. No business logic here; the reconciliation engine computes
// change sets and the repository applies them transactionally.
type DocumentRepository interface {
	// FindByID loads the aggregate with all child collections, including
	// soft-deleted rows. Returns sql.ErrNoRows-wrapped error when absent.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns a filtered, sorted page of aggregates with their active
	// children embedded, and the total count computed before the page slice.
	// When the count is zero the page fetch is skipped.
	List(ctx context.Context, q DocumentQuery) (*PageResult[model.Document], error)

	// Names returns id/name pairs for active documents using the translation
	// in the given language, ordered by name. propertyID of -1 is unfiltered.
	Names(ctx context.Context, languageID, propertyID int64) ([]model.DocumentName, error)

	// Create inserts the aggregate and all its children in one transaction,
	// assigning generated ids to the passed models.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Apply executes every mutation in the change set in one transaction.
	Apply(ctx context.Context, cs *model.DocumentChangeSet) error

	// SaveSite inserts or updates a materialized site association. Used by
	// the deployment worker; keyed by (document, property) among active rows.
	SaveSite(ctx context.Context, site *model.DocumentSite) error
}
