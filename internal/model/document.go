package model

import "time"

// Document is the aggregate root for a configuration document: a validity
// window, an owning folder, and the translated metadata, uploaded files and
// property associations that belong to it. Children include soft-deleted rows;
// callers filter with the Active* accessors.
type Document struct {
	ID       int64     `json:"id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	FolderID int64     `json:"folder_id"`
	Status   bool      `json:"status"`
	IsLocked bool      `json:"is_locked"`
	Audit

	Translations []DocumentTranslation  `json:"translations"`
	UploadedData []DocumentUploadedData `json:"uploaded_data"`
	Properties   []DocumentProperty     `json:"properties"`
	Sites        []DocumentSite         `json:"sites"`
}

// DocumentTranslation is the per-language name/description of a document,
// tagged with the file extension the translation belongs to.
type DocumentTranslation struct {
	ID            int64  `json:"id"`
	DocumentID    int64  `json:"document_id"`
	LanguageID    int64  `json:"language_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ExtensionFile string `json:"extension_file"`
	Audit
}

// DocumentUploadedData is one stored file per (language, extension) pair.
// File is the content-addressed storage key, Hash the lowercase hex digest of
// the stored bytes.
type DocumentUploadedData struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	LanguageID int64  `json:"language_id"`
	Extension  string `json:"extension"`
	Name       string `json:"name"`
	File       string `json:"file"`
	Hash       string `json:"hash"`
	Audit
}

// DocumentProperty associates a document with a property (site/location).
type DocumentProperty struct {
	ID         int64 `json:"id"`
	DocumentID int64 `json:"document_id"`
	PropertyID int64 `json:"property_id"`
	// PropertyName is resolved on reads for display; not persisted here.
	PropertyName string `json:"property_name,omitempty"`
	Audit
}

// DocumentSite records a case materialized in the external hierarchy for one
// property of the document. SdkCaseID is zero until the worker deploys it.
type DocumentSite struct {
	ID         int64 `json:"id"`
	DocumentID int64 `json:"document_id"`
	PropertyID int64 `json:"property_id"`
	SdkSiteID  int64 `json:"sdk_site_id"`
	SdkCaseID  int64 `json:"sdk_case_id"`
	Audit
}

// DocumentName is the id/name pair used by the simple listing.
type DocumentName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ActiveTranslations returns translations that are not soft-deleted.
func (d *Document) ActiveTranslations() []DocumentTranslation {
	out := make([]DocumentTranslation, 0, len(d.Translations))
	for _, t := range d.Translations {
		if !t.Removed() {
			out = append(out, t)
		}
	}
	return out
}

// ActiveUploadedData returns uploads that are not soft-deleted.
func (d *Document) ActiveUploadedData() []DocumentUploadedData {
	out := make([]DocumentUploadedData, 0, len(d.UploadedData))
	for _, u := range d.UploadedData {
		if !u.Removed() {
			out = append(out, u)
		}
	}
	return out
}

// ActiveProperties returns property associations that are not soft-deleted.
func (d *Document) ActiveProperties() []DocumentProperty {
	out := make([]DocumentProperty, 0, len(d.Properties))
	for _, p := range d.Properties {
		if !p.Removed() {
			out = append(out, p)
		}
	}
	return out
}

// ActiveSites returns site associations that are not soft-deleted.
func (d *Document) ActiveSites() []DocumentSite {
	out := make([]DocumentSite, 0, len(d.Sites))
	for _, s := range d.Sites {
		if !s.Removed() {
			out = append(out, s)
		}
	}
	return out
}

// FindUpload returns the active upload with the given row id, or nil.
func (d *Document) FindUpload(id int64) *DocumentUploadedData {
	for i := range d.UploadedData {
		u := &d.UploadedData[i]
		if u.ID == id && !u.Removed() {
			return u
		}
	}
	return nil
}

// FindUploadByKey returns the active upload for a (language, extension) pair,
// or nil. At most one such row exists among active uploads.
func (d *Document) FindUploadByKey(languageID int64, extension string) *DocumentUploadedData {
	for i := range d.UploadedData {
		u := &d.UploadedData[i]
		if u.LanguageID == languageID && u.Extension == extension && !u.Removed() {
			return u
		}
	}
	return nil
}

// DocumentChangeSet collects every local mutation of one reconciliation call.
// The repository applies the whole set in a single transaction; external side
// effects (storage writes, remote case deletions) have already happened by the
// time a change set is applied.
type DocumentChangeSet struct {
	DocumentID int64
	UserID     int64

	EndAt    *time.Time
	FolderID *int64
	Status   *bool
	IsLocked *bool

	UpdateTranslations   []DocumentTranslation
	UpsertUploads        []DocumentUploadedData
	AddProperties        []DocumentProperty
	RemovePropertyIDs    []int64
	RemoveSiteIDs        []int64
	RemoveTranslationIDs []int64

	SoftDeleteDocument bool
}
