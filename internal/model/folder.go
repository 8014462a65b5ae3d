package model

// Folder is the aggregate root for a document folder. The folder itself holds
// no scalar data beyond identity; everything lives in its translations and the
// per-property mappings into the external hierarchy.
type Folder struct {
	ID int64 `json:"id"`
	Audit

	Translations []FolderTranslation `json:"translations"`
	Properties   []FolderProperty    `json:"properties"`

	// IsDeletable is derived on reads: true while no active document
	// references the folder.
	IsDeletable bool `json:"is_deletable"`
}

// FolderTranslation is the per-language name/description of a folder.
type FolderTranslation struct {
	ID          int64  `json:"id"`
	FolderID    int64  `json:"folder_id"`
	LanguageID  int64  `json:"language_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Audit
}

// FolderProperty maps the local folder to its mirrored folder in the external
// hierarchy for one property.
type FolderProperty struct {
	ID          int64 `json:"id"`
	FolderID    int64 `json:"folder_id"`
	PropertyID  int64 `json:"property_id"`
	SdkFolderID int64 `json:"sdk_folder_id"`
	Audit
}

// FolderName is the id/name pair used by the simple listing.
type FolderName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Property mirrors an external site/location entity owned by a sibling
// plugin. Referenced by id within this workflow, never mutated here.
type Property struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SdkFolderID int64  `json:"sdk_folder_id"`
	SdkSiteID   int64  `json:"sdk_site_id"`
	Audit
}

// ActiveTranslations returns translations that are not soft-deleted.
func (f *Folder) ActiveTranslations() []FolderTranslation {
	out := make([]FolderTranslation, 0, len(f.Translations))
	for _, t := range f.Translations {
		if !t.Removed() {
			out = append(out, t)
		}
	}
	return out
}

// ActiveProperties returns property mappings that are not soft-deleted.
func (f *Folder) ActiveProperties() []FolderProperty {
	out := make([]FolderProperty, 0, len(f.Properties))
	for _, p := range f.Properties {
		if !p.Removed() {
			out = append(out, p)
		}
	}
	return out
}

// FolderChangeSet collects the local mutations of one folder call, applied in
// a single transaction by the repository.
type FolderChangeSet struct {
	FolderID int64
	UserID   int64

	UpdateTranslations []FolderTranslation
	CreateTranslations []FolderTranslation
	AddProperties      []FolderProperty

	SoftDeleteFolder bool
}
