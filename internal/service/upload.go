package service

import (
	"bytes"
	"context"
	"log"

	"backendconf/internal/checksum"
	"backendconf/internal/model"
)

// uploadActionKind tags the branch an upload entry resolves to. Each entry is
// classified exactly once, before any side effect runs.
type uploadActionKind int

const (
	// uploadActionNew inserts a fresh upload row, storing bytes when present.
	uploadActionNew uploadActionKind = iota
	// uploadActionReplace re-hashes and re-stores new bytes over an existing row.
	uploadActionReplace
	// uploadActionCopyFrom shares another upload's stored blob without
	// touching storage.
	uploadActionCopyFrom
	// uploadActionRenameOnly updates metadata only. The hash and filename are
	// accepted as supplied, without checking that such a blob exists.
	uploadActionRenameOnly
)

type uploadAction struct {
	kind     uploadActionKind
	existing *model.DocumentUploadedData
	entry    *DocumentUploadModel
}

// carriesNewContent reports whether the action stores fresh bytes, the
// precondition for deriving a PDF rendition from it.
func (a uploadAction) carriesNewContent() bool {
	return a.kind == uploadActionReplace || (a.kind == uploadActionNew && len(a.entry.Data) > 0)
}

// resolveUploadAction classifies one desired upload entry against the loaded
// aggregate. doc is nil on create, where every entry is a new row.
func resolveUploadAction(doc *model.Document, entry *DocumentUploadModel) uploadAction {
	var existing *model.DocumentUploadedData
	if doc != nil {
		if entry.ID != 0 {
			existing = doc.FindUpload(entry.ID)
		} else {
			existing = doc.FindUploadByKey(entry.LanguageID, entry.Extension)
		}
	}

	switch {
	case existing == nil:
		return uploadAction{kind: uploadActionNew, entry: entry}
	case len(entry.Data) > 0:
		return uploadAction{kind: uploadActionReplace, existing: existing, entry: entry}
	case entry.CopyFromID != 0:
		return uploadAction{kind: uploadActionCopyFrom, existing: existing, entry: entry}
	default:
		return uploadAction{kind: uploadActionRenameOnly, existing: existing, entry: entry}
	}
}

// isOfficeExtension reports whether the extension names an editable document
// format that gets a derived PDF rendition. Comparison is exact.
func isOfficeExtension(ext string) bool {
	return ext == "docx" || ext == "doc"
}

// suppliedPdfNames records, per language, whether the request itself carries
// a PDF entry with a display name. Snapshotted before applyPdfNameRule fills
// empty names, so a placeholder PDF entry still gets a derived rendition.
func suppliedPdfNames(m *DocumentModel) map[int64]bool {
	named := make(map[int64]bool)
	for _, u := range m.Uploads {
		if u.Extension == "pdf" && u.Name != "" {
			named[u.LanguageID] = true
		}
	}
	return named
}

// applyPdfNameRule fills empty PDF display names from the sibling DOCX entry
// of the same language, extension swapped.
func applyPdfNameRule(m *DocumentModel) {
	docxNames := make(map[int64]string)
	for _, u := range m.Uploads {
		if isOfficeExtension(u.Extension) && u.Name != "" {
			docxNames[u.LanguageID] = u.Name
		}
	}
	for i := range m.Uploads {
		u := &m.Uploads[i]
		if u.Extension == "pdf" && u.Name == "" {
			if name, ok := docxNames[u.LanguageID]; ok {
				u.Name = checksum.SwapExtension(name, "pdf")
			}
		}
	}
	for i := range m.Translations {
		t := &m.Translations[i]
		if t.ExtensionFile == "pdf" && t.Name == "" {
			if name, ok := docxNames[t.LanguageID]; ok {
				t.Name = checksum.SwapExtension(name, "pdf")
			}
		}
	}
}

// storeBytes hashes the payload and writes it to both the archive and the
// general object store under the content-derived key.
func (s *documentService) storeBytes(ctx context.Context, data []byte, extension string) (key, digest string, err error) {
	digest = checksum.Sum(data)
	key = checksum.Key(digest, extension)
	size := int64(len(data))
	if _, err = s.store.Upload(ctx, bytes.NewReader(data), digest, key, size); err != nil {
		return "", "", err
	}
	if _, err = s.store.PutToStorage(ctx, bytes.NewReader(data), key, size); err != nil {
		return "", "", err
	}
	return key, digest, nil
}

// runUploadAction performs the storage side effects of one resolved action
// and returns the upload rows to upsert plus any translation renames that
// track a replaced source document. doc is nil on create. Derived PDF
// renditions are produced separately, by derivePdf.
func (s *documentService) runUploadAction(ctx context.Context, doc *model.Document, action uploadAction) ([]model.DocumentUploadedData, []model.DocumentTranslation, error) {
	entry := action.entry

	switch action.kind {
	case uploadActionNew:
		u := model.DocumentUploadedData{
			LanguageID: entry.LanguageID,
			Extension:  entry.Extension,
			Name:       entry.Name,
			File:       entry.FileName,
			Hash:       entry.Hash,
		}
		if len(entry.Data) > 0 {
			key, digest, err := s.storeBytes(ctx, entry.Data, entry.Extension)
			if err != nil {
				return nil, nil, err
			}
			u.File = key
			u.Hash = digest
		}
		return []model.DocumentUploadedData{u}, nil, nil

	case uploadActionReplace:
		u := *action.existing
		u.Name = entry.Name
		key, digest, err := s.storeBytes(ctx, entry.Data, entry.Extension)
		if err != nil {
			return nil, nil, err
		}
		u.File = key
		u.Hash = digest

		// The sibling PDF translation keeps tracking the source document's
		// display name.
		var renames []model.DocumentTranslation
		if isOfficeExtension(entry.Extension) && doc != nil {
			for _, t := range doc.ActiveTranslations() {
				if t.LanguageID == entry.LanguageID && t.ExtensionFile == "pdf" {
					t.Name = checksum.SwapExtension(entry.Name, "pdf")
					renames = append(renames, t)
				}
			}
		}
		return []model.DocumentUploadedData{u}, renames, nil

	case uploadActionCopyFrom:
		u := *action.existing
		u.Name = entry.Name
		u.File = ""
		u.Hash = ""
		if doc != nil {
			if source := doc.FindUpload(entry.CopyFromID); source != nil {
				u.File = source.File
				u.Hash = source.Hash
			}
		}
		return []model.DocumentUploadedData{u}, nil, nil

	default: // uploadActionRenameOnly
		u := *action.existing
		u.Name = entry.Name
		if entry.FileName != "" {
			u.File = entry.FileName
		}
		if entry.Hash != "" {
			u.Hash = entry.Hash
		}
		return []model.DocumentUploadedData{u}, nil, nil
	}
}

// derivePdf converts an office document to PDF and stores the rendition.
// pdfNamed holds the languages for which the client supplied its own named
// PDF entry; those get no derived rendition. A conversion or validation
// failure skips the derived record and leaves the source upload intact.
func (s *documentService) derivePdf(ctx context.Context, doc *model.Document, pdfNamed map[int64]bool, entry *DocumentUploadModel) *model.DocumentUploadedData {
	if !isOfficeExtension(entry.Extension) || pdfNamed[entry.LanguageID] {
		return nil
	}

	pdfData, err := s.convert.ConvertToPdf(ctx, entry.Name, entry.Data)
	if err != nil {
		log.Printf("convert %q to pdf: %v", entry.Name, err)
		return nil
	}

	key, digest, err := s.storeBytes(ctx, pdfData, "pdf")
	if err != nil {
		log.Printf("store derived pdf for %q: %v", entry.Name, err)
		return nil
	}

	u := &model.DocumentUploadedData{
		LanguageID: entry.LanguageID,
		Extension:  "pdf",
		Name:       checksum.SwapExtension(entry.Name, "pdf"),
		File:       key,
		Hash:       digest,
	}
	if doc != nil {
		if existing := doc.FindUploadByKey(entry.LanguageID, "pdf"); existing != nil {
			u.ID = existing.ID
		}
	}
	return u
}

// uploadSlot identifies the unique (language, extension) position an upload
// row occupies on a document.
type uploadSlot struct {
	languageID int64
	extension  string
}

// mergeUploadRows collapses rows targeting the same slot into one, so a
// derived rendition fills the client's placeholder PDF entry instead of
// becoming a second active row. Content from a later row wins; the slot keeps
// the first row identity that carries one.
func mergeUploadRows(rows []model.DocumentUploadedData) []model.DocumentUploadedData {
	merged := make([]model.DocumentUploadedData, 0, len(rows))
	index := make(map[uploadSlot]int, len(rows))
	for _, row := range rows {
		slot := uploadSlot{row.LanguageID, row.Extension}
		i, ok := index[slot]
		if !ok {
			index[slot] = len(merged)
			merged = append(merged, row)
			continue
		}
		if row.File != "" {
			merged[i].File = row.File
			merged[i].Hash = row.Hash
		}
		if merged[i].Name == "" {
			merged[i].Name = row.Name
		}
		if merged[i].ID == 0 {
			merged[i].ID = row.ID
		}
	}
	return merged
}
