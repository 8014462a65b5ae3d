package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"backendconf/internal/convert"
	"backendconf/internal/model"
	"backendconf/internal/queue"
	"backendconf/internal/repository"
	"backendconf/internal/sdk"
	"backendconf/internal/storage"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrTranslationNotFound = errors.New("document translation not found")
	ErrFolderRequired      = errors.New("folder cannot be empty")
	ErrUploadNotFound      = errors.New("uploaded file not found")
)

// Default lifetime of a document whose end date is left unset.
const defaultValidityYears = 10

const fileURLExpiry = 15 * time.Minute

// DocumentModel is the desired state of a document aggregate as submitted by
// the client. On update, child entries are matched to persisted rows by id.
type DocumentModel struct {
	ID           int64                      `json:"id"`
	StartAt      time.Time                  `json:"start_at"`
	EndAt        time.Time                  `json:"end_at"`
	FolderID     int64                      `json:"folder_id"`
	Status       bool                       `json:"status"`
	Translations []DocumentTranslationModel `json:"translations"`
	Uploads      []DocumentUploadModel      `json:"uploads"`
	PropertyIDs  []int64                    `json:"property_ids"`
}

// DocumentTranslationModel is one per-language name/description entry.
type DocumentTranslationModel struct {
	ID            int64  `json:"id"`
	LanguageID    int64  `json:"language_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ExtensionFile string `json:"extension_file"`
}

// DocumentUploadModel is one per-(language, extension) upload entry. Data
// carries the raw bytes when the client sent a file part; CopyFromID
// references another persisted upload whose stored blob should be shared.
type DocumentUploadModel struct {
	ID         int64  `json:"id"`
	LanguageID int64  `json:"language_id"`
	Extension  string `json:"extension"`
	Name       string `json:"name"`
	FileName   string `json:"file_name"`
	Hash       string `json:"hash"`
	CopyFromID int64  `json:"uploaded_data_id"`
	Data       []byte `json:"-"`
}

// DocumentIndexRequest holds the listing filter. A nil PropertyID means
// unfiltered (-1 internally).
type DocumentIndexRequest struct {
	PropertyID *int64 `json:"property_id"`
	FolderID   *int64 `json:"folder_id"`
	DocumentID *int64 `json:"document_id"`
	Expiration *int   `json:"expiration"`
	Sort       string `json:"sort"`
	IsSortDsc  bool   `json:"is_sort_dsc"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"entities"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling configuration documents.
type DocumentService interface {
	// Index returns a filtered, sorted page with property names resolved.
	Index(ctx context.Context, actor model.Actor, req DocumentIndexRequest) (*DocumentListResult, error)

	// Names returns id/name pairs in the actor's language, ordered by name.
	// propertyID of -1 means unfiltered.
	Names(ctx context.Context, actor model.Actor, propertyID int64) ([]model.DocumentName, error)

	// Get returns one aggregate with active children only.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// Create inserts a new aggregate from the desired state, storing upload
	// bytes and deriving PDF renditions where applicable.
	Create(ctx context.Context, actor model.Actor, m *DocumentModel) (*model.Document, error)

	// Update reconciles the desired state against the persisted aggregate.
	Update(ctx context.Context, actor model.Actor, m *DocumentModel) (*model.Document, error)

	// Delete soft-deletes the aggregate, removing materialized remote cases
	// first.
	Delete(ctx context.Context, actor model.Actor, id int64) error

	// FileURL returns a presigned download URL for the stored upload
	// identified by (document, language, extension).
	FileURL(ctx context.Context, id, languageID int64, extension string) (string, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo    repository.DocumentRepository
	props   repository.PropertyRepository
	store   storage.Storage
	convert convert.Converter
	sdk     sdk.Client
	events  queue.Publisher
	now     func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	repo repository.DocumentRepository,
	props repository.PropertyRepository,
	store storage.Storage,
	conv convert.Converter,
	sdkClient sdk.Client,
	events queue.Publisher,
) DocumentService {
	return &documentService{
		repo:    repo,
		props:   props,
		store:   store,
		convert: conv,
		sdk:     sdkClient,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Index(ctx context.Context, actor model.Actor, req DocumentIndexRequest) (*DocumentListResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	propertyID := int64(-1)
	if req.PropertyID != nil {
		propertyID = *req.PropertyID
	}

	q := repository.DocumentQuery{
		PropertyID: propertyID,
		FolderID:   req.FolderID,
		DocumentID: req.DocumentID,
		Expiration: req.Expiration,
		Sort:       req.Sort,
		SortDsc:    req.IsSortDsc,
		Now:        s.now(),
		PageQuery:  repository.PageQuery{Limit: limit, Offset: offset},
	}
	postSort := repository.PostSortFields[req.Sort]
	if postSort {
		q.Sort = ""
	}

	res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := s.resolvePropertyNames(ctx, res.Items); err != nil {
		return nil, err
	}

	if postSort && req.Sort == "property_names" {
		key := func(d *model.Document) string {
			names := make([]string, 0, len(d.Properties))
			for _, p := range d.Properties {
				names = append(names, p.PropertyName)
			}
			sort.Strings(names)
			return strings.Join(names, ", ")
		}
		sort.SliceStable(res.Items, func(i, j int) bool {
			less := key(&res.Items[i]) < key(&res.Items[j])
			if req.IsSortDsc {
				return !less
			}
			return less
		})
	}

	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// resolvePropertyNames annotates association rows with display names from the
// property registry.
func (s *documentService) resolvePropertyNames(ctx context.Context, docs []model.Document) error {
	idSet := make(map[int64]bool)
	for i := range docs {
		for _, p := range docs[i].Properties {
			idSet[p.PropertyID] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names, err := s.props.NamesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range docs {
		for j := range docs[i].Properties {
			docs[i].Properties[j].PropertyName = names[docs[i].Properties[j].PropertyID]
		}
	}
	return nil
}

func (s *documentService) Names(ctx context.Context, actor model.Actor, propertyID int64) ([]model.DocumentName, error) {
	return s.repo.Names(ctx, actor.LanguageID, propertyID)
}

func (s *documentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	doc.Translations = doc.ActiveTranslations()
	doc.UploadedData = doc.ActiveUploadedData()
	doc.Properties = doc.ActiveProperties()
	doc.Sites = doc.ActiveSites()

	docs := []model.Document{*doc}
	if err := s.resolvePropertyNames(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

func (s *documentService) Create(ctx context.Context, actor model.Actor, m *DocumentModel) (*model.Document, error) {
	if m.FolderID == 0 {
		return nil, ErrFolderRequired
	}

	now := s.now()
	startAt := m.StartAt
	if startAt.IsZero() {
		startAt = now
	}
	endAt := m.EndAt
	if endAt.IsZero() {
		endAt = now.AddDate(defaultValidityYears, 0, 0)
	}

	// Which languages brought their own named PDF entry is decided on the raw
	// request, before the name rule fills placeholder names.
	pdfNamed := suppliedPdfNames(m)
	applyPdfNameRule(m)

	status := m.Status
	if len(m.PropertyIDs) == 0 {
		status = false
	}

	doc := &model.Document{
		StartAt:  startAt,
		EndAt:    endAt,
		FolderID: m.FolderID,
		Status:   status,
		IsLocked: status,
		Audit: model.Audit{
			CreatedByUserID: actor.UserID,
			UpdatedByUserID: actor.UserID,
		},
	}

	for _, tm := range m.Translations {
		doc.Translations = append(doc.Translations, model.DocumentTranslation{
			LanguageID:    tm.LanguageID,
			Name:          tm.Name,
			Description:   tm.Description,
			ExtensionFile: tm.ExtensionFile,
		})
	}

	// Derived renditions go after every client row so their content wins the
	// slot merge.
	var derived []model.DocumentUploadedData
	for i := range m.Uploads {
		um := &m.Uploads[i]
		action := resolveUploadAction(nil, um)
		uploads, _, err := s.runUploadAction(ctx, nil, action)
		if err != nil {
			return nil, err
		}
		doc.UploadedData = append(doc.UploadedData, uploads...)
		if action.carriesNewContent() {
			if d := s.derivePdf(ctx, nil, pdfNamed, um); d != nil {
				derived = append(derived, *d)
			}
		}
	}
	doc.UploadedData = mergeUploadRows(append(doc.UploadedData, derived...))

	for _, pid := range m.PropertyIDs {
		doc.Properties = append(doc.Properties, model.DocumentProperty{PropertyID: pid})
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}

	if len(m.PropertyIDs) > 0 {
		if err := s.events.DocumentUpdated(ctx, stored.ID); err != nil {
			return nil, fmt.Errorf("publish document updated: %w", err)
		}
	}
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, actor model.Actor, m *DocumentModel) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if m.FolderID == 0 {
		return nil, ErrFolderRequired
	}

	// The PDF name rule applies on create only; update persists entry names
	// exactly as supplied.
	pdfNamed := suppliedPdfNames(m)

	cs := &model.DocumentChangeSet{DocumentID: doc.ID, UserID: actor.UserID}

	// Translations are matched strictly by id; an unknown id fails the whole
	// call before any side effect has run. Updates cannot insert translations.
	for _, tm := range m.Translations {
		existing := findTranslation(doc, tm.ID)
		if existing == nil {
			return nil, ErrTranslationNotFound
		}
		t := *existing
		t.Name = tm.Name
		t.Description = tm.Description
		cs.UpdateTranslations = append(cs.UpdateTranslations, t)
	}

	endAt := m.EndAt
	if endAt.IsZero() {
		endAt = s.now().AddDate(defaultValidityYears, 0, 0)
	}
	cs.EndAt = &endAt
	folderID := m.FolderID
	cs.FolderID = &folderID

	status := m.Status
	if len(m.PropertyIDs) == 0 {
		status = false
	}
	locked := status
	cs.Status = &status
	cs.IsLocked = &locked

	// Resolve every upload branch before any side effect runs.
	actions := make([]uploadAction, 0, len(m.Uploads))
	for i := range m.Uploads {
		actions = append(actions, resolveUploadAction(doc, &m.Uploads[i]))
	}
	var derived []model.DocumentUploadedData
	for _, action := range actions {
		uploads, translations, err := s.runUploadAction(ctx, doc, action)
		if err != nil {
			return nil, err
		}
		cs.UpsertUploads = append(cs.UpsertUploads, uploads...)
		cs.UpdateTranslations = append(cs.UpdateTranslations, translations...)
		if action.carriesNewContent() {
			if d := s.derivePdf(ctx, doc, pdfNamed, action.entry); d != nil {
				derived = append(derived, *d)
			}
		}
	}
	cs.UpsertUploads = mergeUploadRows(append(cs.UpsertUploads, derived...))

	// Association diff: removed associations lose their materialized remote
	// cases before the local soft delete is queued.
	desired := make(map[int64]bool, len(m.PropertyIDs))
	for _, pid := range m.PropertyIDs {
		desired[pid] = true
	}
	existingProps := make(map[int64]bool)
	for _, p := range doc.ActiveProperties() {
		existingProps[p.PropertyID] = true
		if desired[p.PropertyID] {
			continue
		}
		for _, site := range doc.ActiveSites() {
			if site.PropertyID != p.PropertyID {
				continue
			}
			if site.SdkCaseID != 0 {
				if err := s.sdk.CaseDelete(ctx, site.SdkCaseID); err != nil {
					return nil, fmt.Errorf("delete remote case %d: %w", site.SdkCaseID, err)
				}
			}
			cs.RemoveSiteIDs = append(cs.RemoveSiteIDs, site.ID)
		}
		cs.RemovePropertyIDs = append(cs.RemovePropertyIDs, p.ID)
	}
	for _, pid := range m.PropertyIDs {
		if !existingProps[pid] {
			cs.AddProperties = append(cs.AddProperties, model.DocumentProperty{PropertyID: pid})
		}
	}

	if err := s.repo.Apply(ctx, cs); err != nil {
		return nil, err
	}

	if len(m.PropertyIDs) > 0 {
		if err := s.events.DocumentUpdated(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("publish document updated: %w", err)
		}
	}

	return s.Get(ctx, doc.ID)
}

func (s *documentService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDocumentNotFound
		}
		return err
	}

	cs := &model.DocumentChangeSet{
		DocumentID:         doc.ID,
		UserID:             actor.UserID,
		SoftDeleteDocument: true,
	}
	for _, t := range doc.ActiveTranslations() {
		cs.RemoveTranslationIDs = append(cs.RemoveTranslationIDs, t.ID)
	}
	for _, site := range doc.ActiveSites() {
		if site.SdkCaseID != 0 {
			if err := s.sdk.CaseDelete(ctx, site.SdkCaseID); err != nil {
				return fmt.Errorf("delete remote case %d: %w", site.SdkCaseID, err)
			}
		}
		cs.RemoveSiteIDs = append(cs.RemoveSiteIDs, site.ID)
	}
	for _, p := range doc.ActiveProperties() {
		cs.RemovePropertyIDs = append(cs.RemovePropertyIDs, p.ID)
	}

	return s.repo.Apply(ctx, cs)
}

func (s *documentService) FileURL(ctx context.Context, id, languageID int64, extension string) (string, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}
	u := doc.FindUploadByKey(languageID, extension)
	if u == nil || u.File == "" {
		return "", ErrUploadNotFound
	}
	return s.store.PresignGet(ctx, u.File, fileURLExpiry)
}

func findTranslation(doc *model.Document, id int64) *model.DocumentTranslation {
	for i := range doc.Translations {
		t := &doc.Translations[i]
		if t.ID == id && !t.Removed() {
			return t
		}
	}
	return nil
}
