package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"backendconf/internal/model"
	"backendconf/internal/repository"
	"backendconf/internal/sdk"
)

var (
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderNotDeletable = errors.New("folder is not deletable")
)

// documentContainerName is the fixed container node placed under every
// property's root in the external hierarchy. Looked up by its Danish name.
const documentContainerName = "26. Dokumenter"

// containerTranslations is the localized translation set used when the
// container node has to be created.
var containerTranslations = []sdk.Translation{
	{LanguageID: 1, Name: "26. Dokumenter"},
	{LanguageID: 2, Name: "26. Documents"},
	{LanguageID: 3, Name: "26. Dokumenten"},
}

// FolderModel is the desired state of a folder as submitted by the client.
type FolderModel struct {
	ID           int64                    `json:"id"`
	Translations []FolderTranslationModel `json:"translations"`
}

// FolderTranslationModel is one per-language name/description entry.
type FolderTranslationModel struct {
	ID          int64  `json:"id"`
	LanguageID  int64  `json:"language_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FolderListResult is the service-level DTO for paginated folders.
type FolderListResult struct {
	Items []model.Folder `json:"entities"`
	Total int            `json:"total"`
}

// FolderService defines the use cases for handling document folders and
// keeping their external hierarchy mirrors in sync.
type FolderService interface {
	// List returns a page ordered by the translation name in the actor's
	// language, folders without such a translation last.
	List(ctx context.Context, actor model.Actor, folderID *int64, limit, offset int) (*FolderListResult, error)

	// Simple returns id/name pairs, falling back to the first translation
	// when the actor's language is missing.
	Simple(ctx context.Context, actor model.Actor) ([]model.FolderName, error)

	// Get returns one folder aggregate.
	Get(ctx context.Context, id int64) (*model.Folder, error)

	// Create inserts the folder locally, then mirrors it under every active
	// property's container node in the external hierarchy.
	Create(ctx context.Context, actor model.Actor, m *FolderModel) (*model.Folder, error)

	// Update upserts translations locally and pushes the full set to every
	// mapped external folder, preserving parents.
	Update(ctx context.Context, actor model.Actor, m *FolderModel) (*model.Folder, error)

	// Delete soft-deletes the folder. Rejected while any active document
	// references it.
	Delete(ctx context.Context, actor model.Actor, id int64) error
}

// folderService is a concrete implementation of FolderService.
type folderService struct {
	repo  repository.FolderRepository
	props repository.PropertyRepository
	sdk   sdk.Client
}

// NewFolderService constructs a new FolderService.
func NewFolderService(repo repository.FolderRepository, props repository.PropertyRepository, sdkClient sdk.Client) FolderService {
	return &folderService{repo: repo, props: props, sdk: sdkClient}
}

func (s *folderService) List(ctx context.Context, actor model.Actor, folderID *int64, limit, offset int) (*FolderListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.FolderQuery{
		LanguageID: actor.LanguageID,
		FolderID:   folderID,
		PageQuery:  repository.PageQuery{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return &FolderListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *folderService) Simple(ctx context.Context, actor model.Actor) ([]model.FolderName, error) {
	folders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]model.FolderName, 0, len(folders))
	for i := range folders {
		translations := folders[i].ActiveTranslations()
		if len(translations) == 0 {
			continue
		}
		name := translations[0].Name
		for _, t := range translations {
			if t.LanguageID == actor.LanguageID {
				name = t.Name
				break
			}
		}
		names = append(names, model.FolderName{ID: folders[i].ID, Name: name})
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i].Name == names[j].Name {
			return names[i].ID < names[j].ID
		}
		return names[i].Name < names[j].Name
	})
	return names, nil
}

func (s *folderService) Get(ctx context.Context, id int64) (*model.Folder, error) {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	return folder, nil
}

func (s *folderService) Create(ctx context.Context, actor model.Actor, m *FolderModel) (*model.Folder, error) {
	folder := &model.Folder{
		Audit: model.Audit{
			CreatedByUserID: actor.UserID,
			UpdatedByUserID: actor.UserID,
		},
	}
	for _, tm := range m.Translations {
		folder.Translations = append(folder.Translations, model.FolderTranslation{
			LanguageID:  tm.LanguageID,
			Name:        tm.Name,
			Description: tm.Description,
		})
	}

	stored, err := s.repo.Create(ctx, folder)
	if err != nil {
		return nil, err
	}

	properties, err := s.props.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return s.repo.FindByID(ctx, stored.ID)
	}

	translations := toSdkTranslations(m.Translations)
	cs := &model.FolderChangeSet{FolderID: stored.ID, UserID: actor.UserID}
	for _, p := range properties {
		containerID, err := s.ensureContainer(ctx, p.SdkFolderID)
		if err != nil {
			return nil, fmt.Errorf("ensure container under property %d: %w", p.ID, err)
		}
		sdkFolderID, err := s.sdk.FolderCreate(ctx, translations, containerID)
		if err != nil {
			return nil, fmt.Errorf("create remote folder under property %d: %w", p.ID, err)
		}
		cs.AddProperties = append(cs.AddProperties, model.FolderProperty{
			PropertyID:  p.ID,
			SdkFolderID: sdkFolderID,
		})
	}

	if err := s.repo.Apply(ctx, cs); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, stored.ID)
}

// ensureContainer finds the fixed documents container under the property's
// root, creating it when absent, and returns its id.
func (s *folderService) ensureContainer(ctx context.Context, rootID int64) (int64, error) {
	id, found, err := s.sdk.FolderLookup(ctx, rootID, documentContainerName)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return s.sdk.FolderCreate(ctx, containerTranslations, rootID)
}

func (s *folderService) Update(ctx context.Context, actor model.Actor, m *FolderModel) (*model.Folder, error) {
	folder, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}

	// Folder updates may insert translations for new languages; entries with
	// an id must match an active row.
	cs := &model.FolderChangeSet{FolderID: folder.ID, UserID: actor.UserID}
	for _, tm := range m.Translations {
		if tm.ID == 0 {
			cs.CreateTranslations = append(cs.CreateTranslations, model.FolderTranslation{
				LanguageID:  tm.LanguageID,
				Name:        tm.Name,
				Description: tm.Description,
			})
			continue
		}
		existing := findFolderTranslation(folder, tm.ID)
		if existing == nil {
			return nil, ErrTranslationNotFound
		}
		t := *existing
		t.Name = tm.Name
		t.Description = tm.Description
		cs.UpdateTranslations = append(cs.UpdateTranslations, t)
	}

	if err := s.repo.Apply(ctx, cs); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	// Push the merged translation set to every mapped remote folder without
	// moving it.
	translations := make([]sdk.Translation, 0, len(updated.Translations))
	for _, t := range updated.ActiveTranslations() {
		translations = append(translations, sdk.Translation{
			LanguageID:  t.LanguageID,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	for _, p := range updated.ActiveProperties() {
		if err := s.sdk.FolderUpdate(ctx, p.SdkFolderID, translations, nil); err != nil {
			return nil, fmt.Errorf("update remote folder %d: %w", p.SdkFolderID, err)
		}
	}

	return updated, nil
}

func (s *folderService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFolderNotFound
		}
		return err
	}
	if !folder.IsDeletable {
		return ErrFolderNotDeletable
	}

	return s.repo.Apply(ctx, &model.FolderChangeSet{
		FolderID:         folder.ID,
		UserID:           actor.UserID,
		SoftDeleteFolder: true,
	})
}

func toSdkTranslations(models []FolderTranslationModel) []sdk.Translation {
	out := make([]sdk.Translation, 0, len(models))
	for _, tm := range models {
		out = append(out, sdk.Translation{
			LanguageID:  tm.LanguageID,
			Name:        tm.Name,
			Description: tm.Description,
		})
	}
	return out
}

func findFolderTranslation(folder *model.Folder, id int64) *model.FolderTranslation {
	for i := range folder.Translations {
		t := &folder.Translations[i]
		if t.ID == id && !t.Removed() {
			return t
		}
	}
	return nil
}
