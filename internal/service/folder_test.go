package service

import (
	"context"
	"testing"

	"backendconf/internal/model"
	"backendconf/internal/repository"
	repoMocks "backendconf/internal/repository/mocks"
	"backendconf/internal/sdk"
	sdkMocks "backendconf/internal/sdk/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestFolderService() (FolderService, *repoMocks.MockFolderRepository, *repoMocks.MockPropertyRepository, *sdkMocks.MockClient) {
	repo := new(repoMocks.MockFolderRepository)
	props := new(repoMocks.MockPropertyRepository)
	client := new(sdkMocks.MockClient)
	return NewFolderService(repo, props, client), repo, props, client
}

func existingFolder() *model.Folder {
	return &model.Folder{
		ID:    3,
		Audit: model.Audit{WorkflowState: model.WorkflowStateCreated},
		Translations: []model.FolderTranslation{
			{ID: 13, FolderID: 3, LanguageID: 1, Name: "Instrukser",
				Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
		},
		Properties: []model.FolderProperty{
			{ID: 23, FolderID: 3, PropertyID: 5, SdkFolderID: 201,
				Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
		},
		IsDeletable: true,
	}
}

func TestFolderService_Create_MirrorsHierarchy(t *testing.T) {
	ctx := context.Background()

	t.Run("reuses an existing container", func(t *testing.T) {
		svc, repo, props, client := newTestFolderService()

		repo.On("Create", ctx, mock.Anything).Return(&model.Folder{ID: 3}, nil)
		props.On("ListActive", ctx).Return([]model.Property{
			{ID: 5, Name: "Farm A", SdkFolderID: 100, SdkSiteID: 9},
		}, nil)
		client.On("FolderLookup", ctx, int64(100), "26. Dokumenter").
			Return(int64(150), true, nil)
		client.On("FolderCreate", ctx, mock.MatchedBy(func(tr []sdk.Translation) bool {
			return len(tr) == 1 && tr[0].Name == "Instrukser"
		}), int64(150)).Return(int64(201), nil)
		repo.On("Apply", ctx, mock.MatchedBy(func(cs *model.FolderChangeSet) bool {
			return len(cs.AddProperties) == 1 &&
				cs.AddProperties[0].PropertyID == 5 &&
				cs.AddProperties[0].SdkFolderID == 201
		})).Return(nil)
		repo.On("FindByID", ctx, int64(3)).Return(existingFolder(), nil)

		folder, err := svc.Create(ctx, model.Actor{UserID: 1, LanguageID: 1}, &FolderModel{
			Translations: []FolderTranslationModel{
				{LanguageID: 1, Name: "Instrukser"},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), folder.ID)
		repo.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	t.Run("creates the container when absent", func(t *testing.T) {
		svc, repo, props, client := newTestFolderService()

		repo.On("Create", ctx, mock.Anything).Return(&model.Folder{ID: 3}, nil)
		props.On("ListActive", ctx).Return([]model.Property{
			{ID: 5, Name: "Farm A", SdkFolderID: 100, SdkSiteID: 9},
		}, nil)
		client.On("FolderLookup", ctx, int64(100), "26. Dokumenter").
			Return(int64(0), false, nil)
		client.On("FolderCreate", ctx, mock.MatchedBy(func(tr []sdk.Translation) bool {
			return len(tr) == 3 && tr[0].Name == "26. Dokumenter" &&
				tr[1].Name == "26. Documents" && tr[2].Name == "26. Dokumenten"
		}), int64(100)).Return(int64(150), nil)
		client.On("FolderCreate", ctx, mock.MatchedBy(func(tr []sdk.Translation) bool {
			return len(tr) == 1 && tr[0].Name == "Instrukser"
		}), int64(150)).Return(int64(201), nil)
		repo.On("Apply", ctx, mock.Anything).Return(nil)
		repo.On("FindByID", ctx, int64(3)).Return(existingFolder(), nil)

		_, err := svc.Create(ctx, model.Actor{UserID: 1, LanguageID: 1}, &FolderModel{
			Translations: []FolderTranslationModel{
				{LanguageID: 1, Name: "Instrukser"},
			},
		})

		assert.NoError(t, err)
		client.AssertNumberOfCalls(t, "FolderCreate", 2)
	})

	t.Run("no active properties skips the hierarchy", func(t *testing.T) {
		svc, repo, props, client := newTestFolderService()

		repo.On("Create", ctx, mock.Anything).Return(&model.Folder{ID: 3}, nil)
		props.On("ListActive", ctx).Return([]model.Property{}, nil)
		repo.On("FindByID", ctx, int64(3)).Return(existingFolder(), nil)

		_, err := svc.Create(ctx, model.Actor{UserID: 1}, &FolderModel{
			Translations: []FolderTranslationModel{{LanguageID: 1, Name: "Instrukser"}},
		})

		assert.NoError(t, err)
		client.AssertNotCalled(t, "FolderLookup", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})
}

func TestFolderService_Update_PushesTranslations(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, client := newTestFolderService()

	repo.On("FindByID", ctx, int64(3)).Return(existingFolder(), nil)
	repo.On("Apply", ctx, mock.MatchedBy(func(cs *model.FolderChangeSet) bool {
		return len(cs.UpdateTranslations) == 1 &&
			cs.UpdateTranslations[0].Name == "Renamed" &&
			len(cs.CreateTranslations) == 1 &&
			cs.CreateTranslations[0].LanguageID == 2
	})).Return(nil)
	client.On("FolderUpdate", ctx, int64(201), mock.Anything, (*int64)(nil)).Return(nil)

	_, err := svc.Update(ctx, model.Actor{UserID: 1, LanguageID: 1}, &FolderModel{
		ID: 3,
		Translations: []FolderTranslationModel{
			{ID: 13, LanguageID: 1, Name: "Renamed"},
			{LanguageID: 2, Name: "Instructions"},
		},
	})

	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "FolderUpdate", 1)
}

func TestFolderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while documents reference the folder", func(t *testing.T) {
		svc, repo, _, _ := newTestFolderService()
		folder := existingFolder()
		folder.IsDeletable = false
		repo.On("FindByID", ctx, int64(3)).Return(folder, nil)

		err := svc.Delete(ctx, model.Actor{UserID: 1}, 3)

		assert.ErrorIs(t, err, ErrFolderNotDeletable)
		repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("soft deletes an unreferenced folder", func(t *testing.T) {
		svc, repo, _, _ := newTestFolderService()
		repo.On("FindByID", ctx, int64(3)).Return(existingFolder(), nil)
		repo.On("Apply", ctx, mock.MatchedBy(func(cs *model.FolderChangeSet) bool {
			return cs.SoftDeleteFolder && cs.FolderID == 3
		})).Return(nil)

		err := svc.Delete(ctx, model.Actor{UserID: 1}, 3)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestFolderService_Simple_LanguageFallback(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestFolderService()

	repo.On("ListAll", ctx).Return([]model.Folder{
		{
			ID: 3,
			Translations: []model.FolderTranslation{
				{LanguageID: 1, Name: "Instrukser", Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
				{LanguageID: 2, Name: "Instructions", Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
			},
		},
		{
			ID: 4,
			Translations: []model.FolderTranslation{
				{LanguageID: 1, Name: "Bilag", Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
			},
		},
	}, nil)

	names, err := svc.Simple(ctx, model.Actor{UserID: 1, LanguageID: 2})

	assert.NoError(t, err)
	assert.Equal(t, []model.FolderName{
		{ID: 4, Name: "Bilag"},
		{ID: 3, Name: "Instructions"},
	}, names)
}

func TestFolderService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestFolderService()

	repo.On("List", ctx, mock.MatchedBy(func(q repository.FolderQuery) bool {
		return q.LanguageID == 1 && q.Limit == 10
	})).Return(&repository.PageResult[model.Folder]{
		Items: []model.Folder{*existingFolder()},
		Total: 1,
	}, nil)

	res, err := svc.List(ctx, model.Actor{UserID: 1, LanguageID: 1}, nil, 0, 0)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}
