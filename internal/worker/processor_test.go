package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"backendconf/internal/model"
	"backendconf/internal/queue"
	repoMocks "backendconf/internal/repository/mocks"
	sdkMocks "backendconf/internal/sdk/mocks"
)

func documentUpdatedTask(t *testing.T, documentID int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.DocumentUpdatedPayload{DocumentID: documentID})
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(queue.DocumentUpdatedTask, payload)
}

func deployableDocument() *model.Document {
	return &model.Document{
		ID:    7,
		Audit: model.Audit{WorkflowState: model.WorkflowStateCreated, UpdatedByUserID: 1},
		Properties: []model.DocumentProperty{
			{ID: 31, DocumentID: 7, PropertyID: 5, Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
			{ID: 32, DocumentID: 7, PropertyID: 6, Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
		},
		Sites: []model.DocumentSite{
			{ID: 41, DocumentID: 7, PropertyID: 5, SdkSiteID: 9, SdkCaseID: 77,
				Audit: model.Audit{WorkflowState: model.WorkflowStateCreated}},
		},
	}
}

func TestProcessor_HandleDocumentUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes missing cases only", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		props := new(repoMocks.MockPropertyRepository)
		client := new(sdkMocks.MockClient)
		p := NewProcessor(docs, props, client)

		docs.On("FindByID", ctx, int64(7)).Return(deployableDocument(), nil)
		props.On("FindByIDs", ctx, []int64{5, 6}).Return([]model.Property{
			{ID: 5, SdkFolderID: 100, SdkSiteID: 9},
			{ID: 6, SdkFolderID: 110, SdkSiteID: 10},
		}, nil)
		client.On("CaseCreate", ctx, int64(110), int64(10)).Return(int64(88), nil)
		docs.On("SaveSite", ctx, mock.MatchedBy(func(site *model.DocumentSite) bool {
			return site.DocumentID == 7 && site.PropertyID == 6 &&
				site.SdkSiteID == 10 && site.SdkCaseID == 88
		})).Return(nil)

		err := p.HandleDocumentUpdated(ctx, documentUpdatedTask(t, 7))

		assert.NoError(t, err)
		// Property 5 already has a materialized case and is skipped.
		client.AssertNumberOfCalls(t, "CaseCreate", 1)
		docs.AssertNumberOfCalls(t, "SaveSite", 1)
	})

	t.Run("redelivery after full deployment is a no-op", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		props := new(repoMocks.MockPropertyRepository)
		client := new(sdkMocks.MockClient)
		p := NewProcessor(docs, props, client)

		doc := deployableDocument()
		doc.Sites = append(doc.Sites, model.DocumentSite{
			ID: 42, DocumentID: 7, PropertyID: 6, SdkSiteID: 10, SdkCaseID: 88,
			Audit: model.Audit{WorkflowState: model.WorkflowStateCreated},
		})
		docs.On("FindByID", ctx, int64(7)).Return(doc, nil)
		props.On("FindByIDs", ctx, []int64{5, 6}).Return([]model.Property{
			{ID: 5, SdkFolderID: 100, SdkSiteID: 9},
			{ID: 6, SdkFolderID: 110, SdkSiteID: 10},
		}, nil)

		err := p.HandleDocumentUpdated(ctx, documentUpdatedTask(t, 7))

		assert.NoError(t, err)
		client.AssertNotCalled(t, "CaseCreate", mock.Anything, mock.Anything, mock.Anything)
		docs.AssertNotCalled(t, "SaveSite", mock.Anything, mock.Anything)
	})

	t.Run("document removed since publish", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		props := new(repoMocks.MockPropertyRepository)
		client := new(sdkMocks.MockClient)
		p := NewProcessor(docs, props, client)

		docs.On("FindByID", ctx, int64(7)).Return(nil, sql.ErrNoRows)

		err := p.HandleDocumentUpdated(ctx, documentUpdatedTask(t, 7))

		assert.NoError(t, err)
		client.AssertNotCalled(t, "CaseCreate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		props := new(repoMocks.MockPropertyRepository)
		client := new(sdkMocks.MockClient)
		p := NewProcessor(docs, props, client)

		err := p.HandleDocumentUpdated(ctx, asynq.NewTask(queue.DocumentUpdatedTask, []byte("{")))

		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}
