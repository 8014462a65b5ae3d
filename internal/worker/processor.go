// Package worker consumes document events and materializes cases in the
// external hierarchy for every property a document is associated with.
package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"backendconf/internal/model"
	"backendconf/internal/queue"
	"backendconf/internal/repository"
	"backendconf/internal/sdk"
)

// Processor deploys documents to the external hierarchy. Handlers are
// idempotent: redelivered events skip work that already happened.
type Processor struct {
	docs  repository.DocumentRepository
	props repository.PropertyRepository
	sdk   sdk.Client
}

// NewProcessor constructs a Processor.
func NewProcessor(docs repository.DocumentRepository, props repository.PropertyRepository, sdkClient sdk.Client) *Processor {
	return &Processor{docs: docs, props: props, sdk: sdkClient}
}

// Register attaches the processor's handlers to the mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.DocumentUpdatedTask, p.HandleDocumentUpdated)
}

// HandleDocumentUpdated creates a remote case for every active property
// association that has none yet and records the resulting site row.
func (p *Processor) HandleDocumentUpdated(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentUpdatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	doc, err := p.docs.FindByID(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted since the event was published; nothing to deploy.
			return nil
		}
		return fmt.Errorf("load document %d: %w", payload.DocumentID, err)
	}
	if doc.Removed() {
		return nil
	}

	active := doc.ActiveProperties()
	if len(active) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(active))
	for _, a := range active {
		ids = append(ids, a.PropertyID)
	}
	properties, err := p.props.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	byID := make(map[int64]model.Property, len(properties))
	for _, prop := range properties {
		byID[prop.ID] = prop
	}

	materialized := make(map[int64]bool)
	for _, site := range doc.ActiveSites() {
		if site.SdkCaseID != 0 {
			materialized[site.PropertyID] = true
		}
	}

	for _, a := range active {
		if materialized[a.PropertyID] {
			continue
		}
		prop, ok := byID[a.PropertyID]
		if !ok {
			log.Printf("document %d references unknown property %d, skipping", doc.ID, a.PropertyID)
			continue
		}

		caseID, err := p.sdk.CaseCreate(ctx, prop.SdkFolderID, prop.SdkSiteID)
		if err != nil {
			return fmt.Errorf("create case for property %d: %w", prop.ID, err)
		}
		site := &model.DocumentSite{
			DocumentID: doc.ID,
			PropertyID: prop.ID,
			SdkSiteID:  prop.SdkSiteID,
			SdkCaseID:  caseID,
			Audit: model.Audit{
				CreatedByUserID: doc.UpdatedByUserID,
				UpdatedByUserID: doc.UpdatedByUserID,
			},
		}
		if err := p.docs.SaveSite(ctx, site); err != nil {
			return fmt.Errorf("save site for property %d: %w", prop.ID, err)
		}
	}

	return nil
}
