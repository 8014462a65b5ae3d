package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// DocumentUpdatedTask is published after a document's property
	// associations change, for the compliance/deployment worker to consume.
	DocumentUpdatedTask = "document:updated"
)

// DocumentUpdatedPayload is serialized into the task payload so the worker
// knows which aggregate to reload.
type DocumentUpdatedPayload struct {
	DocumentID int64 `json:"document_id"`
}

// Publisher abstracts event publication so services can be tested without a
// running queue.
type Publisher interface {
	// DocumentUpdated publishes a document:updated event. Delivery is
	// at-least-once; consumers must be idempotent.
	DocumentUpdated(ctx context.Context, documentID int64) error
}

// AsynqPublisher publishes events through an asynq client.
type AsynqPublisher struct {
	client *asynq.Client
}

// NewAsynqPublisher wraps an asynq client.
func NewAsynqPublisher(client *asynq.Client) *AsynqPublisher {
	return &AsynqPublisher{client: client}
}

var _ Publisher = (*AsynqPublisher)(nil)

// DocumentUpdated enqueues a document:updated task.
func (p *AsynqPublisher) DocumentUpdated(ctx context.Context, documentID int64) error {
	data, err := json.Marshal(DocumentUpdatedPayload{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(DocumentUpdatedTask, data)
	if _, err := p.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue document updated task: %w", err)
	}
	return nil
}
