package model

import "time"

// Workflow states used by every table in the plugin schema. Rows are never
// physically deleted by normal operations; they are marked removed and kept
// for audit.
const (
	WorkflowStateCreated = "created"
	WorkflowStateRemoved = "removed"
)

// Audit carries the bookkeeping columns shared by all rows.
type Audit struct {
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	UpdatedByUserID int64     `json:"updated_by_user_id"`
	WorkflowState   string    `json:"workflow_state"`
}

// Removed reports whether the row is soft-deleted.
func (a Audit) Removed() bool {
	return a.WorkflowState == WorkflowStateRemoved
}

// Actor identifies the user performing an operation together with the
// language their UI runs in. It is passed explicitly on every call instead of
// being resolved from ambient request state.
type Actor struct {
	UserID     int64
	LanguageID int64
}
