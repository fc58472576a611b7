// Package activity provides the change history contract for documents.
// Entries record who did what to which record; the storage layer owns
// persistence and payload compression.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"stockledger/internal/core/id"
)

// Action is the kind of recorded operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionFinalize Action = "finalize"
)

// Entry is one recorded operation on an entity.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId"`
	UserEmail  string          `db:"user_email" json:"userEmail,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists activity entries and serves entity history.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	RecordChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}
