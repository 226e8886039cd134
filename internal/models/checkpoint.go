package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint is the durable row behind a workflow checkpoint. A run keeps at
// most one row per node; rewriting a node (a retry after failure) replaces it.
type Checkpoint struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RunID     string    `gorm:"type:text;not null;uniqueIndex:idx_checkpoints_run_node" json:"run_id"`
	Node      string    `gorm:"type:text;not null;uniqueIndex:idx_checkpoints_run_node" json:"node"`
	Step      int       `gorm:"not null" json:"step"`
	State     []byte    `gorm:"type:jsonb;not null" json:"-"`
	Error     *string   `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}
