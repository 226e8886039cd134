package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/workflow"
)

// CheckpointRepository is the postgres-backed workflow.CheckpointStore. Each
// run keeps one row per node; saving a node again overwrites its row.
type CheckpointRepository struct {
	db *gorm.DB
}

var _ workflow.CheckpointStore = (*CheckpointRepository)(nil)

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

func (r *CheckpointRepository) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	row, err := toRow(cp)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "node"}},
		DoUpdates: clause.AssignmentColumns([]string{"step", "state", "error", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %s/%s: %w", cp.RunID, cp.Node, err)
	}
	return nil
}

func (r *CheckpointRepository) Latest(ctx context.Context, runID string) (*workflow.Checkpoint, error) {
	var row models.Checkpoint
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("step DESC").
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}

	return fromRow(&row)
}

func (r *CheckpointRepository) List(ctx context.Context, runID string) ([]workflow.Checkpoint, error) {
	var rows []models.Checkpoint
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("step ASC").
		Order("updated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	out := make([]workflow.Checkpoint, 0, len(rows))
	for i := range rows {
		cp, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, nil
}

func toRow(cp *workflow.Checkpoint) (*models.Checkpoint, error) {
	state, err := json.Marshal(cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}

	row := &models.Checkpoint{
		RunID:     cp.RunID,
		Node:      string(cp.Node),
		Step:      cp.Step,
		State:     state,
		CreatedAt: cp.Timestamp,
		UpdatedAt: cp.Timestamp,
	}
	if cp.Error != "" {
		msg := cp.Error
		row.Error = &msg
	}
	return row, nil
}

func fromRow(row *models.Checkpoint) (*workflow.Checkpoint, error) {
	var state workflow.State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint state: %w", err)
	}

	cp := &workflow.Checkpoint{
		RunID:     row.RunID,
		Node:      workflow.NodeName(row.Node),
		Step:      row.Step,
		State:     state,
		Timestamp: row.UpdatedAt,
	}
	if row.Error != nil {
		cp.Error = *row.Error
	}
	return cp, nil
}
