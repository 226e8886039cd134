package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/recruiter/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFinished(ctx context.Context, id uuid.UUID, result []byte) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.Job, error)
	RequeueRunning(ctx context.Context) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

// Claim moves a queued job to running. It reports false when another worker
// already claimed it.
func (r *jobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusQueued).
		Updates(map[string]any{
			"status":     models.JobStatusRunning,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim job: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *jobRepository) MarkFinished(ctx context.Context, id uuid.UUID, result []byte) error {
	return r.finish(ctx, id, map[string]any{
		"status":        models.JobStatusFinished,
		"result":        result,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.finish(ctx, id, map[string]any{
		"status":        models.JobStatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *jobRepository) finish(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", models.JobStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return jobs, nil
}

// RequeueRunning returns jobs left running by a previous process to the
// queue. Their runs resume from the last checkpoint.
func (r *jobRepository) RequeueRunning(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ?", models.JobStatusRunning).
		Updates(map[string]any{
			"status":     models.JobStatusQueued,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue running jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
