package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusFinished JobStatus = "finished"
	JobStatusFailed   JobStatus = "failed"
)

// Job is a queued workflow execution. RunID binds it to the run coordinator's
// checkpoints, so a job picked up again after a crash resumes instead of restarting.
type Job struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RunID          string    `gorm:"type:text;not null;index" json:"run_id"`
	CandidateName  string    `gorm:"type:text" json:"candidate_name"`
	CandidateEmail string    `gorm:"type:text" json:"candidate_email"`
	CandidatePhone string    `gorm:"type:text" json:"candidate_phone"`
	JobTitle       string    `gorm:"type:text" json:"job_title"`
	ResumeSource   string    `gorm:"type:text;not null" json:"resume_source"`
	JobDescription string    `gorm:"type:text;not null" json:"job_description"`
	Status         JobStatus `gorm:"not null;default:'queued';index" json:"status"`
	Result         []byte    `gorm:"type:jsonb" json:"-"`
	ErrorMessage   *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}
