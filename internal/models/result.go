package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	FilePath     string `json:"file_path"`
}

type CandidateInfo struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	ResumeSource string `json:"resume_source" validate:"required"`
}

type JobSpec struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	RequiredSkills []string `json:"required_skills"`
}

// JobDescription flattens the posting into the text the scoring step reads.
func (j JobSpec) JobDescription() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n\n%s", j.Title, strings.TrimSpace(j.Description))
	if len(j.RequiredSkills) > 0 {
		fmt.Fprintf(&sb, "\n\nRequired skills: %s", strings.Join(j.RequiredSkills, ", "))
	}
	return sb.String()
}

type WorkflowRequest struct {
	RunID     string        `json:"run_id"`
	Candidate CandidateInfo `json:"candidate" validate:"required"`
	Job       JobSpec       `json:"job" validate:"required"`
}

type EnqueueResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
	RunID  string `json:"run_id"`
}

type JobStatusResponse struct {
	ID     string          `json:"id"`
	RunID  string          `json:"run_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
}
