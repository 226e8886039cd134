package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
)

type JobHandler struct {
	jobs repositories.JobRepository
}

func NewJobHandler(jobs repositories.JobRepository) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// HandleGetJob handles GET /jobs/:id. Ids that do not name a job, including
// malformed ones, are 404.
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "job not found"})
	}

	job, err := h.jobs.FindByID(c.UserContext(), jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "job not found"})
		}
		log.Printf("❌ Failed to load job %s: %v\n", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load job"})
	}

	response := models.JobStatusResponse{
		ID:     job.ID.String(),
		RunID:  job.RunID,
		Status: string(job.Status),
	}

	if job.Status == models.JobStatusFinished && len(job.Result) > 0 {
		response.Result = job.Result
	}

	if job.Status == models.JobStatusFailed {
		response.Error = job.ErrorMessage
	}

	return c.JSON(response)
}
