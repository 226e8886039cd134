package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/workflow"
)

// WorkflowRunner is the run coordinator surface the handlers use.
type WorkflowRunner interface {
	Start(ctx context.Context, runID, resumeSource, jobDescription string) (*workflow.Result, error)
	Watch(ctx context.Context, runID, resumeSource, jobDescription string) iter.Seq2[workflow.Update, error]
	State(ctx context.Context, runID string) (*workflow.Checkpoint, error)
	Checkpoints(ctx context.Context, runID string) ([]workflow.Checkpoint, error)
}

// JobQueue accepts persisted jobs for background execution.
type JobQueue interface {
	EnqueueJob(jobID uuid.UUID)
}

type WorkflowHandler struct {
	runner     WorkflowRunner
	jobs       repositories.JobRepository
	queue      JobQueue
	runTimeout time.Duration
}

func NewWorkflowHandler(runner WorkflowRunner, jobs repositories.JobRepository, queue JobQueue, runTimeout time.Duration) *WorkflowHandler {
	return &WorkflowHandler{
		runner:     runner,
		jobs:       jobs,
		queue:      queue,
		runTimeout: runTimeout,
	}
}

func (h *WorkflowHandler) runContext() (context.Context, context.CancelFunc) {
	if h.runTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), h.runTimeout)
}

// HandleExecute handles POST /workflow. It runs (or resumes) the workflow and
// returns the final state.
func (h *WorkflowHandler) HandleExecute(c *fiber.Ctx) error {
	req, err := parseWorkflowRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := h.runContext()
	defer cancel()

	res, err := h.runner.Start(ctx, req.RunID, req.Candidate.ResumeSource, req.Job.JobDescription())
	if err != nil {
		return writeWorkflowError(c, req.RunID, err)
	}

	return c.JSON(res)
}

// HandleEnqueue handles POST /workflow/queue. The job is persisted before it
// is handed to the worker pool, so it survives a restart.
func (h *WorkflowHandler) HandleEnqueue(c *fiber.Ctx) error {
	req, err := parseWorkflowRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	job := &models.Job{
		ID:             uuid.New(),
		RunID:          req.RunID,
		CandidateName:  req.Candidate.Name,
		CandidateEmail: req.Candidate.Email,
		CandidatePhone: req.Candidate.Phone,
		JobTitle:       req.Job.Title,
		ResumeSource:   req.Candidate.ResumeSource,
		JobDescription: req.Job.JobDescription(),
		Status:         models.JobStatusQueued,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.jobs.Create(c.UserContext(), job); err != nil {
		log.Printf("❌ Failed to create job for run %s: %v\n", req.RunID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to create workflow job",
			RunID: req.RunID,
		})
	}

	h.queue.EnqueueJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.EnqueueResponse{
		Status: "ok",
		JobID:  job.ID.String(),
		RunID:  job.RunID,
	})
}

// HandleStream handles POST /workflow/stream as server-sent events: one
// "status" event per completed node, then "complete" or "error".
func (h *WorkflowHandler) HandleStream(c *fiber.Ctx) error {
	req, err := parseWorkflowRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	runID := req.RunID
	source := req.Candidate.ResumeSource
	jobDescription := req.Job.JobDescription()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := h.runContext()
		defer cancel()

		var last *workflow.Update
		for u, err := range h.runner.Watch(ctx, runID, source, jobDescription) {
			if err != nil {
				_ = writeEvent(w, "error", newErrorResponse(runID, err))
				return
			}

			if werr := writeEvent(w, "status", u); werr != nil {
				log.Printf("⚠️  Stream for run %s closed by client: %v\n", runID, werr)
				return
			}
			last = &u
		}

		if last != nil {
			_ = writeEvent(w, "complete", last)
		}
	}))

	return nil
}

// HandleRunState handles GET /runs/:id, the latest checkpoint of a run.
func (h *WorkflowHandler) HandleRunState(c *fiber.Ctx) error {
	runID := c.Params("id")

	cp, err := h.runner.State(c.UserContext(), runID)
	if err != nil {
		return writeWorkflowError(c, runID, err)
	}

	return c.JSON(cp)
}

// HandleCheckpoints handles GET /runs/:id/checkpoints.
func (h *WorkflowHandler) HandleCheckpoints(c *fiber.Ctx) error {
	runID := c.Params("id")

	list, err := h.runner.Checkpoints(c.UserContext(), runID)
	if err != nil {
		return writeWorkflowError(c, runID, err)
	}

	return c.JSON(fiber.Map{
		"run_id":      runID,
		"checkpoints": list,
	})
}

func writeEvent(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
