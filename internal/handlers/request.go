package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/recruiter/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseWorkflowRequest decodes and validates a workflow submission. The run
// id comes from the thread_id query parameter, falling back to the body's
// run_id.
func parseWorkflowRequest(c *fiber.Ctx) (*models.WorkflowRequest, error) {
	var req models.WorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("invalid request payload: %w", err)
	}

	if threadID := strings.TrimSpace(c.Query("thread_id")); threadID != "" {
		req.RunID = threadID
	}
	req.RunID = strings.TrimSpace(req.RunID)
	if req.RunID == "" {
		return nil, errors.New("thread_id query parameter or run_id is required")
	}

	if err := validate.Struct(&req); err != nil {
		return nil, validationError(err)
	}

	return &req, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "WorkflowRequest.")
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", field, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
