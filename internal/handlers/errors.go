package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/recruiter/internal/workflow"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Node  string `json:"node,omitempty"`
	RunID string `json:"run_id,omitempty"`
}

// StatusFor maps a workflow error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, workflow.ErrUnknownRun):
		return fiber.StatusNotFound
	case errors.Is(err, workflow.ErrInputMismatch):
		return fiber.StatusConflict
	case errors.Is(err, workflow.ErrCheckpoint):
		return fiber.StatusInternalServerError
	case errors.Is(err, workflow.ErrExtraction),
		errors.Is(err, workflow.ErrScoring),
		errors.Is(err, workflow.ErrScheduling),
		errors.Is(err, workflow.ErrDelivery):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func newErrorResponse(runID string, err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), RunID: runID}
	if node, ok := workflow.FailedNode(err); ok {
		resp.Node = string(node)
	}
	return resp
}

func writeWorkflowError(c *fiber.Ctx, runID string, err error) error {
	return c.Status(StatusFor(err)).JSON(newErrorResponse(runID, err))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// ErrorHandler renders errors returned from handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
