package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload stores a single "resume" file. The returned file_path can be
// submitted as a workflow's resume_source.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return badRequest(c, "no resume uploaded. Please upload a 'resume' file (.pdf, .txt or .md)")
	}

	if file.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !services.ResumeExtensions[ext] {
		return badRequest(c, fmt.Sprintf("unsupported resume format %q", ext))
	}

	stored, err := h.storageService.SaveResume(file)
	if err != nil {
		log.Printf("❌ Failed to save resume %s: %v\n", file.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to save resume file",
		})
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         stored.Filename,
		OriginalFileName: file.Filename,
		FileType:         models.DocumentTypeResume,
		FilePath:         stored.Path,
		Size:             stored.Size,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(c.UserContext(), &doc); err != nil {
		// Cleanup uploaded file if database insert fails
		if derr := h.storageService.DeleteFile(stored.Filename); derr != nil {
			log.Printf("⚠️  Failed to clean up %s: %v\n", stored.Filename, derr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to save resume document record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toUploadResponse(&doc))
}

// HandleGetDocument handles GET /documents/:id.
func (h *UploadHandler) HandleGetDocument(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	}

	doc, err := h.docRepo.FindByID(c.UserContext(), docID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load document"})
	}

	return c.JSON(toUploadResponse(doc))
}

func toUploadResponse(doc *models.Document) models.UploadResponse {
	return models.UploadResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		FileType:     doc.FileType,
		FilePath:     doc.FilePath,
	}
}
