package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruiter/internal/models"
)

func uploadRequest(t *testing.T, field, filename, content string) *multipartRequest {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &multipartRequest{body: buf.Bytes(), contentType: w.FormDataContentType()}
}

type multipartRequest struct {
	body        []byte
	contentType string
}

func newUploadApp(docs *memoryDocs, storage *fakeStorage, maxSize int64) *fiber.App {
	h := NewUploadHandler(docs, storage, maxSize)
	app := fiber.New()
	app.Post("/upload", h.HandleUpload)
	app.Get("/documents/:id", h.HandleGetDocument)
	return app
}

func postUpload(t *testing.T, app *fiber.App, r *multipartRequest) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/upload", bytes.NewReader(r.body))
	req.Header.Set(fiber.HeaderContentType, r.contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHandleUpload(t *testing.T) {
	docs := &memoryDocs{}
	storage := &fakeStorage{}
	app := newUploadApp(docs, storage, 1024)

	code, raw := postUpload(t, app, uploadRequest(t, "resume", "jane.txt", "Jane Doe, Go engineer"))
	require.Equal(t, fiber.StatusCreated, code, string(raw))

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "jane.txt", resp.OriginalName)
	assert.Equal(t, models.DocumentTypeResume, resp.FileType)
	assert.Equal(t, "./uploads/resume_jane.txt", resp.FilePath)

	req := httptest.NewRequest(fiber.MethodGet, "/documents/"+resp.ID, nil)
	got, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, got.StatusCode)
}

func TestHandleUpload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		content  string
	}{
		{"wrong field", "cv", "jane.pdf", "%PDF-1.4"},
		{"unsupported extension", "resume", "jane.docx", "binary"},
		{"too large", "resume", "jane.txt", string(bytes.Repeat([]byte("a"), 2048))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeStorage{}
			app := newUploadApp(&memoryDocs{}, storage, 1024)

			code, _ := postUpload(t, app, uploadRequest(t, tt.field, tt.filename, tt.content))
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Empty(t, storage.saved)
		})
	}
}

func TestHandleUpload_CleansUpOnRepositoryFailure(t *testing.T) {
	storage := &fakeStorage{}
	app := newUploadApp(&memoryDocs{err: errors.New("connection refused")}, storage, 1024)

	code, _ := postUpload(t, app, uploadRequest(t, "resume", "jane.md", "# Jane Doe"))
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, []string{"resume_jane.md"}, storage.deleted)
}

func TestHandleGetDocument_NotFound(t *testing.T) {
	app := newUploadApp(&memoryDocs{}, &fakeStorage{}, 1024)

	for _, id := range []string{"not-a-uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/documents/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, id)
	}
}
