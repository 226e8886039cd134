package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/valyala/fasthttp"
)

// ErrOutsideUploadDir is returned for local resume paths that do not resolve
// inside the upload directory.
var ErrOutsideUploadDir = errors.New("resume path is outside the upload directory")

// ResumeLoader resolves a resume source (an http(s) URL or a path returned by
// the upload endpoint) to plain text. Local paths must stay inside uploadDir;
// with an empty uploadDir only URLs are accepted.
type ResumeLoader struct {
	client    *fasthttp.Client
	uploadDir string
	timeout   time.Duration
}

func NewResumeLoader(uploadDir string, maxFileSize int64, timeout time.Duration) *ResumeLoader {
	return &ResumeLoader{
		client: &fasthttp.Client{
			Name:                "recruiter-resume-loader",
			MaxResponseBodySize: int(maxFileSize),
		},
		uploadDir: uploadDir,
		timeout:   timeout,
	}
}

func (l *ResumeLoader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("empty resume source")
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = l.download(ctx, source)
	} else {
		data, err = l.readLocal(source)
	}
	if err != nil {
		return "", err
	}

	text, err := ExtractText(data, source)
	if err != nil {
		return "", err
	}

	log.Printf("📄 Loaded resume %s (%d characters)\n", source, len(text))
	return text, nil
}

func (l *ResumeLoader) readLocal(source string) ([]byte, error) {
	if l.uploadDir == "" {
		return nil, fmt.Errorf("%w: local resume sources are disabled", ErrOutsideUploadDir)
	}

	dir, err := filepath.Abs(l.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	path, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resume path: %w", err)
	}
	if !within(dir, path) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideUploadDir, source)
	}

	// A symlink inside the upload directory must not lead out of it.
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	if !within(realDir, realPath) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideUploadDir, source)
	}

	return os.ReadFile(realPath)
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func (l *ResumeLoader) download(ctx context.Context, source string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(source)
	req.Header.SetMethod(fasthttp.MethodGet)

	timeout := l.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout == 0 {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	req.SetTimeout(timeout)

	if err := l.client.DoRedirects(req, resp, 5); err != nil {
		return nil, fmt.Errorf("failed to download resume: %w", err)
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("failed to download resume: status %d", code)
	}

	return append([]byte(nil), resp.Body()...), nil
}

// ExtractText returns the text of a resume file. PDFs are parsed page by
// page; .txt and .md files are returned as is.
func ExtractText(data []byte, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(name, "?", 2)[0]))

	var text string
	switch {
	case ext == ".txt" || ext == ".md":
		text = string(data)
	case ext == ".pdf" || bytes.HasPrefix(data, []byte("%PDF")):
		var err error
		text, err = extractPDFText(data)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported resume format %q", ext)
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("no text content found in %s", name)
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("⚠️  Skipping unreadable PDF page %d: %v\n", pageIndex, err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
