package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/recruiter/internal/models"
)

//go:embed schemas/parsed_candidate.json
var parsedCandidateSchema []byte

// SchemaError lists the schema violations of a parsed candidate.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("parsed candidate does not match schema: %s", strings.Join(e.Errors, "; "))
}

// CandidateExtractor turns raw resume text into a models.ParsedCandidate with
// the language model. Output that is not JSON or violates the candidate
// schema is an error.
type CandidateExtractor struct {
	llm           LLMService
	schema        *gojsonschema.Schema
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewCandidateExtractor(llm LLMService, maxRetries int) (*CandidateExtractor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(parsedCandidateSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate schema: %w", err)
	}

	return &CandidateExtractor{
		llm:           llm,
		schema:        schema,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}, nil
}

func (e *CandidateExtractor) Extract(ctx context.Context, resumeText string) (*models.ParsedCandidate, error) {
	prompt := e.promptBuilder.BuildResumeParsePrompt(resumeText)

	log.Printf("📝 Resume parse prompt length: %d characters\n", len(prompt))

	response, err := e.llm.GenerateTextWithRetry(ctx, prompt, 0, e.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate parsed resume: %w", err)
	}

	return e.Decode(response)
}

// Decode validates a model response against the candidate schema and
// unmarshals it.
func (e *CandidateExtractor) Decode(response string) (*models.ParsedCandidate, error) {
	payload := extractJSON(response)
	if !json.Valid([]byte(payload)) {
		return nil, fmt.Errorf("model response is not valid JSON")
	}

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to validate parsed resume: %w", err)
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, re := range result.Errors() {
			se.Errors = append(se.Errors, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
		}
		return nil, se
	}

	var candidate models.ParsedCandidate
	if err := json.Unmarshal([]byte(payload), &candidate); err != nil {
		return nil, fmt.Errorf("failed to decode parsed resume: %w", err)
	}

	candidate.Contact.Email = strings.TrimSpace(candidate.Contact.Email)
	return &candidate, nil
}
