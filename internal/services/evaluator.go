package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/recruiter/internal/models"
)

// CandidateScorer rates a parsed candidate against a job description on a
// 0-10 scale. When a vector store is configured, matching hiring guidelines
// are retrieved and added to the prompt.
type CandidateScorer struct {
	llm           LLMService
	vectors       VectorStore
	promptBuilder *PromptBuilder
	maxRetries    int
	contextLimit  int
}

// NewCandidateScorer builds a scorer. vectors may be nil.
func NewCandidateScorer(llm LLMService, vectors VectorStore, maxRetries int) *CandidateScorer {
	return &CandidateScorer{
		llm:           llm,
		vectors:       vectors,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		contextLimit:  3,
	}
}

type scoreResponse struct {
	Score         *float64 `json:"score"`
	Justification string   `json:"justification"`
}

func (s *CandidateScorer) Score(ctx context.Context, candidate *models.ParsedCandidate, jobDescription string) (*models.Evaluation, error) {
	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate: %w", err)
	}

	referenceContext := ""
	if s.vectors != nil {
		log.Println("🔍 Retrieving hiring guidelines for screening...")
		referenceContext, err = s.retrieveContext(ctx, jobDescription, []string{DocTypeJobDescription, DocTypeHiringRubric})
		if err != nil {
			log.Printf("⚠️  Warning: Failed to retrieve screening context: %v\n", err)
			referenceContext = ""
		}
	}

	prompt := s.promptBuilder.BuildCandidateEvaluationPrompt(string(candidateJSON), jobDescription, referenceContext)

	log.Printf("📝 Screening prompt length: %d characters\n", len(prompt))

	response, err := s.llm.GenerateTextWithRetry(ctx, prompt, 0.2, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluation: %w", err)
	}

	return ParseEvaluation(response)
}

// ParseEvaluation decodes a scoring response. A missing, non-numeric or
// out-of-range score is an error; it is never coerced.
func ParseEvaluation(response string) (*models.Evaluation, error) {
	var parsed scoreResponse
	if err := parseJSONResponse(response, &parsed); err != nil {
		return nil, fmt.Errorf("malformed evaluation: %w", err)
	}

	if parsed.Score == nil {
		return nil, fmt.Errorf("malformed evaluation: missing score")
	}

	score := *parsed.Score
	if math.IsNaN(score) || score < 0 || score > 10 {
		return nil, fmt.Errorf("malformed evaluation: score %v outside [0, 10]", score)
	}

	return &models.Evaluation{
		Score:         score,
		Justification: strings.TrimSpace(parsed.Justification),
	}, nil
}

// retrieveContext embeds one query per document type and searches them
// concurrently. A failed search for one type is logged and skipped.
func (s *CandidateScorer) retrieveContext(ctx context.Context, jobDescription string, docTypes []string) (string, error) {
	results := make([][]SearchResult, len(docTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, docType := range docTypes {
		g.Go(func() error {
			query := s.promptBuilder.BuildRetrievalQuery(docType, jobDescription)

			embedding, err := s.llm.GenerateEmbedding(gctx, query)
			if err != nil {
				return fmt.Errorf("failed to generate query embedding: %w", err)
			}

			hits, err := s.vectors.SearchSimilar(gctx, embedding, docType, s.contextLimit)
			if err != nil {
				log.Printf("⚠️  Failed to search for %s: %v\n", docType, err)
				return nil
			}
			results[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	var all []SearchResult
	for _, hits := range results {
		all = append(all, hits...)
	}
	return FormatRAGContext(all), nil
}
