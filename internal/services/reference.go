package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ReferenceDocument is a hiring document (job description, screening rubric)
// ingested into the vector store for screening context.
type ReferenceDocument struct {
	Path    string
	DocType string
	Name    string
}

// ReferenceIngester chunks, embeds and stores reference documents.
type ReferenceIngester struct {
	llm       LLMService
	vectors   VectorStore
	chunkSize int
	overlap   int
}

func NewReferenceIngester(llm LLMService, vectors VectorStore) *ReferenceIngester {
	return &ReferenceIngester{llm: llm, vectors: vectors, chunkSize: 1000, overlap: 200}
}

// Ingest stores doc and returns the number of chunks written. Chunks that
// fail to embed or store are skipped and counted in the returned error.
func (r *ReferenceIngester) Ingest(ctx context.Context, doc ReferenceDocument) (int, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", doc.Path, err)
	}

	text, err := ExtractText(data, doc.Path)
	if err != nil {
		return 0, err
	}

	chunks := ChunkText(text, r.chunkSize, r.overlap)
	log.Printf("   ✂️  %s: %d characters, %d chunks\n", doc.Name, len(text), len(chunks))

	docID := fmt.Sprintf("%s:%s", doc.DocType, filepath.Base(doc.Path))

	stored, failed := 0, 0
	for i, chunk := range chunks {
		embedding, err := r.llm.GenerateEmbedding(ctx, chunk)
		if err != nil {
			log.Printf("   ❌ Failed to generate embedding for chunk %d: %v\n", i+1, err)
			failed++
			continue
		}

		err = r.vectors.UpsertChunk(ctx, ReferenceChunk{
			DocID:   docID,
			DocType: doc.DocType,
			Source:  doc.Name,
			Index:   i,
			Text:    chunk,
		}, embedding)
		if err != nil {
			log.Printf("   ❌ Failed to store chunk %d: %v\n", i+1, err)
			failed++
			continue
		}
		stored++
	}

	if failed > 0 {
		return stored, fmt.Errorf("%d of %d chunks failed", failed, len(chunks))
	}
	return stored, nil
}
