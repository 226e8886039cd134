package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"alfredoptarigan/recruiter/internal/bootstrap"
	"alfredoptarigan/recruiter/internal/config"
	"alfredoptarigan/recruiter/internal/services"
)

func main() {
	dir := flag.String("dir", "./reference_docs", "directory holding the reference documents")
	flag.Parse()

	log.Println("🚀 Starting reference document ingestion...")

	// Load configuration
	cfg := config.Load()
	if cfg.Qdrant.URL == "" {
		log.Fatalf("❌ QDRANT_URL is required for ingestion")
	}

	ctx := context.Background()

	llm, err := bootstrap.NewLLM(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	vectors, err := bootstrap.NewVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ingester := services.NewReferenceIngester(llm, vectors)

	documents := []services.ReferenceDocument{
		{
			Path:    *dir + "/hiring_rubric.md",
			DocType: services.DocTypeHiringRubric,
			Name:    "Hiring Rubric",
		},
		{
			Path:    *dir + "/interview_guidelines.md",
			DocType: services.DocTypeHiringRubric,
			Name:    "Interview Guidelines",
		},
		{
			Path:    *dir + "/job_description.pdf",
			DocType: services.DocTypeJobDescription,
			Name:    "Job Description",
		},
	}

	successCount := 0
	failCount := 0

	for _, doc := range documents {
		log.Printf("\n📄 Processing: %s", doc.Name)
		log.Printf("   Path: %s", doc.Path)
		log.Printf("   Type: %s", doc.DocType)

		// Check if file exists
		if _, err := os.Stat(doc.Path); os.IsNotExist(err) {
			log.Printf("   ⚠️  File not found, skipping...")
			failCount++
			continue
		}

		stored, err := ingester.Ingest(ctx, doc)
		if err != nil {
			log.Printf("   ❌ %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Stored %d chunks for %s", stored, doc.Name)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d documents", successCount)
	log.Printf("   ❌ Failed: %d documents", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All documents ingested successfully!")
}
