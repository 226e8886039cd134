// Package bootstrap wires configuration into the services the binaries share.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/recruiter/internal/config"
	"alfredoptarigan/recruiter/internal/services"
	"alfredoptarigan/recruiter/internal/workflow"
)

// NewLLM connects to Gemini.
func NewLLM(ctx context.Context, cfg *config.Config) (services.LLMService, error) {
	llm, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
		RetryDelay: cfg.Worker.RetryInitialDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	}
	return llm, nil
}

// NewVectorStore connects to Qdrant and makes sure the collection exists. It
// returns (nil, nil) when no Qdrant URL is configured.
func NewVectorStore(ctx context.Context, cfg *config.Config) (services.VectorStore, error) {
	if cfg.Qdrant.URL == "" {
		return nil, nil
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.Qdrant.VectorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
	}

	if err := store.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant collection: %w", err)
	}
	return store, nil
}

// NewNotifier returns the SMTP mailer, or a log-only notifier when SMTP is
// not configured.
func NewNotifier(cfg *config.Config) workflow.Notifier {
	if !cfg.SMTP.Enabled() {
		log.Println("⚠️  SMTP_HOST not set, emails will only be logged")
		return services.LogNotifier{}
	}

	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}

	return services.NewMailer(services.MailerOptions{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     from,
		UseSSL:   cfg.SMTP.UseSSL,
	})
}

// NewRuntime assembles the workflow collaborators.
func NewRuntime(ctx context.Context, cfg *config.Config) (*workflow.Runtime, error) {
	llm, err := NewLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	vectors, err := NewVectorStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if vectors == nil {
		log.Println("⚠️  QDRANT_URL not set, screening runs without reference context")
	}

	extractor, err := services.NewCandidateExtractor(llm, cfg.Worker.RetryMaxAttempts)
	if err != nil {
		return nil, err
	}

	return &workflow.Runtime{
		Loader:    services.NewResumeLoader(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize, cfg.Storage.DownloadTimeout),
		Extractor: extractor,
		Scorer:    services.NewCandidateScorer(llm, vectors, cfg.Worker.RetryMaxAttempts),
		Scheduler: services.NewMeetingScheduler(cfg.Workflow.MeetingLinkBase),
		Notifier:  NewNotifier(cfg),
		Threshold: cfg.Workflow.ScoreThreshold,
	}, nil
}

// NewCoordinator builds the engine and binds it to store.
func NewCoordinator(ctx context.Context, cfg *config.Config, store workflow.CheckpointStore) (*workflow.Coordinator, error) {
	rt, err := NewRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := workflow.NewEngine(rt)
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}

	return workflow.NewCoordinator(engine, store), nil
}
