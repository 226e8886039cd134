package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/workflow"
)

// Runner starts or resumes a workflow run.
type Runner interface {
	Start(ctx context.Context, runID, resumeSource, jobDescription string) (*workflow.Result, error)
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID)
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type worker struct {
	jobs         repositories.JobRepository
	runner       Runner
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(jobs repositories.JobRepository, runner Runner, opts WorkerOptions) Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}

	return &worker{
		jobs:         jobs,
		runner:       runner,
		jobQueue:     make(chan uuid.UUID, opts.QueueSize),
		concurrency:  opts.Concurrency,
		pollInterval: opts.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	if n, err := w.jobs.RequeueRunning(ctx); err != nil {
		log.Printf("⚠️  Failed to requeue interrupted jobs: %v\n", err)
	} else if n > 0 {
		log.Printf("🔁 Requeued %d interrupted jobs\n", n)
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob hands a job to the pool without blocking. A job that is already
// queued twice is claimed once; the second pickup is skipped. When the pool
// is stopped or its queue is full the job stays queued in the database and
// the poller picks it up later.
func (w *worker) EnqueueJob(jobID uuid.UUID) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, job %s stays queued\n", jobID)
		return
	default:
	}

	select {
	case w.jobQueue <- jobID:
		log.Printf("📥 Job %s enqueued\n", jobID)
	default:
		log.Printf("⚠️  Job queue full, job %s left for the poller\n", jobID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			w.process(ctx, workerID, jobID)
		}
	}
}

func (w *worker) process(ctx context.Context, workerID int, jobID uuid.UUID) {
	claimed, err := w.jobs.Claim(ctx, jobID)
	if err != nil {
		log.Printf("❌ Worker #%d failed to claim job %s: %v\n", workerID, jobID, err)
		return
	}
	if !claimed {
		return
	}

	job, err := w.jobs.FindByID(ctx, jobID)
	if err != nil {
		log.Printf("❌ Worker #%d failed to load job %s: %v\n", workerID, jobID, err)
		return
	}

	log.Printf("👷 Worker #%d processing job %s (run %s)\n", workerID, jobID, job.RunID)

	res, err := w.runner.Start(ctx, job.RunID, job.ResumeSource, job.JobDescription)
	if err != nil {
		log.Printf("❌ Worker #%d failed job %s: %v\n", workerID, jobID, err)
		if markErr := w.jobs.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
			log.Printf("⚠️  Failed to record failure of job %s: %v\n", jobID, markErr)
		}
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		log.Printf("❌ Failed to encode result of job %s: %v\n", jobID, err)
		_ = w.jobs.MarkFailed(ctx, jobID, err.Error())
		return
	}

	if err := w.jobs.MarkFinished(ctx, jobID, payload); err != nil {
		log.Printf("⚠️  Failed to record result of job %s: %v\n", jobID, err)
		return
	}

	log.Printf("✅ Worker #%d completed job %s\n", workerID, jobID)
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.jobs.FindPendingJobs(ctx, 10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d pending jobs\n", len(pending))
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
