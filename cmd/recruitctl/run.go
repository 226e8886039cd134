package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/recruiter/internal/bootstrap"
	"alfredoptarigan/recruiter/internal/config"
	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run or resume a workflow for one resume",
	Long: `Run the screening workflow for a resume and print one line per completed node.

Running again with the same --run-id resumes from the last checkpoint. A run that
already finished prints its stored final state without repeating any step.`,
	RunE: runWorkflow,
}

var (
	runID          string
	runResume      string
	runJobTitle    string
	runJobFile     string
	runJobText     string
	runSkills      []string
	runInMemory    bool
	runPrintResult bool
)

func init() {
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run (thread) identifier (required)")
	runCmd.Flags().StringVarP(&runResume, "resume", "r", "", "Resume URL or local path (.pdf, .txt, .md)")
	runCmd.Flags().StringVar(&runJobTitle, "job-title", "", "Job title")
	runCmd.Flags().StringVar(&runJobFile, "job-file", "", "Path to a file holding the job description")
	runCmd.Flags().StringVar(&runJobText, "job", "", "Job description text (alternative to --job-file)")
	runCmd.Flags().StringSliceVar(&runSkills, "skill", nil, "Required skill (repeatable)")
	runCmd.Flags().BoolVar(&runInMemory, "in-memory", false, "Keep checkpoints in memory instead of the database")
	runCmd.Flags().BoolVar(&runPrintResult, "json", false, "Print the final state as JSON")

	_ = runCmd.MarkFlagRequired("run-id")

	rootCmd.AddCommand(runCmd)
}

func jobDescription() (string, error) {
	if runJobFile != "" && runJobText != "" {
		return "", fmt.Errorf("cannot use --job with --job-file")
	}

	description := runJobText
	if runJobFile != "" {
		data, err := os.ReadFile(runJobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job file: %w", err)
		}
		description = string(data)
	}

	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	return models.JobSpec{
		Title:          runJobTitle,
		Description:    description,
		RequiredSkills: runSkills,
	}.JobDescription(), nil
}

func runWorkflow(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jd, err := jobDescription()
	if err != nil {
		return err
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	var store workflow.CheckpointStore = workflow.NewMemoryStore()
	if !runInMemory {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		store = repositories.NewCheckpointRepository(db)
	}

	coordinator, err := bootstrap.NewCoordinator(ctx, cfg, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	var last *workflow.Update
	for u, err := range coordinator.Watch(ctx, runID, runResume, jd) {
		if err != nil {
			return fmt.Errorf("run %s failed: %w", runID, err)
		}
		fmt.Fprintf(out, "[%d] %-8s %s\n", u.Step, u.Node, u.StatusLabel)
		last = &u
	}

	if last == nil {
		return nil
	}

	if runPrintResult {
		return printJSON(last.State)
	}

	s := last.State
	if s.Evaluation != nil {
		fmt.Fprintf(out, "\nScore: %.1f\n%s\n", s.Evaluation.Score, s.Evaluation.Justification)
	}
	if s.MeetingInfo != nil {
		fmt.Fprintf(out, "Interview: %s (%s)\n", s.MeetingInfo.MeetingTime, s.MeetingInfo.MeetingLink)
	}
	if s.NotificationStatus != nil {
		fmt.Fprintf(out, "Notification: %s\n", *s.NotificationStatus)
	}
	return nil
}
