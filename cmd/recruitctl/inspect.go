package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/recruiter/internal/config"
	"alfredoptarigan/recruiter/internal/models"
	"alfredoptarigan/recruiter/internal/repositories"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints <run-id>",
	Short: "List the checkpoints of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpoints,
}

var checkpointsLatest bool

var jobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Show the status of a queued job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJob,
}

func init() {
	checkpointsCmd.Flags().BoolVar(&checkpointsLatest, "latest", false, "Print only the latest checkpoint with its state")

	rootCmd.AddCommand(checkpointsCmd)
	rootCmd.AddCommand(jobCmd)
}

func runCheckpoints(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	runID := args[0]

	db, err := openDatabase(config.FromEnv())
	if err != nil {
		return err
	}
	store := repositories.NewCheckpointRepository(db)

	if checkpointsLatest {
		cp, err := store.Latest(ctx, runID)
		if err != nil {
			return err
		}
		if cp == nil {
			return fmt.Errorf("run %s has no checkpoints", runID)
		}
		return printJSON(cp)
	}

	list, err := store.List(ctx, runID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("run %s has no checkpoints", runID)
	}

	out := cmd.OutOrStdout()
	for _, cp := range list {
		status := cp.State.StatusLabel
		if cp.Failed() {
			status = "FAILED: " + cp.Error
		}
		fmt.Fprintf(out, "[%d] %-8s %s  %s\n", cp.Step, cp.Node, cp.Timestamp.Format("2006-01-02 15:04:05"), status)
	}
	return nil
}

func runJob(_ *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", args[0], err)
	}

	db, err := openDatabase(config.FromEnv())
	if err != nil {
		return err
	}

	job, err := repositories.NewJobRepository(db).FindByID(context.Background(), jobID)
	if err != nil {
		return err
	}

	resp := models.JobStatusResponse{
		ID:     job.ID.String(),
		RunID:  job.RunID,
		Status: string(job.Status),
		Error:  job.ErrorMessage,
	}
	if len(job.Result) > 0 {
		resp.Result = job.Result
	}
	return printJSON(resp)
}
