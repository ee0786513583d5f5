package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cardforge/cardforge-go/internal/llm"
	"github.com/cardforge/cardforge-go/internal/metrics"
	"github.com/cardforge/cardforge-go/internal/models"
	"github.com/cardforge/cardforge-go/internal/service"
)

var (
	jobOwner      string
	jobCollection string
	jobMode       string
	jobFile       string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Create, run and inspect extraction jobs",
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pending extraction job from a text file",
	Long: `Create a pending extraction job from a text file.

Examples:
  cardforge jobs create --owner user1 --collection col1 --file notes.txt
  cardforge jobs create --owner user1 --collection col1 --mode dialogue --file notes.txt`,
	RunE: runJobsCreate,
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <job-id>",
	Short: "Run a pending job to completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRun,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job's status and progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

func init() {
	jobsCreateCmd.Flags().StringVar(&jobOwner, "owner", "", "owner user id (required)")
	jobsCreateCmd.Flags().StringVar(&jobCollection, "collection", "", "target collection id (required)")
	jobsCreateCmd.Flags().StringVar(&jobMode, "mode", "standard", "generation mode (standard, simplified, rigorous, dialogue)")
	jobsCreateCmd.Flags().StringVar(&jobFile, "file", "", "path to the source text (required)")
	_ = jobsCreateCmd.MarkFlagRequired("owner")
	_ = jobsCreateCmd.MarkFlagRequired("collection")
	_ = jobsCreateCmd.MarkFlagRequired("file")

	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsRunCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	content, err := os.ReadFile(jobFile)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return fmt.Errorf("source file %s is empty", jobFile)
	}

	mode := string(models.ParseMode(jobMode))
	jobID := uuid.NewString()

	if err := dbClient.CreateJob(ctx, jobID, jobOwner, string(content), jobCollection, mode); err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	fmt.Printf("Created job %s (%d chars, mode %s)\n", jobID, len(content), mode)
	return nil
}

func runJobsRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobID := args[0]

	job, err := dbClient.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", jobID)
	}

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	extractor := service.NewExtractor(dbClient, model, metrics.NewCollector())

	// The CLI runs on behalf of the job's owner
	count, err := extractor.Run(ctx, jobID, job.OwnerID)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("Job %s completed: %d cards saved\n", jobID, count)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobID := args[0]

	job, err := dbClient.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", jobID)
	}

	fmt.Printf("Job: %s\n", jobID)
	fmt.Printf("  Owner: %s\n", job.OwnerID)
	fmt.Printf("  Collection: %s\n", job.TargetCollectionID)
	fmt.Printf("  Mode: %s\n", job.Mode)
	fmt.Printf("  Status: %s\n", job.Status)
	fmt.Printf("  Progress: %.0f%%\n", job.Progress*100)
	if job.Message != "" {
		fmt.Printf("  Message: %s\n", job.Message)
	}
	if job.Error != nil && *job.Error != "" {
		fmt.Printf("  Error: %s\n", *job.Error)
	}
	if job.TotalCards > 0 {
		fmt.Printf("  Cards: %d of %d\n", job.SavedCount, job.TotalCards)
	}
	if job.StartedAt != nil {
		fmt.Printf("  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if job.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		if job.StartedAt != nil {
			fmt.Printf("  Duration: %s\n", job.CompletedAt.Sub(*job.StartedAt).Round(time.Second))
		}
	}

	return nil
}
