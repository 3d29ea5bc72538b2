package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsightlab/finsight/internal/scheduler"
	"github.com/finsightlab/finsight/internal/scheduler/jobs"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the background scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- universe_refresh: periodically refreshes the discovery universe cache

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately

Example:
  go run ./cmd/finsight scheduler start
  go run ./cmd/finsight scheduler list
  go run ./cmd/finsight scheduler run universe_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler() (*scheduler.Scheduler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	_, _, discoverer, err := buildPipeline(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	if discoverer == nil {
		return nil, fmt.Errorf("discovery is disabled; enable the screener to run the scheduler")
	}

	sched := scheduler.New(log)
	job := jobs.NewUniverseRefreshJob(discoverer, cfg.Scheduler.UniverseRefresh, log)
	if err := sched.AddJob(job); err != nil {
		return nil, fmt.Errorf("register universe refresh job: %w", err)
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FinSight Scheduler ===")

	sched, err := buildScheduler()
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler started. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := buildScheduler()
	if err != nil {
		return err
	}

	fmt.Println("Registered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	sched, err := buildScheduler()
	if err != nil {
		return err
	}

	jobName := args[0]
	fmt.Printf("Running job %s...\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job completed")
	return nil
}
