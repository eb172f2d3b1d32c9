package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantfold/riskengine/internal/report"
	"github.com/quantfold/riskengine/internal/scheduler"
	"github.com/quantfold/riskengine/internal/scheduler/jobs"
	"github.com/quantfold/riskengine/pkg/config"
	"github.com/quantfold/riskengine/pkg/database"
	"github.com/quantfold/riskengine/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the report scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
  risk_snapshot - daily VaR snapshot from stored portfolio returns

Example:
  go run ./cmd/riskctl scheduler start
  go run ./cmd/riskctl scheduler list
  go run ./cmd/riskctl scheduler run risk_snapshot`,
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

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("Job %s started. Press Ctrl+C to stop waiting\n", jobName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	return nil
}

// initScheduler wires the scheduler with its jobs. The returned cleanup
// closes the database pool.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := report.NewRepository(db.Pool)
	reporter := report.NewReporter(repo, log)

	sched := scheduler.New(log)
	snapshot := jobs.NewRiskSnapshotJob(
		repo,
		reporter,
		cfg.Scheduler.SnapshotSpec,
		cfg.Scheduler.LookbackObs,
		cfg.Engine.Confidences,
		log,
	)
	if err := sched.AddJob(snapshot); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("add job: %w", err)
	}

	return sched, db.Close, nil
}
