package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mtcat/internal/formatter"
	"github.com/desertthunder/mtcat/internal/metrics"
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/repositories"
	"github.com/desertthunder/mtcat/internal/services"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/desertthunder/mtcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	registry   services.Registry
	provider   services.StatsProvider
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	metrics    *metrics.Recorder
	ledger     *formatter.Ledger
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Registry   services.Registry
	Provider   services.StatsProvider
	DB         *sql.DB // Run journal; opened from Config.Database on first use when nil
	Logger     *log.Logger
	Output     io.Writer
	Metrics    *metrics.Recorder
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRecorder()
	}
	if opts.Registry == nil {
		opts.Registry = services.NewHubService(services.HubOptions{
			BaseURL:  opts.Config.Hub.BaseURL,
			Token:    opts.Config.Hub.Token,
			PageSize: opts.Config.Hub.PageSize,
			Timeout:  opts.Config.Datasets.Timeout.Duration,
		})
	}
	if opts.Provider == nil {
		opts.Provider = services.NewDatasetsService(services.DatasetsOptions{
			BaseURL:           opts.Config.Datasets.BaseURL,
			Token:             opts.Config.Hub.Token,
			Timeout:           opts.Config.Datasets.Timeout.Duration,
			RequestsPerSecond: opts.Config.Datasets.RequestsPerSecond,
		})
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		registry:   opts.Registry,
		provider:   opts.Provider,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		metrics:    opts.Metrics,
		ledger:     formatter.NewLedger(opts.Config.Paths.MissingPrimary, opts.Config.Paths.MissingValidate),
	}
}

// SetLogger replaces the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the run journal.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, initializeCommand, refreshCommand, updateCommand, auditCommand,
		externalCommand, missingCommand, inspectCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the flags shared by every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		r.config.Harvest.Verbose = true
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	}
	return ctx, nil
}

// journalDB returns the run journal, opening it on first use.
// A journal that cannot be opened is logged and skipped: runs never fail because of it.
func (r *Runner) journalDB() *sql.DB {
	if r.db != nil || r.config.Database.Path == "" {
		return r.db
	}
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		r.logger.Warn("run journal unavailable", "path", r.config.Database.Path, "err", err)
		return nil
	}
	r.db = db
	return db
}

// journal tracks one run in the journal and in metrics.
type journal struct {
	runs     *repositories.RunRepository
	failures *repositories.FailureRepository
	statuses *repositories.StatusChangeRepository
	run      *models.Run
	started  time.Time
	selector string
}

// startRun opens a journal entry for selector. The returned journal is usable even without a database.
func (r *Runner) startRun(ctx context.Context, selector string) *journal {
	j := &journal{selector: selector, started: time.Now()}

	db := r.journalDB()
	if db == nil {
		return j
	}

	runs := repositories.NewRunRepository(db)
	run, err := runs.Start(ctx, selector)
	if err != nil {
		r.logger.Warn("failed to journal run start", "mode", selector, "err", err)
		return j
	}

	j.runs = runs
	j.failures = repositories.NewFailureRepository(db)
	j.statuses = repositories.NewStatusChangeRepository(db)
	j.run = run
	r.logger.Debug("journaled run", "sequence", run.Sequence, "id", run.ID)
	return j
}

// recorder returns the failure recorder for the journaled run, or nil.
func (j *journal) recorder() tasks.FailureRecorder {
	if j.run == nil {
		return nil
	}
	return j.failures.ForRun(j.run.ID)
}

// finishRun closes the journal entry, records run metrics and writes the metrics textfile.
func (r *Runner) finishRun(ctx context.Context, j *journal, result *tasks.HarvestResult, runErr error) {
	ctx = context.WithoutCancel(ctx)
	status := runStatus(runErr)

	if j.run != nil {
		j.run.Status = status
		if result != nil {
			j.run.ItemsTotal = result.Items
			j.run.ItemsHarvested = len(result.Fresh)
			j.run.ItemsFailed = len(result.Failures)
			j.run.ItemsSkipped = result.Skipped
		}
		if runErr != nil {
			j.run.ErrorMessage = runErr.Error()
		}
		if err := j.runs.Finish(ctx, j.run); err != nil {
			r.logger.Warn("failed to journal run finish", "mode", j.selector, "err", err)
		}
	}

	r.metrics.ObserveRun(j.selector, string(status), time.Since(j.started), time.Now())
	if err := r.metrics.WriteTextfile(r.config.Metrics.Textfile); err != nil {
		r.logger.Warn("failed to write metrics", "path", r.config.Metrics.Textfile, "err", err)
	}
}

func runStatus(err error) models.RunStatus {
	switch {
	case err == nil:
		return models.RunCompleted
	case tasks.IsInterrupted(err):
		return models.RunInterrupted
	default:
		return models.RunFailed
	}
}

// printProgress prints updates until ch is closed; the returned func waits for the printer to drain.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			switch update.Phase {
			case tasks.FetchRegistry, tasks.Classify, tasks.Reconcile, tasks.FilterCandidates:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ResolvePairs:
				r.writePlain("\n🔍 %s\n", update.Message)
			case tasks.Finished:
				r.writePlain("\n%s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()
	return func() { <-done }
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
