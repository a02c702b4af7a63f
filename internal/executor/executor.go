// Package executor runs a single Monte Carlo realization end to end: apply
// the sampled parameter vector to the base configuration, compile simulator
// input, project every stand, and aggregate the raw output. It never touches
// the results store; everything it learns travels back in the RunResult.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openfvs/fvsbatch/internal/aggregate"
	"github.com/openfvs/fvsbatch/internal/fvs"
	"github.com/openfvs/fvsbatch/internal/params"
	"github.com/openfvs/fvsbatch/internal/results"
)

// RunResult carries one run's outcome back to the orchestrator. Exactly one
// of (Summary, Series) or Err is meaningful: a run either produces fully
// aggregated output or it fails as a whole.
type RunResult struct {
	BatchID string
	RunID   int

	Summary aggregate.RunSummary
	Series  []aggregate.TimeSeriesPoint

	Err       error
	ErrorType string
	// StandID of the first failing stand, when the failure is attributable
	// to one.
	FailedStand *string

	Duration time.Duration
}

// Executor executes runs against external collaborators. Safe for use from
// multiple goroutines; all per-run state lives on the stack.
type Executor struct {
	Compiler  fvs.StandCompiler
	Simulator fvs.Simulator
	Reader    fvs.ResultReader

	// Timeout bounds one simulator invocation, not the whole run. Zero
	// means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Execute performs one complete run. The run directory is
// <outputDir>/run_NNNN with one subdirectory per stand. Every stand is
// attempted even after an earlier stand fails, so the error log names all
// failing stands, but any stand failure fails the run as a whole. A panic
// escaping a collaborator is absorbed and reported as a worker exception.
func (e *Executor) Execute(ctx context.Context, batchID string, sample params.ParameterSample, stands []fvs.Stand, trees []fvs.Tree, base fvs.SimConfig, outputDir string) (result RunResult) {
	start := time.Now()
	result = RunResult{BatchID: batchID, RunID: sample.RunID}

	defer func() {
		result.Duration = time.Since(start)
		if p := recover(); p != nil {
			result.Err = fmt.Errorf("run %d: panic: %v", sample.RunID, p)
			result.ErrorType = results.ErrorTypeWorkerException
		}
	}()

	log := e.logger().With("batch_id", batchID, "run_id", sample.RunID)

	cfg := sample.ApplyTo(base)
	cfg.Name = fmt.Sprintf("%s_run_%04d", batchID, sample.RunID)
	if err := cfg.Validate(); err != nil {
		result.Err = fmt.Errorf("run %d: %w", sample.RunID, err)
		result.ErrorType = results.ErrorTypeExecution
		return result
	}

	runDir := filepath.Join(outputDir, fmt.Sprintf("run_%04d", sample.RunID))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		result.Err = fmt.Errorf("run %d: create run dir: %w", sample.RunID, err)
		result.ErrorType = results.ErrorTypeExecution
		return result
	}

	bundle, err := e.Compiler.Compile(ctx, stands, trees, cfg, runDir)
	if err != nil {
		result.Err = fmt.Errorf("run %d: compile input: %w", sample.RunID, err)
		result.ErrorType = results.ErrorTypeExecution
		return result
	}

	tables := aggregate.RunTables{}
	var failed []string
	for _, stand := range stands {
		output, serr := e.simulateStand(ctx, bundle, stand.ID, runDir)
		status := fvs.StandStatus{StandID: stand.ID, Success: serr == nil}
		if serr != nil {
			status.Error = serr.Error()
			failed = append(failed, stand.ID)
			log.Warn("stand simulation failed", "stand_id", stand.ID, "error", serr)
		} else {
			tables.Summary = append(tables.Summary, output.Summary...)
			tables.Carbon = append(tables.Carbon, output.Carbon...)
			tables.Compute = append(tables.Compute, output.Compute...)
			tables.HarvestCarbon = append(tables.HarvestCarbon, output.HarvestCarbon...)
		}
		tables.Status = append(tables.Status, status)
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		result.FailedStand = &failed[0]
		result.Err = fmt.Errorf("run %d: %d of %d stands failed: %s",
			sample.RunID, len(failed), len(stands), strings.Join(failed, ", "))
		result.ErrorType = results.ErrorTypeExecution
		return result
	}

	series, err := aggregate.TimeSeries(tables)
	if err != nil {
		result.Err = fmt.Errorf("run %d: %w", sample.RunID, err)
		result.ErrorType = results.ErrorTypeExecution
		return result
	}
	result.Series = series
	result.Summary = aggregate.Summarize(tables)

	duration := time.Since(start).Seconds()
	result.Summary.RunDurationSec = &duration

	log.Info("run complete", "n_stands", result.Summary.NStands, "duration_sec", duration)
	return result
}

// simulateStand projects one stand in its own working directory under the
// run directory and reads back the raw output tables.
func (e *Executor) simulateStand(ctx context.Context, bundle *fvs.InputBundle, standID, runDir string) (*fvs.StandOutput, error) {
	workDir := filepath.Join(runDir, standID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create stand dir: %w", err)
	}

	res, err := e.Simulator.Simulate(ctx, bundle, standID, workDir, e.Timeout)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("simulator exited with code %d", res.ExitCode)
	}

	output, err := e.Reader.Read(res.OutputLocation)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return output, nil
}
