// Package batch orchestrates a Monte Carlo batch: sample the parameter
// vectors, fan the runs out over a fixed worker pool, and persist every
// outcome to the results store. The orchestrator is the only writer to the
// store; workers only compute and send their RunResult back over a channel.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openfvs/fvsbatch/internal/executor"
	"github.com/openfvs/fvsbatch/internal/fvs"
	"github.com/openfvs/fvsbatch/internal/params"
	"github.com/openfvs/fvsbatch/internal/results"
)

// StoreFileName is the results database file created under the batch output
// directory.
const StoreFileName = "mc_results.db"

// RunExecutor executes one run. Satisfied by *executor.Executor; tests
// substitute fakes.
type RunExecutor interface {
	Execute(ctx context.Context, batchID string, sample params.ParameterSample, stands []fvs.Stand, trees []fvs.Tree, base fvs.SimConfig, outputDir string) executor.RunResult
}

// Progress is called after each run is persisted, in completion order.
type Progress func(done, total int, res executor.RunResult)

// Outcome summarizes a finished batch.
type Outcome struct {
	BatchID   string
	StorePath string
	Status    string
	NComplete int
	NFailed   int
	Duration  time.Duration
}

// Orchestrator drives batches to completion.
type Orchestrator struct {
	Executor RunExecutor
	Logger   *slog.Logger
	Progress Progress
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Run executes a full batch against the given stand ensemble. The ensemble
// is filtered and validated up front; configuration problems fail before any
// run starts. Individual run failures are recorded and do not stop the
// batch, but a batch in which every run fails returns an error after the
// full error log has been written.
func (o *Orchestrator) Run(ctx context.Context, cfg *params.BatchConfig, stands []fvs.Stand, trees []fvs.Tree) (*Outcome, error) {
	start := time.Now()

	cfg.ApplyDefaults()
	samples, err := params.GenerateSamples(cfg)
	if err != nil {
		return nil, err
	}

	log := o.logger().With("batch_id", cfg.BatchID)

	stands, trees, err = o.prepareEnsemble(cfg, stands, trees, log)
	if err != nil {
		return nil, err
	}

	storePath := filepath.Join(cfg.OutputBase, StoreFileName)
	store, err := results.Open(storePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.CreateBatch(cfg); err != nil {
		return nil, err
	}
	if err := store.RegisterRuns(cfg.BatchID, samples); err != nil {
		return nil, err
	}

	if cfg.BatchDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.BatchDeadline)
		defer cancel()
	}

	log.Info("batch started",
		"n_samples", cfg.NSamples, "n_workers", cfg.NWorkers,
		"n_stands", len(stands), "store", storePath)

	nComplete, nFailed, err := o.executeAll(ctx, cfg, samples, stands, trees, store, log)
	if err != nil {
		return nil, err
	}

	status := batchStatus(nComplete, nFailed)
	if err := store.CompleteBatch(cfg.BatchID, status); err != nil {
		return nil, err
	}

	outcome := &Outcome{
		BatchID:   cfg.BatchID,
		StorePath: storePath,
		Status:    status,
		NComplete: nComplete,
		NFailed:   nFailed,
		Duration:  time.Since(start),
	}

	log.Info("batch finished",
		"status", status, "complete", nComplete, "failed", nFailed,
		"duration", outcome.Duration)

	if status == results.BatchFailed {
		return outcome, fmt.Errorf("batch %s: all %d runs failed", cfg.BatchID, nFailed)
	}
	return outcome, nil
}

// prepareEnsemble applies the configured plot and stand filters, then drops
// stands with no trees.
func (o *Orchestrator) prepareEnsemble(cfg *params.BatchConfig, stands []fvs.Stand, trees []fvs.Tree, log *slog.Logger) ([]fvs.Stand, []fvs.Tree, error) {
	var err error
	if len(cfg.PlotIDs) > 0 {
		stands, trees, err = fvs.FilterByPlotIDs(stands, trees, cfg.PlotIDs)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(cfg.StandIDs) > 0 {
		stands, trees, err = fvs.FilterByStandIDs(stands, trees, cfg.StandIDs)
		if err != nil {
			return nil, nil, err
		}
	}

	stands, trees, report := fvs.ValidateStands(stands, trees, 1)
	for _, ex := range report.Excluded {
		log.Warn("stand excluded", "stand_id", ex.StandID, "reason", ex.Reason)
	}
	if len(stands) == 0 {
		return nil, nil, fmt.Errorf("batch: no simulatable stands after filtering")
	}
	return stands, trees, nil
}

// executeAll runs the worker pool and the completion loop. Results are
// persisted strictly in completion order by this goroutine alone.
func (o *Orchestrator) executeAll(ctx context.Context, cfg *params.BatchConfig, samples []params.ParameterSample, stands []fvs.Stand, trees []fvs.Tree, store *results.DB, log *slog.Logger) (nComplete, nFailed int, err error) {
	jobs := make(chan params.ParameterSample, len(samples))
	resultCh := make(chan executor.RunResult, len(samples))

	// Every run is enqueued up front; workers drain at their own pace.
	for _, s := range samples {
		if err := store.MarkRunRunning(cfg.BatchID, s.RunID); err != nil {
			return 0, 0, err
		}
		jobs <- s
	}
	close(jobs)

	var g errgroup.Group
	for i := 0; i < cfg.NWorkers; i++ {
		g.Go(func() error {
			for sample := range jobs {
				resultCh <- o.runOne(ctx, cfg, sample, stands, trees)
			}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(resultCh)
	}()

	done := 0
	for res := range resultCh {
		done++
		if res.Err != nil {
			nFailed++
			log.Warn("run failed", "run_id", res.RunID, "error_type", res.ErrorType, "error", res.Err)
			if werr := store.RecordRunFailure(cfg.BatchID, res.RunID, res.FailedStand, res.ErrorType, res.Err.Error()); werr != nil {
				return nComplete, nFailed, werr
			}
		} else {
			nComplete++
			if werr := store.RecordRunSuccess(cfg.BatchID, res.RunID, res.Summary, res.Series); werr != nil {
				return nComplete, nFailed, werr
			}
		}
		if o.Progress != nil {
			o.Progress(done, len(samples), res)
		}
	}
	return nComplete, nFailed, g.Wait()
}

// runOne guards the pool boundary: a panic escaping the executor becomes a
// worker-exception result instead of killing the pool.
func (o *Orchestrator) runOne(ctx context.Context, cfg *params.BatchConfig, sample params.ParameterSample, stands []fvs.Stand, trees []fvs.Tree) (res executor.RunResult) {
	defer func() {
		if p := recover(); p != nil {
			res = executor.RunResult{
				BatchID:   cfg.BatchID,
				RunID:     sample.RunID,
				Err:       fmt.Errorf("run %d: worker panic: %v", sample.RunID, p),
				ErrorType: results.ErrorTypeWorkerException,
			}
		}
	}()
	return o.Executor.Execute(ctx, cfg.BatchID, sample, stands, trees, cfg.BaseConfig, cfg.OutputBase)
}

func batchStatus(nComplete, nFailed int) string {
	switch {
	case nFailed == 0:
		return results.BatchComplete
	case nComplete == 0:
		return results.BatchFailed
	default:
		return results.BatchPartial
	}
}
