package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openfvs/fvsbatch/internal/aggregate"
	"github.com/openfvs/fvsbatch/internal/params"
)

// specSnapshot mirrors one parameter spec in the persisted config snapshot.
type specSnapshot struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	ProbabilityTrue *float64 `json:"probability_true,omitempty"`
}

type configSnapshot struct {
	BatchID    string         `json:"batch_id"`
	Seed       int64          `json:"batch_seed"`
	NSamples   int            `json:"n_samples"`
	NWorkers   int            `json:"n_workers"`
	StandIDs   []string       `json:"stand_ids,omitempty"`
	PlotIDs    []int          `json:"plot_ids,omitempty"`
	OutputBase string         `json:"output_base"`
	BaseConfig string         `json:"base_config_name"`
	Specs      []specSnapshot `json:"parameter_specs"`
}

func snapshotSpec(spec params.ParameterSpec) specSnapshot {
	switch sp := spec.(type) {
	case params.UniformSpec:
		return specSnapshot{Type: "uniform", Name: sp.ParamName, Min: &sp.Min, Max: &sp.Max}
	case params.BooleanSpec:
		return specSnapshot{Type: "boolean", Name: sp.ParamName, ProbabilityTrue: &sp.ProbabilityTrue}
	case params.DiscreteUniformSpec:
		min, max := float64(sp.Min), float64(sp.Max)
		return specSnapshot{Type: "discrete_uniform", Name: sp.ParamName, Min: &min, Max: &max}
	default:
		return specSnapshot{Type: fmt.Sprintf("%T", spec), Name: spec.Name()}
	}
}

// CreateBatch records the batch metadata with status "running". Called once
// before any run executes.
func (db *DB) CreateBatch(cfg *params.BatchConfig) error {
	snap := configSnapshot{
		BatchID:    cfg.BatchID,
		Seed:       cfg.Seed,
		NSamples:   cfg.NSamples,
		NWorkers:   cfg.NWorkers,
		StandIDs:   cfg.StandIDs,
		PlotIDs:    cfg.PlotIDs,
		OutputBase: cfg.OutputBase,
		BaseConfig: cfg.BaseConfig.Name,
	}
	for _, spec := range cfg.Specs {
		snap.Specs = append(snap.Specs, snapshotSpec(spec))
	}

	configJSON, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("results: marshal config snapshot: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO MC_BatchMeta
		(batch_id, batch_seed, n_samples, n_workers, created_at, status, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cfg.BatchID, cfg.Seed, cfg.NSamples, cfg.NWorkers,
		time.Now().UTC(), BatchRunning, string(configJSON),
	)
	if err != nil {
		return fmt.Errorf("results: create batch: %w", err)
	}
	return nil
}

// RegisterRuns pre-populates the run registry with every planned run, all
// status "pending", in one transaction.
func (db *DB) RegisterRuns(batchID string, samples []params.ParameterSample) error {
	err := db.WithTransaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO MC_RunRegistry (
				batch_id, run_id, run_seed, status, created_at,
				thin_q_factor, thin_residual_ba, thin_trigger_ba,
				thin_min_dbh, thin_max_dbh, min_harvest_volume,
				mortality_multiplier, enable_calibration, fvs_random_seed
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, s := range samples {
			_, err := stmt.Exec(
				batchID, s.RunID, s.RunSeed, RunPending, now,
				s.ThinQFactor, s.ThinResidualBA, s.ThinTriggerBA,
				s.ThinMinDBH, s.ThinMaxDBH, s.MinHarvestVolume,
				s.MortalityMultiplier, s.EnableCalibration, s.RandomSeed,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("results: register runs: %w", err)
	}
	return nil
}

// MarkRunRunning flips a pending run to running.
func (db *DB) MarkRunRunning(batchID string, runID int) error {
	return db.updateRunStatus(db.DB, batchID, runID, RunRunning, nil)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (db *DB) updateRunStatus(e execer, batchID string, runID int, status string, completedAt *time.Time) error {
	res, err := e.Exec(`
		UPDATE MC_RunRegistry
		SET status = ?, completed_at = ?
		WHERE batch_id = ? AND run_id = ?`,
		status, completedAt, batchID, runID,
	)
	if err != nil {
		return fmt.Errorf("results: update run status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRunSuccess marks the run complete and writes its summary and time
// series in a single transaction.
func (db *DB) RecordRunSuccess(batchID string, runID int, summary aggregate.RunSummary, series []aggregate.TimeSeriesPoint) error {
	now := time.Now().UTC()
	err := db.WithTransaction(func(tx *sql.Tx) error {
		if err := db.updateRunStatus(tx, batchID, runID, RunComplete, &now); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO MC_RunSummary (
				batch_id, run_id,
				final_total_carbon, avg_carbon_stock,
				final_live_carbon, final_dead_carbon, final_stored_carbon,
				min_canopy_cover, final_canopy_cover,
				cumulative_harvest_bdft, run_duration_sec, n_stands
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, runID,
			summary.FinalTotalCarbon, summary.AvgCarbonStock,
			summary.FinalLiveCarbon, summary.FinalDeadCarbon, summary.FinalStoredCarbon,
			summary.MinCanopyCover, summary.FinalCanopyCover,
			summary.CumulativeHarvest, summary.RunDurationSec, summary.NStands,
		)
		if err != nil {
			return err
		}

		if len(series) == 0 {
			return nil
		}
		stmt, err := tx.Prepare(`
			INSERT INTO MC_TimeSeries (
				batch_id, run_id, year,
				aboveground_c_live, standing_dead_c, merch_carbon_stored,
				total_carbon, canopy_cover_pct, ba, tpa,
				harvest_bdft, cumulative_harvest
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range series {
			_, err := stmt.Exec(
				batchID, runID, p.Year,
				p.AbovegroundCLive, p.StandingDeadC, p.MerchCarbonStored,
				p.TotalCarbon, p.CanopyCoverPct, p.BA, p.TPA,
				p.HarvestBdft, p.CumulativeHarvest,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("results: record run %d success: %w", runID, err)
	}
	return nil
}

// RecordRunFailure marks the run failed and appends an error-log entry in a
// single transaction.
func (db *DB) RecordRunFailure(batchID string, runID int, standID *string, errorType, errorMsg string) error {
	now := time.Now().UTC()
	err := db.WithTransaction(func(tx *sql.Tx) error {
		if err := db.updateRunStatus(tx, batchID, runID, RunFailed, &now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO MC_BatchErrors (batch_id, run_id, stand_id, error_type, error_msg, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)`,
			batchID, runID, standID, errorType, errorMsg, now,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("results: record run %d failure: %w", runID, err)
	}
	return nil
}

// CompleteBatch sets the terminal batch status and completion timestamp.
func (db *DB) CompleteBatch(batchID, status string) error {
	var completedAt *time.Time
	if status != BatchRunning {
		now := time.Now().UTC()
		completedAt = &now
	}
	_, err := db.Exec(`
		UPDATE MC_BatchMeta
		SET status = ?, completed_at = ?
		WHERE batch_id = ?`,
		status, completedAt, batchID,
	)
	if err != nil {
		return fmt.Errorf("results: complete batch: %w", err)
	}
	return nil
}
