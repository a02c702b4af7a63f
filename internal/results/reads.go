package results

import (
	"database/sql"
	"fmt"
)

// LoadResults opens a store read-only and returns everything in it. A store
// that has schema but no rows yields empty slices and a nil BatchMeta.
func LoadResults(path string) (*Results, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := &Results{
		Registry:   []RunRecord{},
		Summaries:  []RunSummaryRow{},
		TimeSeries: []TimeSeriesRow{},
		Errors:     []BatchError{},
	}

	meta, err := db.batchMeta()
	if err != nil {
		return nil, err
	}
	out.BatchMeta = meta

	if out.Registry, err = db.runRegistry(); err != nil {
		return nil, err
	}
	if out.Summaries, err = db.runSummaries(); err != nil {
		return nil, err
	}
	if out.TimeSeries, err = db.timeSeries(); err != nil {
		return nil, err
	}
	if out.Errors, err = db.batchErrors(); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) batchMeta() (*BatchMeta, error) {
	row := db.QueryRow(`
		SELECT batch_id, batch_seed, n_samples, n_workers,
		       created_at, completed_at, status, config_json
		FROM MC_BatchMeta
		ORDER BY created_at DESC
		LIMIT 1`)

	var m BatchMeta
	err := row.Scan(&m.BatchID, &m.Seed, &m.NSamples, &m.NWorkers,
		&m.CreatedAt, &m.CompletedAt, &m.Status, &m.ConfigJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("results: read batch meta: %w", err)
	}
	return &m, nil
}

func (db *DB) runRegistry() ([]RunRecord, error) {
	rows, err := db.Query(`
		SELECT batch_id, run_id, run_seed, status, created_at, completed_at,
		       thin_q_factor, thin_residual_ba, thin_trigger_ba,
		       thin_min_dbh, thin_max_dbh, min_harvest_volume,
		       mortality_multiplier, enable_calibration, fvs_random_seed
		FROM MC_RunRegistry
		ORDER BY batch_id, run_id`)
	if err != nil {
		return nil, fmt.Errorf("results: read run registry: %w", err)
	}
	defer rows.Close()

	records := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		err := rows.Scan(&r.BatchID, &r.RunID, &r.RunSeed, &r.Status,
			&r.CreatedAt, &r.CompletedAt,
			&r.ThinQFactor, &r.ThinResidualBA, &r.ThinTriggerBA,
			&r.ThinMinDBH, &r.ThinMaxDBH, &r.MinHarvestVolume,
			&r.MortalityMultiplier, &r.EnableCalibration, &r.RandomSeed)
		if err != nil {
			return nil, fmt.Errorf("results: scan run record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (db *DB) runSummaries() ([]RunSummaryRow, error) {
	rows, err := db.Query(`
		SELECT batch_id, run_id,
		       final_total_carbon, avg_carbon_stock,
		       final_live_carbon, final_dead_carbon, final_stored_carbon,
		       min_canopy_cover, final_canopy_cover,
		       cumulative_harvest_bdft, run_duration_sec, n_stands
		FROM MC_RunSummary
		ORDER BY batch_id, run_id`)
	if err != nil {
		return nil, fmt.Errorf("results: read run summaries: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummaryRow{}
	for rows.Next() {
		var s RunSummaryRow
		err := rows.Scan(&s.BatchID, &s.RunID,
			&s.FinalTotalCarbon, &s.AvgCarbonStock,
			&s.FinalLiveCarbon, &s.FinalDeadCarbon, &s.FinalStoredCarbon,
			&s.MinCanopyCover, &s.FinalCanopyCover,
			&s.CumulativeHarvest, &s.RunDurationSec, &s.NStands)
		if err != nil {
			return nil, fmt.Errorf("results: scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (db *DB) timeSeries() ([]TimeSeriesRow, error) {
	rows, err := db.Query(`
		SELECT batch_id, run_id, year,
		       aboveground_c_live, standing_dead_c, merch_carbon_stored,
		       total_carbon, canopy_cover_pct, ba, tpa,
		       harvest_bdft, cumulative_harvest
		FROM MC_TimeSeries
		ORDER BY batch_id, run_id, year`)
	if err != nil {
		return nil, fmt.Errorf("results: read time series: %w", err)
	}
	defer rows.Close()

	series := []TimeSeriesRow{}
	for rows.Next() {
		var t TimeSeriesRow
		err := rows.Scan(&t.BatchID, &t.RunID, &t.Year,
			&t.AbovegroundCLive, &t.StandingDeadC, &t.MerchCarbonStored,
			&t.TotalCarbon, &t.CanopyCoverPct, &t.BA, &t.TPA,
			&t.HarvestBdft, &t.CumulativeHarvest)
		if err != nil {
			return nil, fmt.Errorf("results: scan time series row: %w", err)
		}
		series = append(series, t)
	}
	return series, rows.Err()
}

func (db *DB) batchErrors() ([]BatchError, error) {
	rows, err := db.Query(`
		SELECT batch_id, run_id, stand_id, error_type, error_msg, timestamp
		FROM MC_BatchErrors
		ORDER BY timestamp, batch_id, run_id`)
	if err != nil {
		return nil, fmt.Errorf("results: read batch errors: %w", err)
	}
	defer rows.Close()

	errs := []BatchError{}
	for rows.Next() {
		var e BatchError
		err := rows.Scan(&e.BatchID, &e.RunID, &e.StandID,
			&e.ErrorType, &e.ErrorMsg, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("results: scan batch error: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
