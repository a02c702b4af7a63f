package results

// Run status values in the registry.
const (
	RunPending  = "pending"
	RunRunning  = "running"
	RunComplete = "complete"
	RunFailed   = "failed"
)

// Batch status values in the metadata table.
const (
	BatchRunning  = "running"
	BatchComplete = "complete"
	BatchPartial  = "partial"
	BatchFailed   = "failed"
)

// Error types recorded in the error log. An execution error is a failure
// reported by the run itself; a worker exception is a failure that escaped
// the run and was caught at the pool boundary.
const (
	ErrorTypeExecution       = "execution_error"
	ErrorTypeWorkerException = "worker_exception"
)

const schemaBatchMeta = `
CREATE TABLE IF NOT EXISTS MC_BatchMeta (
	batch_id      TEXT PRIMARY KEY,
	batch_seed    INTEGER NOT NULL,
	n_samples     INTEGER NOT NULL,
	n_workers     INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	completed_at  TIMESTAMP,
	status        TEXT NOT NULL,
	config_json   TEXT NOT NULL
);`

const schemaRunRegistry = `
CREATE TABLE IF NOT EXISTS MC_RunRegistry (
	batch_id             TEXT NOT NULL,
	run_id               INTEGER NOT NULL,
	run_seed             INTEGER NOT NULL,
	status               TEXT DEFAULT 'pending',
	created_at           TIMESTAMP,
	completed_at         TIMESTAMP,
	thin_q_factor        REAL,
	thin_residual_ba     REAL,
	thin_trigger_ba      REAL,
	thin_min_dbh         REAL,
	thin_max_dbh         REAL,
	min_harvest_volume   REAL,
	mortality_multiplier REAL,
	enable_calibration   INTEGER,
	fvs_random_seed      INTEGER,
	PRIMARY KEY (batch_id, run_id)
);`

const schemaRunSummary = `
CREATE TABLE IF NOT EXISTS MC_RunSummary (
	batch_id                TEXT NOT NULL,
	run_id                  INTEGER NOT NULL,
	final_total_carbon      REAL,
	avg_carbon_stock        REAL,
	final_live_carbon       REAL,
	final_dead_carbon       REAL,
	final_stored_carbon     REAL,
	min_canopy_cover        REAL,
	final_canopy_cover      REAL,
	cumulative_harvest_bdft REAL,
	run_duration_sec        REAL,
	n_stands                INTEGER,
	PRIMARY KEY (batch_id, run_id),
	FOREIGN KEY (batch_id, run_id) REFERENCES MC_RunRegistry(batch_id, run_id)
);`

const schemaTimeSeries = `
CREATE TABLE IF NOT EXISTS MC_TimeSeries (
	batch_id              TEXT NOT NULL,
	run_id                INTEGER NOT NULL,
	year                  INTEGER NOT NULL,
	aboveground_c_live    REAL,
	standing_dead_c       REAL,
	merch_carbon_stored   REAL,
	total_carbon          REAL,
	canopy_cover_pct      REAL,
	ba                    REAL,
	tpa                   REAL,
	harvest_bdft          REAL,
	cumulative_harvest    REAL,
	PRIMARY KEY (batch_id, run_id, year),
	FOREIGN KEY (batch_id, run_id) REFERENCES MC_RunRegistry(batch_id, run_id)
);`

const schemaBatchErrors = `
CREATE TABLE IF NOT EXISTS MC_BatchErrors (
	batch_id    TEXT NOT NULL,
	run_id      INTEGER NOT NULL,
	stand_id    TEXT,
	error_type  TEXT NOT NULL,
	error_msg   TEXT NOT NULL,
	timestamp   TIMESTAMP NOT NULL,
	PRIMARY KEY (batch_id, run_id, stand_id)
);`

// initSchema creates all tables. Idempotent.
func (db *DB) initSchema() error {
	for _, ddl := range []string{
		schemaBatchMeta,
		schemaRunRegistry,
		schemaRunSummary,
		schemaTimeSeries,
		schemaBatchErrors,
	} {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
