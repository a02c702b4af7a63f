package results

import "time"

// BatchMeta is one row of MC_BatchMeta.
type BatchMeta struct {
	BatchID     string
	Seed        int64
	NSamples    int
	NWorkers    int
	CreatedAt   time.Time
	CompletedAt *time.Time
	Status      string
	ConfigJSON  string
}

// RunRecord is one row of the run registry: the sampled parameter vector
// plus run status. Parameter columns are nil when the batch did not sample
// that parameter.
type RunRecord struct {
	BatchID     string
	RunID       int
	RunSeed     int
	Status      string
	CreatedAt   *time.Time
	CompletedAt *time.Time

	ThinQFactor         *float64
	ThinResidualBA      *float64
	ThinTriggerBA       *float64
	ThinMinDBH          *float64
	ThinMaxDBH          *float64
	MinHarvestVolume    *float64
	MortalityMultiplier *float64
	EnableCalibration   *bool
	RandomSeed          *int
}

// RunSummaryRow is one row of MC_RunSummary.
type RunSummaryRow struct {
	BatchID string
	RunID   int

	FinalTotalCarbon  *float64
	AvgCarbonStock    *float64
	FinalLiveCarbon   *float64
	FinalDeadCarbon   *float64
	FinalStoredCarbon *float64
	MinCanopyCover    *float64
	FinalCanopyCover  *float64
	CumulativeHarvest *float64
	RunDurationSec    *float64
	NStands           *int
}

// TimeSeriesRow is one row of MC_TimeSeries.
type TimeSeriesRow struct {
	BatchID string
	RunID   int
	Year    int

	AbovegroundCLive  *float64
	StandingDeadC     *float64
	MerchCarbonStored *float64
	TotalCarbon       *float64
	CanopyCoverPct    *float64
	BA                *float64
	TPA               *float64
	HarvestBdft       *float64
	CumulativeHarvest *float64
}

// BatchError is one row of the append-only error log.
type BatchError struct {
	BatchID   string
	RunID     int
	StandID   *string
	ErrorType string
	ErrorMsg  string
	Timestamp time.Time
}

// Results is everything LoadResults reads back from a store. Slices are
// always non-nil, even against a store that only has schema.
type Results struct {
	BatchMeta  *BatchMeta
	Registry   []RunRecord
	Summaries  []RunSummaryRow
	TimeSeries []TimeSeriesRow
	Errors     []BatchError
}
