package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfvs/fvsbatch/internal/fvs"
)

func row(standID string, year int, values map[string]float64) fvs.Row {
	return fvs.Row{StandID: standID, Year: year, Values: values}
}

func okStatus(ids ...string) []fvs.StandStatus {
	var out []fvs.StandStatus
	for _, id := range ids {
		out = append(out, fvs.StandStatus{StandID: id, Success: true})
	}
	return out
}

// Harvest is a flow: average across stands within each year, then sum the
// per-year means. Summing raw per-stand values would give 10000 here.
func TestSummarizeHarvestMeanThenSum(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"RBdFt": 1000}),
			row("B", 2025, map[string]float64{"RBdFt": 3000}),
			row("A", 2035, map[string]float64{"RBdFt": 2000}),
			row("B", 2035, map[string]float64{"RBdFt": 4000}),
		},
		Status: okStatus("A", "B"),
	}

	summary := Summarize(tables)

	// (1000+3000)/2 + (2000+4000)/2
	assert.InDelta(t, 5000.0, summary.CumulativeHarvest, 1e-9)
	assert.Equal(t, 2, summary.NStands)
}

// Carbon is a pool: read at the final year, averaged across stands, never
// summed across years.
func TestSummarizePoolsReadAtFinalYear(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"BA": 100}),
			row("B", 2025, map[string]float64{"BA": 120}),
			row("A", 2125, map[string]float64{"BA": 150}),
			row("B", 2125, map[string]float64{"BA": 170}),
		},
		Carbon: fvs.Table{
			row("A", 2025, map[string]float64{"Aboveground_Total_Live": 10, "Standing_Dead": 1}),
			row("B", 2025, map[string]float64{"Aboveground_Total_Live": 20, "Standing_Dead": 2}),
			row("A", 2125, map[string]float64{"Aboveground_Total_Live": 40, "Standing_Dead": 4}),
			row("B", 2125, map[string]float64{"Aboveground_Total_Live": 60, "Standing_Dead": 6}),
		},
		Status: okStatus("A", "B"),
	}

	summary := Summarize(tables)

	require.NotNil(t, summary.FinalLiveCarbon)
	assert.InDelta(t, 50.0, *summary.FinalLiveCarbon, 1e-9)
	require.NotNil(t, summary.FinalDeadCarbon)
	assert.InDelta(t, 5.0, *summary.FinalDeadCarbon, 1e-9)
	require.NotNil(t, summary.FinalTotalCarbon)
	assert.InDelta(t, 55.0, *summary.FinalTotalCarbon, 1e-9)
}

func TestSummarizeStoredCarbonFromHarvestTable(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"BA": 100}),
			row("A", 2125, map[string]float64{"BA": 150}),
		},
		Carbon: fvs.Table{
			row("A", 2125, map[string]float64{"Aboveground_Total_Live": 40, "Standing_Dead": 4}),
		},
		HarvestCarbon: fvs.Table{
			row("A", 2125, map[string]float64{"Merch_Carbon_Stored": 6}),
		},
		Status: okStatus("A"),
	}

	summary := Summarize(tables)

	require.NotNil(t, summary.FinalStoredCarbon)
	assert.InDelta(t, 6.0, *summary.FinalStoredCarbon, 1e-9)
	require.NotNil(t, summary.FinalTotalCarbon)
	assert.InDelta(t, 50.0, *summary.FinalTotalCarbon, 1e-9)
}

// The alias lists resolve in priority order; the first column present wins
// even when several aliases coexist.
func TestAliasPriorityOrder(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2125, map[string]float64{
				"Aboveground_Total_Live": 40,
				"Aboveground_C_Live":     999,
				"PC_CAN_C":               55,
				"Canopy_Cover_Pct":       999,
			}),
		},
		Status: okStatus("A"),
	}

	summary := Summarize(tables)

	require.NotNil(t, summary.FinalLiveCarbon)
	assert.InDelta(t, 40.0, *summary.FinalLiveCarbon, 1e-9)
	require.NotNil(t, summary.FinalCanopyCover)
	assert.InDelta(t, 55.0, *summary.FinalCanopyCover, 1e-9)
}

func TestAliasFallback(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2125, map[string]float64{"Aboveground_C_Live": 33, "CanopyCov": 44}),
		},
		Status: okStatus("A"),
	}

	summary := Summarize(tables)

	require.NotNil(t, summary.FinalLiveCarbon)
	assert.InDelta(t, 33.0, *summary.FinalLiveCarbon, 1e-9)
	require.NotNil(t, summary.FinalCanopyCover)
	assert.InDelta(t, 44.0, *summary.FinalCanopyCover, 1e-9)
}

func TestSummarizeCanopyMinAndFinal(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"PC_CAN_C": 60}),
			row("A", 2035, map[string]float64{"PC_CAN_C": 20}),
			row("A", 2045, map[string]float64{"PC_CAN_C": 45}),
		},
		Status: okStatus("A"),
	}

	summary := Summarize(tables)

	require.NotNil(t, summary.MinCanopyCover)
	assert.InDelta(t, 20.0, *summary.MinCanopyCover, 1e-9)
	require.NotNil(t, summary.FinalCanopyCover)
	assert.InDelta(t, 45.0, *summary.FinalCanopyCover, 1e-9)
}

func TestSummarizeEmptyTables(t *testing.T) {
	summary := Summarize(RunTables{Status: okStatus("A")})

	assert.Nil(t, summary.FinalTotalCarbon)
	assert.Nil(t, summary.FinalLiveCarbon)
	assert.Zero(t, summary.CumulativeHarvest)
	assert.Equal(t, 1, summary.NStands)
}

func TestSummarizeMissingColumnsDegrade(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"BA": 100}),
		},
		Status: okStatus("A"),
	}

	summary := Summarize(tables)

	assert.Nil(t, summary.FinalLiveCarbon)
	assert.Nil(t, summary.MinCanopyCover)
	assert.Zero(t, summary.CumulativeHarvest)
}

func TestTimeSeriesCumulativeHarvest(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"RBdFt": 1000, "BA": 90}),
			row("B", 2025, map[string]float64{"RBdFt": 3000, "BA": 110}),
			row("A", 2035, map[string]float64{"RBdFt": 0, "BA": 95}),
			row("B", 2035, map[string]float64{"RBdFt": 0, "BA": 115}),
			row("A", 2045, map[string]float64{"RBdFt": 2000, "BA": 100}),
			row("B", 2045, map[string]float64{"RBdFt": 4000, "BA": 120}),
		},
		Status: okStatus("A", "B"),
	}

	series, err := TimeSeries(tables)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, []int{2025, 2035, 2045}, []int{series[0].Year, series[1].Year, series[2].Year})

	require.NotNil(t, series[0].CumulativeHarvest)
	assert.InDelta(t, 2000.0, *series[0].CumulativeHarvest, 1e-9)
	require.NotNil(t, series[1].CumulativeHarvest)
	assert.InDelta(t, 2000.0, *series[1].CumulativeHarvest, 1e-9)
	require.NotNil(t, series[2].CumulativeHarvest)
	assert.InDelta(t, 5000.0, *series[2].CumulativeHarvest, 1e-9)

	require.NotNil(t, series[1].BA)
	assert.InDelta(t, 105.0, *series[1].BA, 1e-9)
}

func TestTimeSeriesTotalCarbonPerYear(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"BA": 90}),
			row("A", 2035, map[string]float64{"BA": 95}),
		},
		Carbon: fvs.Table{
			row("A", 2025, map[string]float64{"Aboveground_Total_Live": 10, "Standing_Dead": 2}),
			row("A", 2035, map[string]float64{"Aboveground_Total_Live": 15, "Standing_Dead": 3}),
		},
		HarvestCarbon: fvs.Table{
			row("A", 2035, map[string]float64{"Merch_Carbon_Stored": 1}),
		},
		Status: okStatus("A"),
	}

	series, err := TimeSeries(tables)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.InDelta(t, 12.0, series[0].TotalCarbon, 1e-9)
	assert.InDelta(t, 19.0, series[1].TotalCarbon, 1e-9)

	// Years absent from the stored-carbon table count as zero, not missing.
	require.NotNil(t, series[0].MerchCarbonStored)
	assert.Zero(t, *series[0].MerchCarbonStored)
}

func TestTimeSeriesNonMonotoneCumulativeIsError(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"RBdFt": 1000}),
			row("A", 2035, map[string]float64{"RBdFt": -500}),
		},
		Status: okStatus("A"),
	}

	_, err := TimeSeries(tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cumulative harvest decreases")
}

func TestTimeSeriesNegativeCarbonPoolIsError(t *testing.T) {
	tables := RunTables{
		Summary: fvs.Table{
			row("A", 2025, map[string]float64{"BA": 90}),
		},
		Carbon: fvs.Table{
			row("A", 2025, map[string]float64{"Aboveground_Total_Live": -3, "Standing_Dead": 1}),
		},
		Status: okStatus("A"),
	}

	_, err := TimeSeries(tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestTimeSeriesEmptyInput(t *testing.T) {
	series, err := TimeSeries(RunTables{})
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestCombineByYearLeftJoin(t *testing.T) {
	summary := fvs.Table{
		row("A", 2025, map[string]float64{"BA": 90}),
		row("A", 2035, map[string]float64{"BA": 95}),
	}
	carbon := fvs.Table{
		row("A", 2025, map[string]float64{"Aboveground_Total_Live": 10}),
		// Row for a (stand, year) absent from summary must be dropped.
		row("B", 2025, map[string]float64{"Aboveground_Total_Live": 99}),
	}

	combined := combineByYear(summary, carbon, nil)

	require.Len(t, combined, 2)
	assert.InDelta(t, 10.0, combined[0].Values["Aboveground_Total_Live"], 1e-9)
	_, present := combined[1].Values["Aboveground_Total_Live"]
	assert.False(t, present, "unmatched summary rows keep only their own fields")
}
