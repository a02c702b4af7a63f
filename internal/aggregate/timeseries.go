package aggregate

import "fmt"

// Numerical slack allowed when validating monotonicity and non-negativity.
const validationTolerance = 0.01

// TimeSeriesPoint is one year of the cross-stand aggregated time series.
// Pool fields carry the per-year mean across stands and are nil when the
// source column is absent. The harvest flow is the per-year cross-stand
// mean; CumulativeHarvest is its running sum in year order.
type TimeSeriesPoint struct {
	Year int

	AbovegroundCLive  *float64
	StandingDeadC     *float64
	MerchCarbonStored *float64
	TotalCarbon       float64

	CanopyCoverPct *float64
	BA             *float64
	TPA            *float64

	HarvestBdft       *float64
	CumulativeHarvest *float64
}

// TimeSeries builds the per-year aggregated series from the raw tables.
// Empty input yields an empty series. A non-monotone cumulative harvest or a
// negative carbon pool means a field was misclassified upstream and is a
// hard error, never a warning.
func TimeSeries(tables RunTables) ([]TimeSeriesPoint, error) {
	if len(tables.Summary) == 0 {
		return nil, nil
	}

	combined := combineByYear(tables.Summary, tables.Carbon, tables.Compute)
	years := combined.Years()
	if len(years) == 0 {
		return nil, nil
	}

	baByYear := meanByYear(combined, "BA")
	tpaByYear := meanByYear(combined, "Tpa")

	liveCol := findColumn(combined, carbonLiveCols)
	liveByYear := meanByYear(combined, liveCol)
	deadCol := findColumn(combined, carbonDeadCols)
	deadByYear := meanByYear(combined, deadCol)

	storedCol := findColumn(tables.HarvestCarbon, storedCarbonCols)
	storedByYear := meanByYear(tables.HarvestCarbon, storedCol)

	canopyCol := findColumn(combined, canopyCols)
	canopyByYear := meanByYear(combined, canopyCol)

	harvestCol := findColumn(tables.Summary, harvestFlowCols)
	harvestByYear := meanByYear(tables.Summary, harvestCol)

	points := make([]TimeSeriesPoint, 0, len(years))
	var cumulative float64
	for _, year := range years {
		p := TimeSeriesPoint{Year: year}

		if v, ok := baByYear[year]; ok {
			p.BA = floatPtr(v)
		}
		if v, ok := tpaByYear[year]; ok {
			p.TPA = floatPtr(v)
		}
		if liveCol != "" {
			if v, ok := liveByYear[year]; ok {
				p.AbovegroundCLive = floatPtr(v)
			}
		}
		if deadCol != "" {
			if v, ok := deadByYear[year]; ok {
				p.StandingDeadC = floatPtr(v)
			}
		}
		if storedCol != "" {
			// Years the stored-carbon table lacks count as zero.
			p.MerchCarbonStored = floatPtr(storedByYear[year])
		}
		p.TotalCarbon = orZero(p.AbovegroundCLive) + orZero(p.StandingDeadC) + orZero(p.MerchCarbonStored)

		if canopyCol != "" {
			if v, ok := canopyByYear[year]; ok {
				p.CanopyCoverPct = floatPtr(v)
			}
		}

		if harvestCol != "" {
			// Flow: per-year cross-stand mean, zero when the year has no
			// removals, then the running cumulative sum.
			harvest := harvestByYear[year]
			cumulative += harvest
			p.HarvestBdft = floatPtr(harvest)
			p.CumulativeHarvest = floatPtr(cumulative)
		}

		points = append(points, p)
	}

	if err := validateTimeSeries(points); err != nil {
		return nil, err
	}
	return points, nil
}

// validateTimeSeries sanity-checks the assembled series. A violation signals
// a stock/flow classification bug upstream, so processing must stop rather
// than persist corrupt data.
func validateTimeSeries(points []TimeSeriesPoint) error {
	var prev *float64
	for _, p := range points {
		if p.CumulativeHarvest != nil {
			if prev != nil && *p.CumulativeHarvest < *prev-validationTolerance {
				return fmt.Errorf(
					"aggregate: cumulative harvest decreases at year %d (%.4f -> %.4f): flow field mishandled as pool",
					p.Year, *prev, *p.CumulativeHarvest)
			}
			prev = p.CumulativeHarvest
		}

		for _, pool := range []struct {
			name  string
			value *float64
		}{
			{"aboveground_c_live", p.AbovegroundCLive},
			{"standing_dead_c", p.StandingDeadC},
			{"total_carbon", floatPtr(p.TotalCarbon)},
		} {
			if pool.value != nil && *pool.value < -validationTolerance {
				return fmt.Errorf("aggregate: %s is negative (%.4f) at year %d",
					pool.name, *pool.value, p.Year)
			}
		}
	}
	return nil
}
