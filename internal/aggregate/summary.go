package aggregate

// RunSummary holds the scalar aggregates for one run. Pool metrics are read
// at the terminal year (averaged across stands); the harvest total is the
// per-year cross-stand mean summed over all years. Nil means the source
// table lacked the field entirely. All values are recomputable from the raw
// per-stand tables.
type RunSummary struct {
	FinalTotalCarbon  *float64 // live + dead + stored at the final year (tons/ac)
	AvgCarbonStock    *float64 // time-averaged carbon stock (tons/ac)
	FinalLiveCarbon   *float64
	FinalDeadCarbon   *float64
	FinalStoredCarbon *float64

	MinCanopyCover   *float64 // minimum of the per-year means (%)
	FinalCanopyCover *float64

	CumulativeHarvest float64 // total removals over the projection (bdft/ac)

	RunDurationSec *float64
	NStands        int
}

func floatPtr(f float64) *float64 { return &f }

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Summarize computes the scalar run summary from the raw tables. Missing or
// empty tables degrade to absent metrics; this never fails.
//
// The harvest total is mean-then-sum: average the flow across stands within
// each year first, then sum those per-year means. Summing raw per-stand
// values directly double counts whenever the stand count differs between
// years.
func Summarize(tables RunTables) RunSummary {
	out := RunSummary{}
	for _, st := range tables.Status {
		if st.Success {
			out.NStands++
		}
	}

	if len(tables.Summary) == 0 {
		return out
	}

	combined := combineByYear(tables.Summary, tables.Carbon, tables.Compute)
	finalYear, ok := combined.MaxYear()
	if !ok {
		return out
	}
	finalRows := rowsAtYear(combined, finalYear)

	// Carbon pools: value at the final year, averaged across stands.
	liveCol := findColumn(combined, carbonLiveCols)
	if liveCol != "" {
		if v, present := meanOf(finalRows, liveCol); present {
			out.FinalLiveCarbon = floatPtr(v)
		} else {
			out.FinalLiveCarbon = floatPtr(0)
		}
		if v, present := meanOf(combined, liveCol); present {
			out.AvgCarbonStock = floatPtr(v)
		}
	}

	deadCol := findColumn(combined, carbonDeadCols)
	if deadCol != "" {
		if v, present := meanOf(finalRows, deadCol); present {
			out.FinalDeadCarbon = floatPtr(v)
		} else {
			out.FinalDeadCarbon = floatPtr(0)
		}
	}

	// Stored carbon lives in its own table.
	storedCol := findColumn(tables.HarvestCarbon, storedCarbonCols)
	if storedCol != "" {
		if v, present := meanOf(rowsAtYear(tables.HarvestCarbon, finalYear), storedCol); present {
			out.FinalStoredCarbon = floatPtr(v)
		} else {
			out.FinalStoredCarbon = floatPtr(0)
		}
	}

	out.FinalTotalCarbon = floatPtr(
		orZero(out.FinalLiveCarbon) + orZero(out.FinalDeadCarbon) + orZero(out.FinalStoredCarbon))

	// With both live and dead present, the time average covers the full
	// stock (live + dead + stored), missing components counting as zero.
	if liveCol != "" && deadCol != "" {
		storedByYear := map[int]float64{}
		if storedCol != "" {
			storedByYear = meanByYear(tables.HarvestCarbon, storedCol)
		}
		var sum float64
		for _, r := range combined {
			total := r.Values[liveCol] + r.Values[deadCol] + storedByYear[r.Year]
			sum += total
		}
		out.AvgCarbonStock = floatPtr(sum / float64(len(combined)))
	}

	// Canopy cover: per-year means first, then min and final.
	canopyCol := findColumn(combined, canopyCols)
	if canopyCol != "" {
		byYear := meanByYear(combined, canopyCol)
		first := true
		var min, final float64
		var finalSeen int
		for year, v := range byYear {
			if first || v < min {
				min = v
			}
			if first || year > finalSeen {
				final = v
				finalSeen = year
			}
			first = false
		}
		if !first {
			out.MinCanopyCover = floatPtr(min)
			out.FinalCanopyCover = floatPtr(final)
		}
	}

	// Harvest flow: per-year mean across stands, then sum across years.
	harvestCol := findColumn(tables.Summary, harvestFlowCols)
	if harvestCol != "" {
		var total float64
		for _, v := range meanByYear(tables.Summary, harvestCol) {
			total += v
		}
		out.CumulativeHarvest = total
	}

	return out
}
