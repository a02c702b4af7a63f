package aggregate

import "github.com/openfvs/fvsbatch/internal/fvs"

// RunTables is the raw material for one run's aggregation: the concatenated
// per-stand output tables plus the per-stand outcome flags. Absent tables
// are nil; aggregation treats them as empty rather than failing.
type RunTables struct {
	Summary       fvs.Table
	Carbon        fvs.Table
	Compute       fvs.Table
	HarvestCarbon fvs.Table
	Status        []fvs.StandStatus
}

// Columns merged from the carbon table into the combined view.
var carbonMergeCols = []string{
	"Aboveground_Total_Live",
	"Standing_Dead",
	"Belowground_Live",
	"Belowground_Dead",
}

// Columns merged from the compute table into the combined view.
var computeMergeCols = []string{"PC_CAN_C"}

// combineByYear left-joins the carbon and compute tables onto the summary
// table on (stand, year). Rows present only in the secondary tables are
// dropped, matching a left join; summary rows with no match keep their
// original fields.
func combineByYear(summary, carbon, compute fvs.Table) fvs.Table {
	combined := make(fvs.Table, 0, len(summary))
	for _, r := range summary {
		values := make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		combined = append(combined, fvs.Row{StandID: r.StandID, Year: r.Year, Values: values})
	}

	mergeInto(combined, carbon, carbonMergeCols)
	mergeInto(combined, compute, computeMergeCols)
	return combined
}

type standYear struct {
	standID string
	year    int
}

func mergeInto(dst fvs.Table, src fvs.Table, cols []string) {
	if len(src) == 0 {
		return
	}

	index := make(map[standYear]fvs.Row, len(src))
	for _, r := range src {
		index[standYear{r.StandID, r.Year}] = r
	}

	for _, d := range dst {
		s, ok := index[standYear{d.StandID, d.Year}]
		if !ok {
			continue
		}
		for _, col := range cols {
			if v, present := s.Values[col]; present {
				d.Values[col] = v
			}
		}
	}
}

// meanOf returns the mean of the named column across the given rows,
// skipping rows that lack the field. ok is false when no row carries it.
func meanOf(rows fvs.Table, col string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rows {
		if v, present := r.Values[col]; present {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// meanByYear returns the per-year mean of the named column, keyed by year.
// Years where no row carries the field are absent from the result.
func meanByYear(t fvs.Table, col string) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range t {
		if v, present := r.Values[col]; present {
			sums[r.Year] += v
			counts[r.Year]++
		}
	}

	means := make(map[int]float64, len(sums))
	for year, sum := range sums {
		means[year] = sum / float64(counts[year])
	}
	return means
}

// rowsAtYear returns the rows for a single year.
func rowsAtYear(t fvs.Table, year int) fvs.Table {
	var out fvs.Table
	for _, r := range t {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}
