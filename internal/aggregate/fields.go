// Package aggregate reconciles the simulator's heterogeneous per-stand
// output tables into per-run summaries and time series.
//
// The simulator's outputs mix two semantically different kinds of field, and
// conflating them silently corrupts every downstream statistic:
//
//   - Pool (stock) fields hold state at the end of a period (basal area,
//     carbon pools, canopy cover). They are read at a time point and must
//     never be summed across years.
//   - Flow fields hold activity during a period (volume removed this
//     period). They must be summed across years for a cumulative total and
//     never read "as of" a year.
//
// Every field handled here belongs to exactly one class.
package aggregate

import "github.com/openfvs/fvsbatch/internal/fvs"

// PoolFields are stock variables: use the value at a specific year.
var PoolFields = map[string]bool{
	"BA":    true, // basal area (ft²/ac)
	"Tpa":   true, // trees per acre
	"BdFt":  true, // standing board feet
	"CCF":   true, // crown competition factor
	"TopHt": true, // top height
	"QMD":   true, // quadratic mean diameter
	"SDI":   true, // stand density index

	"Aboveground_Total_Live": true, // live carbon pool
	"Above_Ground_Total_Live": true,
	"Aboveground_C_Live":      true,
	"Standing_Dead":           true, // dead carbon pool
	"Merch_Carbon_Stored":     true, // carbon stored in wood products

	"PC_CAN_C":         true, // canopy cover percentage
	"Pc_can_cover":     true,
	"CanopyCov":        true,
	"Canopy_Cover_Pct": true,
}

// FlowFields are per-period activity: sum across years for totals.
var FlowFields = map[string]bool{
	"RBdFt": true, // board feet removed this period
	"RTpa":  true, // trees removed this period
	"Mort":  true, // mortality this period
	"Acc":   true, // accretion this period
}

// Historical alias lists for semantically identical columns. The simulator's
// output naming is inconsistent across tables and versions; resolution tries
// each candidate in order and the first present wins. The order is
// load-bearing and covered by tests.
var (
	carbonLiveCols   = []string{"Aboveground_Total_Live", "Above_Ground_Total_Live", "Aboveground_C_Live"}
	carbonDeadCols   = []string{"Standing_Dead"}
	canopyCols       = []string{"PC_CAN_C", "Pc_can_cover", "CanopyCov", "Canopy_Cover_Pct"}
	harvestFlowCols  = []string{"RBdFt"}
	storedCarbonCols = []string{"Merch_Carbon_Stored"}
)

// findColumn returns the first candidate column present anywhere in the
// table, or "" when none is.
func findColumn(t fvs.Table, candidates []string) string {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c
		}
	}
	return ""
}
