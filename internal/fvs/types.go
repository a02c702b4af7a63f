// Package fvs defines the domain types shared across the batch engine and
// the boundary to the external growth simulator: stand/tree inventory
// records, the per-stand-per-year output table model, and the collaborator
// interfaces (stand compiler, simulator, result reader) together with
// process-backed implementations of each.
package fvs

import "sort"

// Stand is one stand inventory record used to seed a simulation.
type Stand struct {
	ID            string
	PlotID        int
	InventoryYear int
}

// Tree is one inventory tree record, keyed to its stand.
type Tree struct {
	StandID string
	PlotID  int
	Species string
	DBH     float64
	Count   float64
}

// Row holds the named output fields for one stand in one simulation year.
// Values only contains fields the simulator actually reported for this row;
// a missing key means the field was absent, not zero.
type Row struct {
	StandID string
	Year    int
	Values  map[string]float64
}

// Table is a per-stand-per-year output table from the simulator.
type Table []Row

// MaxYear returns the largest year present in the table.
func (t Table) MaxYear() (int, bool) {
	if len(t) == 0 {
		return 0, false
	}
	max := t[0].Year
	for _, r := range t[1:] {
		if r.Year > max {
			max = r.Year
		}
	}
	return max, true
}

// Years returns the sorted distinct years present in the table.
func (t Table) Years() []int {
	seen := make(map[int]bool, len(t))
	var years []int
	for _, r := range t {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// HasColumn reports whether any row in the table carries the named field.
func (t Table) HasColumn(name string) bool {
	for _, r := range t {
		if _, ok := r.Values[name]; ok {
			return true
		}
	}
	return false
}

// StandStatus records the outcome of simulating a single stand within a run.
type StandStatus struct {
	StandID string
	Success bool
	Error   string
}
