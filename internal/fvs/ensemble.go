package fvs

import "fmt"

// ExcludedStand describes a stand dropped during ensemble validation.
type ExcludedStand struct {
	StandID   string
	PlotID    int
	TreeCount int
	Reason    string
}

// ValidationReport summarizes the outcome of ValidateStands.
type ValidationReport struct {
	TotalStands int
	ValidStands int
	Excluded    []ExcludedStand
	TreeCounts  map[string]int
}

// ValidateStands checks that each stand has at least minTrees trees and
// drops the ones that do not. The trees of excluded stands are dropped with
// them. A stand with no trees cannot be simulated; excluding it up front is
// cheaper than failing the run later.
func ValidateStands(stands []Stand, trees []Tree, minTrees int) ([]Stand, []Tree, ValidationReport) {
	if minTrees < 1 {
		minTrees = 1
	}

	counts := make(map[string]int)
	for _, t := range trees {
		counts[t.StandID]++
	}

	report := ValidationReport{
		TotalStands: len(stands),
		TreeCounts:  counts,
	}

	valid := make(map[string]bool, len(stands))
	var validStands []Stand
	for _, s := range stands {
		n := counts[s.ID]
		if n < minTrees {
			report.Excluded = append(report.Excluded, ExcludedStand{
				StandID:   s.ID,
				PlotID:    s.PlotID,
				TreeCount: n,
				Reason:    fmt.Sprintf("insufficient trees (%d < %d)", n, minTrees),
			})
			continue
		}
		valid[s.ID] = true
		validStands = append(validStands, s)
	}

	var validTrees []Tree
	for _, t := range trees {
		if valid[t.StandID] {
			validTrees = append(validTrees, t)
		}
	}

	report.ValidStands = len(validStands)
	return validStands, validTrees, report
}

// FilterByPlotIDs restricts the ensemble to stands in the given plots, along
// with their trees.
func FilterByPlotIDs(stands []Stand, trees []Tree, plotIDs []int) ([]Stand, []Tree, error) {
	wanted := make(map[int]bool, len(plotIDs))
	for _, id := range plotIDs {
		wanted[id] = true
	}

	var filteredStands []Stand
	keep := make(map[string]bool)
	for _, s := range stands {
		if wanted[s.PlotID] {
			filteredStands = append(filteredStands, s)
			keep[s.ID] = true
		}
	}
	if len(filteredStands) == 0 {
		return nil, nil, fmt.Errorf("no stands found for plot IDs %v", plotIDs)
	}

	var filteredTrees []Tree
	for _, t := range trees {
		if keep[t.StandID] {
			filteredTrees = append(filteredTrees, t)
		}
	}
	if len(filteredTrees) == 0 {
		return nil, nil, fmt.Errorf("no trees found for plots %v", plotIDs)
	}

	return filteredStands, filteredTrees, nil
}

// FilterByStandIDs restricts the ensemble to the named stands and their trees.
func FilterByStandIDs(stands []Stand, trees []Tree, standIDs []string) ([]Stand, []Tree, error) {
	wanted := make(map[string]bool, len(standIDs))
	for _, id := range standIDs {
		wanted[id] = true
	}

	var filteredStands []Stand
	for _, s := range stands {
		if wanted[s.ID] {
			filteredStands = append(filteredStands, s)
		}
	}
	if len(filteredStands) == 0 {
		return nil, nil, fmt.Errorf("no stands found for stand IDs %v", standIDs)
	}

	var filteredTrees []Tree
	for _, t := range trees {
		if wanted[t.StandID] {
			filteredTrees = append(filteredTrees, t)
		}
	}

	return filteredStands, filteredTrees, nil
}
