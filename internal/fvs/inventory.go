package fvs

import (
	"database/sql"
	"fmt"
)

// LoadInventory reads the stand and tree ensembles from an inventory SQLite
// database holding FVS_StandInit and FVS_TreeInit tables. Only the columns
// the batch engine needs are read; everything else in those tables belongs
// to the compiler.
func LoadInventory(dbPath string) ([]Stand, []Tree, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("inventory: open %s: %w", dbPath, err)
	}
	defer db.Close()

	stands, err := loadStands(db)
	if err != nil {
		return nil, nil, fmt.Errorf("inventory: %w", err)
	}
	trees, err := loadTrees(db)
	if err != nil {
		return nil, nil, fmt.Errorf("inventory: %w", err)
	}
	return stands, trees, nil
}

func loadStands(db *sql.DB) ([]Stand, error) {
	rows, err := db.Query("SELECT STAND_ID, PlotID, INV_YEAR FROM FVS_StandInit")
	if err != nil {
		return nil, fmt.Errorf("query stands: %w", err)
	}
	defer rows.Close()

	var stands []Stand
	for rows.Next() {
		var s Stand
		var plotID, invYear sql.NullInt64
		if err := rows.Scan(&s.ID, &plotID, &invYear); err != nil {
			return nil, fmt.Errorf("scan stand: %w", err)
		}
		s.PlotID = int(plotID.Int64)
		s.InventoryYear = int(invYear.Int64)
		stands = append(stands, s)
	}
	return stands, rows.Err()
}

func loadTrees(db *sql.DB) ([]Tree, error) {
	rows, err := db.Query("SELECT STAND_ID, PLOT_ID, SPECIES, DBH, TREE_COUNT FROM FVS_TreeInit")
	if err != nil {
		return nil, fmt.Errorf("query trees: %w", err)
	}
	defer rows.Close()

	var trees []Tree
	for rows.Next() {
		var t Tree
		var plotID sql.NullInt64
		var species sql.NullString
		var dbh, count sql.NullFloat64
		if err := rows.Scan(&t.StandID, &plotID, &species, &dbh, &count); err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		t.PlotID = int(plotID.Int64)
		t.Species = species.String
		t.DBH = dbh.Float64
		t.Count = count.Float64
		trees = append(trees, t)
	}
	return trees, rows.Err()
}
