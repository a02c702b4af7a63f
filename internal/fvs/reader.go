package fvs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Output table names in the simulator's output database.
const (
	tableSummary       = "FVS_Summary"
	tableCarbon        = "FVS_Carbon"
	tableCompute       = "FVS_Compute"
	tableHarvestCarbon = "FVS_Hrv_Carbon"
)

// OutputReader reads the simulator's SQLite output database into typed
// per-stand-per-year tables. The sql driver must be registered by the caller
// (the cmd package imports mattn/go-sqlite3).
type OutputReader struct{}

// Read loads the raw output tables for one completed stand run. The location
// may be the output database itself or the directory containing it. Tables
// the simulator did not write come back nil; an unreadable database is an
// error.
func (r *OutputReader) Read(outputLocation string) (*StandOutput, error) {
	dbPath := outputLocation
	if info, err := os.Stat(outputLocation); err == nil && info.IsDir() {
		dbPath = filepath.Join(outputLocation, "FVSOut.db")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("read output: database not found: %s", dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("read output: open %s: %w", dbPath, err)
	}
	defer db.Close()

	out := &StandOutput{}
	for _, t := range []struct {
		name string
		dst  *Table
	}{
		{tableSummary, &out.Summary},
		{tableCarbon, &out.Carbon},
		{tableCompute, &out.Compute},
		{tableHarvestCarbon, &out.HarvestCarbon},
	} {
		table, err := readTable(db, t.name)
		if err != nil {
			return nil, fmt.Errorf("read output: table %s: %w", t.name, err)
		}
		*t.dst = table
	}

	return out, nil
}

// readTable loads one table into rows keyed by (StandID, Year). A missing
// table is not an error; not every configuration produces every table.
func readTable(db *sql.DB, name string) (Table, error) {
	if ok, err := tableExists(db, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	rows, err := db.Query("SELECT * FROM " + name) //nolint:gosec // name is a compile-time constant
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var table Table
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := Row{Values: make(map[string]float64, len(cols))}
		for i, col := range cols {
			switch col {
			case "StandID", "Stand_ID":
				row.StandID = asString(raw[i])
			case "Year":
				if v, ok := asFloat(raw[i]); ok {
					row.Year = int(v)
				}
			default:
				if v, ok := asFloat(raw[i]); ok {
					row.Values[col] = v
				}
			}
		}
		table = append(table, row)
	}
	return table, rows.Err()
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
