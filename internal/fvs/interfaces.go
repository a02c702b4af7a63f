package fvs

import (
	"context"
	"time"
)

// InputBundle is the opaque product of a StandCompiler: everything the
// simulator needs to project the stand ensemble out of one working directory.
type InputBundle struct {
	// Dir is the directory the bundle was built in.
	Dir string
	// Database is the path to the simulator input database, if the compiler
	// produced one.
	Database string
	// KeywordFiles maps stand ID to the control-file name the simulator
	// reads for that stand.
	KeywordFiles map[string]string
}

// SimResult reports the outcome of one simulator invocation.
type SimResult struct {
	// Success is the collaborator's verdict after absorbing the simulator's
	// exit-code conventions. Callers must trust this flag, not ExitCode.
	Success bool
	// ExitCode is the raw process exit code.
	ExitCode int
	// OutputLocation is where the raw output tables were written.
	OutputLocation string
}

// StandCompiler builds the simulator input bundle for a stand ensemble.
type StandCompiler interface {
	Compile(ctx context.Context, stands []Stand, trees []Tree, cfg SimConfig, workDir string) (*InputBundle, error)
}

// Simulator runs the external growth simulator for one stand. Implementations
// must report success or failure unambiguously even when the underlying
// process uses nonstandard "success" exit codes, and must respect timeout.
type Simulator interface {
	Simulate(ctx context.Context, bundle *InputBundle, standID, workDir string, timeout time.Duration) (SimResult, error)
}

// StandOutput holds the raw typed tables read from one stand's completed run.
// Tables the simulator did not produce are nil.
type StandOutput struct {
	Summary       Table
	Carbon        Table
	Compute       Table
	HarvestCarbon Table
}

// ResultReader parses a completed run's raw output into typed tables.
type ResultReader interface {
	Read(outputLocation string) (*StandOutput, error)
}
