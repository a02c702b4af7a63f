package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfvs/fvsbatch/internal/fvs"
	"github.com/openfvs/fvsbatch/internal/params"
	"github.com/openfvs/fvsbatch/internal/results"
)

// Test Fakes

type fakeCompiler struct {
	mu       sync.Mutex
	calls    int
	lastCfg  fvs.SimConfig
	err      error
	panicMsg string
}

func (f *fakeCompiler) Compile(ctx context.Context, stands []fvs.Stand, trees []fvs.Tree, cfg fvs.SimConfig, workDir string) (*fvs.InputBundle, error) {
	f.mu.Lock()
	f.calls++
	f.lastCfg = cfg
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}

	bundle := &fvs.InputBundle{Dir: workDir, KeywordFiles: make(map[string]string)}
	for _, s := range stands {
		bundle.KeywordFiles[s.ID] = s.ID + ".key"
	}
	return bundle, nil
}

type fakeSimulator struct {
	mu        sync.Mutex
	simulated []string
	failFor   map[string]bool
}

func (f *fakeSimulator) Simulate(ctx context.Context, bundle *fvs.InputBundle, standID, workDir string, timeout time.Duration) (fvs.SimResult, error) {
	f.mu.Lock()
	f.simulated = append(f.simulated, standID)
	f.mu.Unlock()

	if f.failFor[standID] {
		return fvs.SimResult{Success: false, ExitCode: 2}, nil
	}
	return fvs.SimResult{Success: true, OutputLocation: filepath.Join(workDir, "FVSOut.db")}, nil
}

type fakeReader struct {
	output *fvs.StandOutput
	err    error
}

func (f *fakeReader) Read(outputLocation string) (*fvs.StandOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	standID := filepath.Base(filepath.Dir(outputLocation))
	return &fvs.StandOutput{
		Summary: fvs.Table{
			{StandID: standID, Year: 2025, Values: map[string]float64{"BA": 100, "RBdFt": 1000}},
			{StandID: standID, Year: 2035, Values: map[string]float64{"BA": 110, "RBdFt": 0}},
		},
		Carbon: fvs.Table{
			{StandID: standID, Year: 2025, Values: map[string]float64{"Aboveground_Total_Live": 10, "Standing_Dead": 1}},
			{StandID: standID, Year: 2035, Values: map[string]float64{"Aboveground_Total_Live": 12, "Standing_Dead": 2}},
		},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStands() ([]fvs.Stand, []fvs.Tree) {
	stands := []fvs.Stand{{ID: "S1", PlotID: 1}, {ID: "S2", PlotID: 1}}
	trees := []fvs.Tree{
		{StandID: "S1", Species: "DF", DBH: 12, Count: 40},
		{StandID: "S2", Species: "WH", DBH: 9, Count: 55},
	}
	return stands, trees
}

func newTestExecutor(c fvs.StandCompiler, s fvs.Simulator, r fvs.ResultReader) *Executor {
	return &Executor{Compiler: c, Simulator: s, Reader: r, Logger: testLogger()}
}

func TestExecuteSuccess(t *testing.T) {
	outputDir := t.TempDir()
	comp := &fakeCompiler{}
	sim := &fakeSimulator{}
	exec := newTestExecutor(comp, sim, &fakeReader{})
	stands, trees := testStands()

	sample := params.ParameterSample{RunID: 4, RunSeed: 123}
	res := exec.Execute(context.Background(), "b1", sample, stands, trees, fvs.DefaultSimConfig("base"), outputDir)

	require.NoError(t, res.Err)
	assert.Equal(t, "b1", res.BatchID)
	assert.Equal(t, 4, res.RunID)

	// The compiled configuration is named after the batch, carrying the
	// sampled run seed.
	assert.Equal(t, "b1_run_0004", comp.lastCfg.Name)
	require.NotNil(t, comp.lastCfg.RandomSeed)
	assert.Equal(t, 123, *comp.lastCfg.RandomSeed)

	// Run directory uses the zero-padded naming convention.
	if _, err := os.Stat(filepath.Join(outputDir, "run_0004")); err != nil {
		t.Errorf("run directory not created: %v", err)
	}
	// One working directory per stand.
	for _, id := range []string{"S1", "S2"} {
		if _, err := os.Stat(filepath.Join(outputDir, "run_0004", id)); err != nil {
			t.Errorf("stand directory %s not created: %v", id, err)
		}
	}

	assert.ElementsMatch(t, []string{"S1", "S2"}, sim.simulated)
	assert.Equal(t, 2, res.Summary.NStands)
	require.NotNil(t, res.Summary.RunDurationSec)
	assert.NotEmpty(t, res.Series)
	require.NotNil(t, res.Summary.FinalLiveCarbon)
	assert.InDelta(t, 12.0, *res.Summary.FinalLiveCarbon, 1e-9)
}

func TestExecuteAllStandsAttemptedOnFailure(t *testing.T) {
	sim := &fakeSimulator{failFor: map[string]bool{"S1": true}}
	exec := newTestExecutor(&fakeCompiler{}, sim, &fakeReader{})
	stands, trees := testStands()

	sample := params.ParameterSample{RunID: 0, RunSeed: 1}
	res := exec.Execute(context.Background(), "b1", sample, stands, trees, fvs.DefaultSimConfig("base"), t.TempDir())

	// The second stand is still simulated after the first fails.
	assert.ElementsMatch(t, []string{"S1", "S2"}, sim.simulated)

	// But one stand failure fails the run as a whole.
	require.Error(t, res.Err)
	assert.Equal(t, results.ErrorTypeExecution, res.ErrorType)
	require.NotNil(t, res.FailedStand)
	assert.Equal(t, "S1", *res.FailedStand)
	assert.Contains(t, res.Err.Error(), "S1")
}

func TestExecuteCompilerError(t *testing.T) {
	comp := &fakeCompiler{err: fmt.Errorf("keyword generation failed")}
	exec := newTestExecutor(comp, &fakeSimulator{}, &fakeReader{})
	stands, trees := testStands()

	res := exec.Execute(context.Background(), "b1", params.ParameterSample{RunID: 1}, stands, trees, fvs.DefaultSimConfig("base"), t.TempDir())

	require.Error(t, res.Err)
	assert.Equal(t, results.ErrorTypeExecution, res.ErrorType)
	assert.Contains(t, res.Err.Error(), "compile input")
}

func TestExecuteReaderError(t *testing.T) {
	sim := &fakeSimulator{}
	exec := newTestExecutor(&fakeCompiler{}, sim, &fakeReader{err: fmt.Errorf("no such table")})
	stands, trees := testStands()

	res := exec.Execute(context.Background(), "b1", params.ParameterSample{RunID: 0}, stands, trees, fvs.DefaultSimConfig("base"), t.TempDir())

	// A seedless sample still reaches the simulator; the failure comes from
	// the reader, not from configuration validation.
	assert.NotEmpty(t, sim.simulated)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "stands failed")
	assert.Equal(t, results.ErrorTypeExecution, res.ErrorType)
}

func TestExecuteInvalidMergedConfig(t *testing.T) {
	comp := &fakeCompiler{}
	exec := newTestExecutor(comp, &fakeSimulator{}, &fakeReader{})
	stands, trees := testStands()

	bad := 9.0
	sample := params.ParameterSample{RunID: 0, RunSeed: 1, MortalityMultiplier: &bad}
	res := exec.Execute(context.Background(), "b1", sample, stands, trees, fvs.DefaultSimConfig("base"), t.TempDir())

	require.Error(t, res.Err)
	assert.Equal(t, results.ErrorTypeExecution, res.ErrorType)
	assert.Zero(t, comp.calls, "invalid configuration must fail before compilation")
}

func TestExecuteAbsorbsPanic(t *testing.T) {
	exec := newTestExecutor(&fakeCompiler{panicMsg: "boom"}, &fakeSimulator{}, &fakeReader{})
	stands, trees := testStands()

	res := exec.Execute(context.Background(), "b1", params.ParameterSample{RunID: 2}, stands, trees, fvs.DefaultSimConfig("base"), t.TempDir())

	require.Error(t, res.Err)
	assert.Equal(t, results.ErrorTypeWorkerException, res.ErrorType)
	assert.Contains(t, res.Err.Error(), "panic")
	assert.Positive(t, res.Duration)
}

func TestExecuteValidationFailureFromReader(t *testing.T) {
	reader := &fakeReader{
		output: &fvs.StandOutput{
			Summary: fvs.Table{
				{StandID: "S1", Year: 2025, Values: map[string]float64{"RBdFt": 1000}},
				{StandID: "S1", Year: 2035, Values: map[string]float64{"RBdFt": -500}},
			},
		},
	}
	exec := newTestExecutor(&fakeCompiler{}, &fakeSimulator{}, reader)
	stands := []fvs.Stand{{ID: "S1"}}

	res := exec.Execute(context.Background(), "b1", params.ParameterSample{RunID: 0}, stands, nil, fvs.DefaultSimConfig("base"), t.TempDir())

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "cumulative harvest")
}
