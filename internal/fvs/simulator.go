package fvs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExecSimulator runs the FVS binary as an external process. FVS reads the
// keyword filename from stdin and writes its outputs into the working
// directory, including an output database the ResultReader consumes.
type ExecSimulator struct {
	// Binary is the path to the FVS executable.
	Binary string
	// OutputDatabase is the filename FVS writes its tables to within the
	// working directory. Defaults to "FVSOut.db".
	OutputDatabase string
}

// Simulate runs one stand through the simulator with a hard timeout. A
// timeout or a nonzero terminal exit is reported through SimResult and the
// returned error; the process never escapes the deadline.
func (s *ExecSimulator) Simulate(ctx context.Context, bundle *InputBundle, standID, workDir string, timeout time.Duration) (SimResult, error) {
	keywordFile, ok := bundle.KeywordFiles[standID]
	if !ok {
		return SimResult{}, fmt.Errorf("simulate %s: no keyword file in input bundle", standID)
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return SimResult{}, fmt.Errorf("simulate %s: create work dir: %w", standID, err)
	}
	if bundle.Database != "" {
		if err := copyFile(bundle.Database, filepath.Join(workDir, filepath.Base(bundle.Database))); err != nil {
			return SimResult{}, fmt.Errorf("simulate %s: stage input database: %w", standID, err)
		}
	}
	if err := copyFile(filepath.Join(bundle.Dir, keywordFile), filepath.Join(workDir, keywordFile)); err != nil {
		return SimResult{}, fmt.Errorf("simulate %s: stage keyword file: %w", standID, err)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, s.Binary)
	cmd.Dir = workDir
	// FVS expects the keyword filename (not the full path) on stdin.
	cmd.Stdin = strings.NewReader(keywordFile + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// Keep the raw process output next to the run for debugging.
	_ = os.WriteFile(filepath.Join(workDir, "fvs.out"), stdout.Bytes(), 0o644)
	_ = os.WriteFile(filepath.Join(workDir, "fvs.err"), stderr.Bytes(), 0o644)

	// The parent context ending (batch deadline, interrupt) is a
	// cancellation, not a per-stand timeout.
	if ctx.Err() != nil {
		return SimResult{Success: false, ExitCode: -1},
			fmt.Errorf("simulate %s: %w", standID, ctx.Err())
	}
	if runCtx.Err() != nil {
		return SimResult{Success: false, ExitCode: -1},
			fmt.Errorf("simulate %s: timed out after %s", standID, timeout)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return SimResult{}, fmt.Errorf("simulate %s: run simulator: %w", standID, runErr)
		}
	}

	outDB := s.OutputDatabase
	if outDB == "" {
		outDB = "FVSOut.db"
	}

	return SimResult{
		Success:        simulatorSucceeded(exitCode, stderr.String()),
		ExitCode:       exitCode,
		OutputLocation: filepath.Join(workDir, outDB),
	}, nil
}

// simulatorSucceeded absorbs the FVS exit-code convention. FVS reports
// successful completion as "STOP 20" on stderr (with a matching nonzero exit
// code) and completion-with-warnings as "STOP 10"; both count as success.
func simulatorSucceeded(exitCode int, stderr string) bool {
	return exitCode == 0 ||
		strings.Contains(stderr, "STOP 20") ||
		strings.Contains(stderr, "STOP 10")
}

func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
