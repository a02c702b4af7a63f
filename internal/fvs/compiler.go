package fvs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandCompiler builds the simulator input bundle by invoking an external
// compiler executable. The compiler is run in the work directory and is
// expected to leave one keyword file per stand (named <standID>.key) plus,
// optionally, an input database named FVS_Data.db.
type CommandCompiler struct {
	// Command is the compiler executable.
	Command string
	// Args are passed before the work directory argument.
	Args []string
	// InputDatabase is the filename the compiler writes the input database
	// to. Defaults to "FVS_Data.db".
	InputDatabase string
}

// Compile runs the external compiler and assembles the resulting bundle.
func (c *CommandCompiler) Compile(ctx context.Context, stands []Stand, trees []Tree, cfg SimConfig, workDir string) (*InputBundle, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("compile: create work dir: %w", err)
	}

	args := append(append([]string{}, c.Args...), workDir)
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("compile: %s: %s", err, msg)
		}
		return nil, fmt.Errorf("compile: %w", err)
	}

	bundle := &InputBundle{
		Dir:          workDir,
		KeywordFiles: make(map[string]string, len(stands)),
	}

	dbName := c.InputDatabase
	if dbName == "" {
		dbName = "FVS_Data.db"
	}
	dbPath := filepath.Join(workDir, dbName)
	if _, err := os.Stat(dbPath); err == nil {
		bundle.Database = dbPath
	}

	for _, s := range stands {
		name := s.ID + ".key"
		if _, err := os.Stat(filepath.Join(workDir, name)); err != nil {
			return nil, fmt.Errorf("compile: keyword file missing for stand %s: %w", s.ID, err)
		}
		bundle.KeywordFiles[s.ID] = name
	}

	return bundle, nil
}
