package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/openfvs/fvsbatch/internal/batch"
	"github.com/openfvs/fvsbatch/internal/config"
	"github.com/openfvs/fvsbatch/internal/executor"
	"github.com/openfvs/fvsbatch/internal/fvs"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "Path to configuration file (TOML)")
	inventoryDB := flag.String("inventory", "", "Path to the stand inventory database (overrides config)")
	flag.Parse()

	// Optional .env for local overrides, missing file is fine
	godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *inventoryDB != "" {
		cfg.Simulator.InventoryDB = *inventoryDB
	}

	// Initialize structured logger
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("starting fvsbatch monte carlo runner")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	batchCfg, err := cfg.ToBatchConfig()
	if err != nil {
		slog.Error("invalid parameter specification", "error", err)
		os.Exit(1)
	}

	// Load the stand ensemble
	slog.Info("loading inventory", "path", cfg.Simulator.InventoryDB)
	stands, trees, err := fvs.LoadInventory(cfg.Simulator.InventoryDB)
	if err != nil {
		slog.Error("failed to load inventory", "error", err)
		os.Exit(1)
	}
	slog.Info("inventory loaded", "stands", len(stands), "trees", len(trees))

	// Wire the external collaborators
	exec := &executor.Executor{
		Compiler: &fvs.CommandCompiler{
			Command: cfg.Simulator.CompilerCommand,
			Args:    cfg.Simulator.CompilerArgs,
		},
		Simulator: &fvs.ExecSimulator{Binary: cfg.Simulator.Binary},
		Reader:    &fvs.OutputReader{},
		Timeout:   batchCfg.SimulateTimeout,
		Logger:    logger,
	}

	orch := &batch.Orchestrator{
		Executor: exec,
		Logger:   logger,
		Progress: func(done, total int, res executor.RunResult) {
			slog.Info("progress", "done", done, "total", total, "run_id", res.RunID)
		},
	}

	// Cancel the batch on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := orch.Run(ctx, batchCfg, stands, trees)
	if err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}

	slog.Info("batch done",
		"batch_id", outcome.BatchID,
		"status", outcome.Status,
		"complete", outcome.NComplete,
		"failed", outcome.NFailed,
		"store", outcome.StorePath)
}
