package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"basic-cleaning/config"
	"basic-cleaning/services"
	"basic-cleaning/storage"
	"basic-cleaning/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	args, err := config.ParseArgs(argv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		logger.Error("%v", err)
		return 2
	}

	logger.Info("=== Basic cleaning starting ===")
	logger.Info("Config — store: %s | tracking: %s | output: %s | price: [%.2f, %.2f]",
		cfg.ArtifactRoot, cfg.TrackingBackend, cfg.CleanOutputPath, args.MinPrice, args.MaxPrice)

	ctx := context.Background()

	store, err := storage.NewFileArtifactStore(cfg.ArtifactRoot)
	if err != nil {
		logger.Error("Failed to open artifact store: %v", err)
		return 1
	}

	recorder, err := openRecorder(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open %s tracking backend: %v", cfg.TrackingBackend, err)
		return 1
	}
	defer recorder.Close()

	step := &services.Step{
		Store:      store,
		Recorder:   recorder,
		Logger:     logger,
		Project:    cfg.Project,
		OutputPath: cfg.CleanOutputPath,
		Report:     os.Stdout,
	}

	res, err := step.Run(ctx, args)
	if err != nil {
		logger.Error("Basic cleaning failed: %v", err)
		return 1
	}

	fmt.Printf("  Done. Clean data → %s | Artifact → %s | Run → %s\n\n",
		res.OutputPath, res.OutputRef, res.RunID)
	return 0
}

func openRecorder(ctx context.Context, cfg *config.Config) (storage.RunRecorder, error) {
	switch cfg.TrackingBackend {
	case config.BackendFile:
		return storage.NewFileRunRecorder(filepath.Join(cfg.ArtifactRoot, "runs"))
	case config.BackendPostgres:
		return storage.NewPostgresRunRecorder(ctx, cfg.DSN())
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, err
		}
		return storage.NewSQLiteRunRecorder(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown tracking backend %q (want file, postgres or sqlite)", cfg.TrackingBackend)
	}
}
