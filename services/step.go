package services

import (
	"context"
	"fmt"
	"io"

	"basic-cleaning/config"
	"basic-cleaning/storage"
	"basic-cleaning/utils"
)

// JobType is recorded on every run of this step.
const JobType = "basic_cleaning"

// Step downloads a listings artifact, cleans it and publishes the result.
type Step struct {
	Store      storage.ArtifactStore
	Recorder   storage.RunRecorder
	Logger     *utils.Logger
	Project    string
	OutputPath string
	Report     io.Writer
}

// StepResult describes a successful run.
type StepResult struct {
	RunID       string
	InputPath   string
	OutputPath  string
	OutputRef   string
	RowsWritten int
}

// Run executes the step once. Nothing is published unless every earlier
// stage succeeded; the run is recorded as failed otherwise.
func (s *Step) Run(ctx context.Context, args *config.Args) (res *StepResult, err error) {
	session, err := OpenSession(ctx, JobType, s.Project, s.Store, s.Recorder, s.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(ctx, err); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := session.RecordConfig(args.ConfigMap()); err != nil {
		return nil, err
	}

	inputPath, err := session.UseArtifact(args.InputArtifact)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("[step] Run using input artifact %s", args.InputArtifact)

	table, err := storage.ReadTable(inputPath)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("[step] Loaded %d rows, %d columns", table.Len(), len(table.Header))

	cleaned, err := NewCleaner(s.Logger).Clean(table, args.MinPrice, args.MaxPrice)
	if err != nil {
		return nil, err
	}

	profiler := NewProfiler(s.Logger)
	profile := profiler.Generate(cleaned)
	if err := session.SetSummary(profiler.Summary(profile)); err != nil {
		return nil, err
	}

	if err := storage.WriteTable(s.OutputPath, cleaned.Table); err != nil {
		return nil, err
	}
	s.Logger.Info("[step] Wrote %d rows to %s", cleaned.Table.Len(), s.OutputPath)

	ref, err := session.LogArtifact(s.OutputPath, args.OutputArtifact, args.OutputType, args.OutputDescription)
	if err != nil {
		return nil, fmt.Errorf("step: publish %s: %w", args.OutputArtifact, err)
	}

	if s.Report != nil {
		profiler.Print(s.Report, profile)
	}

	return &StepResult{
		RunID:       session.ID(),
		InputPath:   inputPath,
		OutputPath:  s.OutputPath,
		OutputRef:   ref,
		RowsWritten: cleaned.Table.Len(),
	}, nil
}
