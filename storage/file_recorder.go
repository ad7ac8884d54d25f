package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"basic-cleaning/models"
)

// FileRunRecorder writes each run as <dir>/<run_id>.yaml.
type FileRunRecorder struct {
	dir string
}

// NewFileRunRecorder creates the run directory if needed.
func NewFileRunRecorder(dir string) (*FileRunRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("runs: create dir %q: %w", dir, err)
	}
	return &FileRunRecorder{dir: dir}, nil
}

// SaveRun writes (or overwrites) the run record.
func (r *FileRunRecorder) SaveRun(ctx context.Context, run *models.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("runs: encode %s: %w", run.ID, err)
	}
	if err := os.WriteFile(r.path(run.ID), data, 0644); err != nil {
		return fmt.Errorf("runs: write %s: %w", run.ID, err)
	}
	return nil
}

// FetchRun reads a previously saved run.
func (r *FileRunRecorder) FetchRun(ctx context.Context, id string) (*models.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		return nil, fmt.Errorf("runs: read %s: %w", id, err)
	}
	var run models.Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("runs: decode %s: %w", id, err)
	}
	return &run, nil
}

func (r *FileRunRecorder) Close() error { return nil }

func (r *FileRunRecorder) path(id string) string {
	return filepath.Join(r.dir, id+".yaml")
}
