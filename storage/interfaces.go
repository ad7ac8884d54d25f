package storage

import (
	"context"

	"basic-cleaning/models"
)

// ArtifactStore resolves artifact references and registers new artifacts.
type ArtifactStore interface {
	Resolve(ref string) (string, error)
	Publish(localPath, name, artifactType, description, runID string) (*models.Artifact, error)
}

// RunRecorder persists tracking runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.Run) error
	Close() error
}
