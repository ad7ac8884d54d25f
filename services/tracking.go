package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"basic-cleaning/models"
	"basic-cleaning/storage"
	"basic-cleaning/utils"
)

// ErrSessionClosed is returned by Session methods after Close.
var ErrSessionClosed = errors.New("tracking: session closed")

// artifactLooker is implemented by stores that can describe what a
// reference currently points at.
type artifactLooker interface {
	Lookup(ref string) (*models.Artifact, error)
}

// Session is one tracked run: it records configuration, the artifacts the
// run consumed and produced, and a summary, and flushes them on Close.
type Session struct {
	run      *models.Run
	store    storage.ArtifactStore
	recorder storage.RunRecorder
	logger   *utils.Logger
	now      func() time.Time
	closed   bool
}

// OpenSession starts a run of the given job type and records it as running.
func OpenSession(ctx context.Context, jobType, project string, store storage.ArtifactStore,
	recorder storage.RunRecorder, logger *utils.Logger) (*Session, error) {
	s := &Session{
		store:    store,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
	s.run = &models.Run{
		ID:        uuid.NewString(),
		Project:   project,
		JobType:   jobType,
		Status:    models.RunRunning,
		Config:    make(map[string]any),
		StartedAt: s.now().UTC(),
	}
	if err := recorder.SaveRun(ctx, s.run); err != nil {
		return nil, fmt.Errorf("tracking: open %s run: %w", jobType, err)
	}
	logger.Info("[tracking] Run %s started (job type %s)", s.run.ID, jobType)
	return s, nil
}

// ID returns the run id.
func (s *Session) ID() string { return s.run.ID }

// Run returns a copy of the run record as it stands.
func (s *Session) Run() models.Run {
	r := *s.run
	r.Inputs = append([]string(nil), s.run.Inputs...)
	r.Outputs = append([]string(nil), s.run.Outputs...)
	return r
}

// RecordConfig merges values into the run configuration.
func (s *Session) RecordConfig(values map[string]any) error {
	if s.closed {
		return ErrSessionClosed
	}
	for k, v := range values {
		s.run.Config[k] = v
	}
	return nil
}

// UseArtifact resolves ref to a local file and records it as a run input.
func (s *Session) UseArtifact(ref string) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	path, err := s.store.Resolve(ref)
	if err != nil {
		return "", err
	}

	used := ref
	if l, ok := s.store.(artifactLooker); ok {
		if a, err := l.Lookup(ref); err == nil {
			used = storage.RefOf(a)
		}
	}
	s.run.Inputs = append(s.run.Inputs, used)
	s.logger.Debug("[tracking] Using artifact %s (%s)", used, path)
	return path, nil
}

// LogArtifact publishes a local file as a new artifact produced by this run
// and returns its reference.
func (s *Session) LogArtifact(localPath, name, artifactType, description string) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	a, err := s.store.Publish(localPath, name, artifactType, description, s.run.ID)
	if err != nil {
		return "", err
	}
	ref := storage.RefOf(a)
	s.run.Outputs = append(s.run.Outputs, ref)
	s.logger.Info("[tracking] Logged artifact %s (type %s, %d bytes)", ref, a.Type, a.Size)
	return ref, nil
}

// SetSummary replaces the run summary.
func (s *Session) SetSummary(summary map[string]any) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.run.Summary = summary
	return nil
}

// Close marks the run finished, or failed when runErr is non-nil, and
// flushes it to the recorder. Calling Close twice is a no-op.
func (s *Session) Close(ctx context.Context, runErr error) error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.run.FinishedAt = s.now().UTC()
	s.run.Status = models.RunFinished
	if runErr != nil {
		s.run.Status = models.RunFailed
		s.run.Error = runErr.Error()
	}

	if err := s.recorder.SaveRun(ctx, s.run); err != nil {
		return fmt.Errorf("tracking: flush run %s: %w", s.run.ID, err)
	}
	s.logger.Info("[tracking] Run %s %s in %v", s.run.ID, s.run.Status,
		s.run.FinishedAt.Sub(s.run.StartedAt).Round(time.Millisecond))
	return nil
}
