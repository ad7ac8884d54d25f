package models

import "time"

// Artifact is one immutable, versioned file registered in the store.
type Artifact struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Version     int       `yaml:"version"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	File        string    `yaml:"file"`
	Checksum    string    `yaml:"checksum"`
	Size        int64     `yaml:"size"`
	RunID       string    `yaml:"run_id,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// Run statuses.
const (
	RunRunning  = "running"
	RunFinished = "finished"
	RunFailed   = "failed"
)

// Run is the tracking record of one step invocation.
type Run struct {
	ID         string         `yaml:"id"`
	Project    string         `yaml:"project,omitempty"`
	JobType    string         `yaml:"job_type"`
	Status     string         `yaml:"status"`
	Error      string         `yaml:"error,omitempty"`
	Config     map[string]any `yaml:"config,omitempty"`
	Summary    map[string]any `yaml:"summary,omitempty"`
	Inputs     []string       `yaml:"inputs,omitempty"`
	Outputs    []string       `yaml:"outputs,omitempty"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at,omitempty"`
}

// DatasetProfile summarises a cleaning pass over a listings table.
type DatasetProfile struct {
	RowsIn          int
	RowsAfterPrice  int
	RowsOut         int
	NullLastReview  int
	MinPrice        float64
	MaxPrice        float64
	MeanPrice       float64
	MedianPrice     float64
	StdDevPrice     float64
	ListingsByGroup map[string]int
}
