package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"basic-cleaning/models"
)

// Lineage directions stored in run_artifacts.
const (
	directionInput  = "input"
	directionOutput = "output"
)

// SQLRunRecorder persists runs and their artifact lineage to PostgreSQL or
// SQLite through database/sql.
type SQLRunRecorder struct {
	db      *sql.DB
	dialect string
}

// NewPostgresRunRecorder connects to PostgreSQL and migrates the schema.
func NewPostgresRunRecorder(ctx context.Context, dsn string) (*SQLRunRecorder, error) {
	return openSQLRunRecorder(ctx, "postgres", dsn)
}

// NewSQLiteRunRecorder opens (or creates) a SQLite database file and
// migrates the schema. ":memory:" is accepted.
func NewSQLiteRunRecorder(ctx context.Context, path string) (*SQLRunRecorder, error) {
	return openSQLRunRecorder(ctx, "sqlite", path)
}

func openSQLRunRecorder(ctx context.Context, dialect, dsn string) (*SQLRunRecorder, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// one connection keeps ":memory:" databases alive across calls
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", dialect, err)
	}

	r := &SQLRunRecorder{db: db, dialect: dialect}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", dialect, err)
	}
	return r, nil
}

func (r *SQLRunRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          VARCHAR(64)  PRIMARY KEY,
			project     TEXT         NOT NULL DEFAULT '',
			job_type    VARCHAR(100) NOT NULL,
			status      VARCHAR(20)  NOT NULL,
			error       TEXT         NOT NULL DEFAULT '',
			config      TEXT         NOT NULL DEFAULT '{}',
			summary     TEXT         NOT NULL DEFAULT '{}',
			started_at  TIMESTAMP    NOT NULL,
			finished_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS run_artifacts (
			run_id      VARCHAR(64)  NOT NULL,
			direction   VARCHAR(10)  NOT NULL,
			position    INTEGER      NOT NULL,
			artifact    TEXT         NOT NULL,
			PRIMARY KEY (run_id, direction, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_job_type ON runs(job_type)`,
		`CREATE INDEX IF NOT EXISTS idx_run_artifacts_artifact ON run_artifacts(artifact)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// bind rewrites "?" placeholders for the active dialect.
func (r *SQLRunRecorder) bind(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// SaveRun upserts the run row and replaces its lineage in one transaction.
func (r *SQLRunRecorder) SaveRun(ctx context.Context, run *models.Run) error {
	cfg, err := json.Marshal(nonNil(run.Config))
	if err != nil {
		return fmt.Errorf("%s: encode config: %w", r.dialect, err)
	}
	summary, err := json.Marshal(nonNil(run.Summary))
	if err != nil {
		return fmt.Errorf("%s: encode summary: %w", r.dialect, err)
	}

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", r.dialect, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.bind(`
		INSERT INTO runs (id, project, job_type, status, error, config, summary, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			config = excluded.config,
			summary = excluded.summary,
			finished_at = excluded.finished_at
	`), run.ID, run.Project, run.JobType, run.Status, run.Error,
		string(cfg), string(summary), run.StartedAt.UTC(), finished)
	if err != nil {
		return fmt.Errorf("%s: upsert run %s: %w", r.dialect, run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, r.bind(`DELETE FROM run_artifacts WHERE run_id = ?`), run.ID); err != nil {
		return fmt.Errorf("%s: clear lineage %s: %w", r.dialect, run.ID, err)
	}
	insert := r.bind(`INSERT INTO run_artifacts (run_id, direction, position, artifact) VALUES (?, ?, ?, ?)`)
	for dir, refs := range map[string][]string{directionInput: run.Inputs, directionOutput: run.Outputs} {
		for i, ref := range refs {
			if _, err := tx.ExecContext(ctx, insert, run.ID, dir, i, ref); err != nil {
				return fmt.Errorf("%s: insert lineage %s: %w", r.dialect, run.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit run %s: %w", r.dialect, run.ID, err)
	}
	return nil
}

// FetchRun loads a run with its lineage.
func (r *SQLRunRecorder) FetchRun(ctx context.Context, id string) (*models.Run, error) {
	run := &models.Run{ID: id}
	var cfg, summary string
	var finished sql.NullTime

	err := r.db.QueryRowContext(ctx, r.bind(`
		SELECT project, job_type, status, error, config, summary, started_at, finished_at
		FROM runs WHERE id = ?
	`), id).Scan(&run.Project, &run.JobType, &run.Status, &run.Error, &cfg, &summary, &run.StartedAt, &finished)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch run %s: %w", r.dialect, id, err)
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	if err := json.Unmarshal([]byte(cfg), &run.Config); err != nil {
		return nil, fmt.Errorf("%s: decode config %s: %w", r.dialect, id, err)
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, fmt.Errorf("%s: decode summary %s: %w", r.dialect, id, err)
	}

	rows, err := r.db.QueryContext(ctx, r.bind(`
		SELECT direction, artifact FROM run_artifacts
		WHERE run_id = ?
		ORDER BY direction, position
	`), id)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch lineage %s: %w", r.dialect, id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dir, ref string
		if err := rows.Scan(&dir, &ref); err != nil {
			return nil, fmt.Errorf("%s: scan lineage: %w", r.dialect, err)
		}
		switch dir {
		case directionInput:
			run.Inputs = append(run.Inputs, ref)
		case directionOutput:
			run.Outputs = append(run.Outputs, ref)
		}
	}
	return run, rows.Err()
}

func (r *SQLRunRecorder) Close() error {
	return r.db.Close()
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
