package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"basic-cleaning/models"
)

// WriteTable writes the table as CSV, header first and without an index
// column. The file is written beside the destination and renamed into
// place, so readers never observe a half-written file.
func WriteTable(path string, t *models.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file for %q: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("csv: rename into %q: %w", path, err)
	}
	return nil
}
