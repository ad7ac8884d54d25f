package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"basic-cleaning/models"
)

// ReadTable loads a comma-separated file with a header row into memory.
// Malformed input is reported as *models.ParseError.
func ReadTable(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	return DecodeTable(f, path)
}

// DecodeTable reads a table from r; name is used in error messages.
func DecodeTable(r io.Reader, name string) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.ParseError{Path: name, Err: errors.New("empty file, no header row")}
	}
	if err != nil {
		return nil, parseErr(name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErr(name, err)
		}
		rows = append(rows, rec)
	}

	return models.NewTable(header, rows), nil
}

func parseErr(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &models.ParseError{Path: name, Line: pe.Line, Err: pe.Err}
	}
	return &models.ParseError{Path: name, Err: err}
}
