package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for the fatal error kinds of the cleaning step. Each typed error
// below matches its sentinel with errors.Is.
var (
	ErrResolution = errors.New("artifact reference could not be resolved")
	ErrParse      = errors.New("input is not valid delimited data")
	ErrSchema     = errors.New("input is missing required columns")
)

// ResolutionError reports an artifact reference the store cannot resolve.
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve artifact %q: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("resolve artifact %q: not found", e.Ref)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// ParseError reports a malformed tabular file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SchemaError lists required columns absent from the input header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
