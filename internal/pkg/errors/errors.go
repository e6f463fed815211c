//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package errors defines the error taxonomy of the benchmark. A single
// failure invalidates the timing comparability of the whole run, so every
// kind is fatal: the top-level handler reports the error and tears the
// worker group down.
package errors

import "fmt"

type Kind int

const (
	// ErrNone means no error.
	ErrNone Kind = iota
	// ErrConfig covers argument and worker-layout mistakes, detected
	// before any I/O happens.
	ErrConfig
	// ErrMetadata covers missing axes and dimension/variable query
	// failures on the first file.
	ErrMetadata
	// ErrIO covers open, access-mode and read failures during the
	// benchmark loop.
	ErrIO
)

func (k Kind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrConfig:
		return "configuration error"
	case ErrMetadata:
		return "metadata error"
	case ErrIO:
		return "I/O error"
	}
	return "unknown error"
}

// RunError carries the failing worker's identity and, when relevant, the
// file being processed, so the diagnostic printed just before the group
// aborts is enough to localize the failure.
type RunError struct {
	Kind Kind
	Rank int
	File string
	Err  error
}

func (e *RunError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("rank %d: %s: %s: %s", e.Rank, e.Kind, e.File, e.Err)
	}
	return fmt.Sprintf("rank %d: %s: %s", e.Rank, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and the reporting worker's rank.
func New(kind Kind, rank int, err error) *RunError {
	return &RunError{Kind: kind, Rank: rank, Err: err}
}

// NewFile is New with the name of the file being processed.
func NewFile(kind Kind, rank int, file string, err error) *RunError {
	return &RunError{Kind: kind, Rank: rank, File: file, Err: err}
}
