// Package errors provides standardized error types for the analysis pipeline.
// It defines PipelineError for consistent error handling across all stages,
// with stage context and error wrapping support.
package errors

import (
	"fmt"
)

// Stage identifiers used in PipelineError.Stage.
const (
	StageSchema   = "schema"
	StageLoad     = "load"
	StageClean    = "clean"
	StageDerive   = "derive"
	StageSplit    = "split"
	StageScale    = "scale"
	StageModel    = "model"
	StageEvaluate = "evaluate"
)

// PipelineError represents a standardized error raised by a pipeline stage.
type PipelineError struct {
	Stage   string // Stage name (e.g., "schema", "clean", "derive")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s stage failed on column '%s': %s", e.Stage, e.Column, e.Message)
	}
	return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
func (e *PipelineError) Is(target error) bool {
	if pe, ok := target.(*PipelineError); ok {
		return e.Stage == pe.Stage && e.Column == pe.Column && e.Message == pe.Message
	}
	return false
}

// NewSchemaError creates a fatal error for a missing or malformed input column.
// The pipeline cannot proceed without the canonical columns it renames from.
func NewSchemaError(column, message string) *PipelineError {
	return &PipelineError{
		Stage:   StageSchema,
		Column:  column,
		Message: message,
	}
}

// NewDateConstructionError creates a fatal error for a row whose
// year/month/day parts cannot form a valid calendar date. A single malformed
// date indicates a deeper schema problem worth surfacing rather than
// silently discarding the row.
func NewDateConstructionError(track, message string) *PipelineError {
	return &PipelineError{
		Stage:   StageDerive,
		Message: fmt.Sprintf("track %q: %s", track, message),
	}
}

// NewRowParseError creates a recoverable per-row error for a value that
// cannot be coerced to its canonical type. Callers filter and count these;
// they are never propagated past the cleaning stage.
func NewRowParseError(column, value string) *PipelineError {
	return &PipelineError{
		Stage:   StageClean,
		Column:  column,
		Message: fmt.Sprintf("cannot parse %q", value),
	}
}

// NewInvalidInputError creates an error for invalid stage inputs.
func NewInvalidInputError(stage, message string) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: message,
	}
}

// NewInternalError creates an error for internal stage failures.
func NewInternalError(stage string, cause error) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// IsSchemaError reports whether err originated in schema validation.
func IsSchemaError(err error) bool {
	pe, ok := err.(*PipelineError)
	return ok && pe.Stage == StageSchema
}

// IsDateConstructionError reports whether err is a fatal date
// reconstruction failure from the derivation stage.
func IsDateConstructionError(err error) bool {
	pe, ok := err.(*PipelineError)
	return ok && pe.Stage == StageDerive
}

// Predefined error variables for common cases.
var (
	// ErrEmptyDataset indicates operations on a dataset with no rows.
	ErrEmptyDataset = &PipelineError{
		Stage:   StageClean,
		Message: "operation not supported on an empty dataset",
	}

	// ErrNotFitted indicates use of a transform or model before fitting.
	ErrNotFitted = &PipelineError{
		Stage:   StageModel,
		Message: "estimator has not been fitted",
	}

	// ErrDimensionMismatch indicates row or column count mismatches.
	ErrDimensionMismatch = &PipelineError{
		Stage:   StageModel,
		Message: "inputs must have matching dimensions",
	}
)
