package core

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrNoRuleSet indicates the pipeline was started without a rule set.
	ErrNoRuleSet = errors.New("no rule set configured")

	// ErrPipelineAlreadyRunning indicates a pipeline is already executing
	// for this rule set.
	ErrPipelineAlreadyRunning = errors.New("pipeline already running for this rule set")

	// ErrNoContent indicates the pipeline finished without producing
	// serialized output.
	ErrNoContent = errors.New("pipeline produced no content")
)

// StageError wraps an error with stage context.
type StageError struct {
	StageID   string
	StageName string
	Err       error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.StageName, e.StageID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stageID, stageName string, err error) *StageError {
	return &StageError{
		StageID:   stageID,
		StageName: stageName,
		Err:       err,
	}
}
