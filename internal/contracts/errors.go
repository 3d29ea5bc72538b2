package contracts

import (
	"fmt"
	"time"
)

// Error taxonomy for one pipeline run.
//
// StageError halts the run: the stage itself failed and no further stage
// may execute. ItemError is symbol-scoped: it is recorded in a side-channel
// and the symbol is absent or degraded in the stage output while the run
// continues. Degraded metric results are not errors at all.

// StageError is a halting, stage-tagged error
type StageError struct {
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Error implements the error interface
func (e StageError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Stage, e.Message)
}

// NewStageError creates a stage error tagged with the current time
func NewStageError(stage Stage, message string) StageError {
	return StageError{Stage: stage, Message: message, At: time.Now()}
}

// ItemError is a non-halting, symbol-scoped error
type ItemError struct {
	Stage   Stage     `json:"stage"`
	Symbol  string    `json:"symbol"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Key returns the diagnostic key for this item error, e.g. "error_FETCH_MSFT"
func (e ItemError) Key() string {
	return fmt.Sprintf("error_%s_%s", e.Stage, e.Symbol)
}

// Error implements the error interface
func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Stage, e.Symbol, e.Message)
}

// NewItemError creates an item error tagged with the current time
func NewItemError(stage Stage, symbol, message string) ItemError {
	return ItemError{Stage: stage, Symbol: symbol, Message: message, At: time.Now()}
}
