package filter

import (
	"fmt"
)

// Error types for filter operations
type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// ConversionError indicates an item could not be turned into a filter
	// environment
	ConversionError struct {
		Index int
		Err   error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert item %d for filtering: %v", e.Index, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
