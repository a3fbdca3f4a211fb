package errors

import (
	"errors"
	"fmt"
	"sort"
)

// ClassifiedError is a structured error with a category, a message and context.
type ClassifiedError struct {
	category ErrorCategory
	message  string
	cause    error
	context  ErrorContext
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.category, e.message)
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Message returns the error message.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// LogAttrs flattens the error into slog key/value pairs, context keys sorted.
func (e *ClassifiedError) LogAttrs() []any {
	attrs := []any{"category", string(e.category)}
	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, e.context[k])
	}
	return attrs
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if any error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// MissingTitleError reports a post without a level-1 heading line.
// It is kept apart from ClassifiedError because the CLI terminates with a
// dedicated diagnostic and exit status for it.
type MissingTitleError struct {
	Path string
}

func (e *MissingTitleError) Error() string {
	return "Failed to get title for " + e.Path
}

// AsMissingTitle finds a MissingTitleError in the chain.
func AsMissingTitle(err error) (*MissingTitleError, bool) {
	var missing *MissingTitleError
	if errors.As(err, &missing) {
		return missing, true
	}
	return nil, false
}
