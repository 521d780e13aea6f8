package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPipelineNotFound is wrapped by driven adapters when the target account
// has no pipeline with the requested name.
var ErrPipelineNotFound = errors.New("pipeline not found")

// InvalidPathError reports a changed path that failed normalization.
// It is reported per path and never aborts a classification.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// ConfigValidationError reports every problem found in a routing config.
// It is the only error that is fatal to the process.
type ConfigValidationError struct {
	Problems []string
}

func (e *ConfigValidationError) Error() string {
	return "invalid routing config: " + strings.Join(e.Problems, "; ")
}

// InvalidPipelineNameError reports a resolved name that violates the
// pipeline naming constraints.
type InvalidPipelineNameError struct {
	Name   string
	Reason string
}

func (e *InvalidPipelineNameError) Error() string {
	return fmt.Sprintf("invalid pipeline name %q: %s", e.Name, e.Reason)
}

// IsConfigValidation reports whether err is (or wraps) a ConfigValidationError.
func IsConfigValidation(err error) bool {
	var cve *ConfigValidationError
	return errors.As(err, &cve)
}
