package query

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a query the caller built incorrectly: an
// unknown or non-numeric column, an unknown statistic, or a malformed
// filter. No partial result accompanies it.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "query: " + e.Reason
	}
	return fmt.Sprintf("query: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError returns true if err (or any error in its chain) is
// a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
