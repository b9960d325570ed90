package errors

import (
	"fmt"
	"sync"
	"time"
)

// BuildFailure records a library whose compiled output could not be produced.
type BuildFailure struct {
	Library    string
	ScriptType string
	Cause      error
	Severity   ErrorSeverity
	Timestamp  time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (bf *BuildFailure) Error() string {
	if bf.ScriptType == "" {
		return fmt.Sprintf("%s: %s: %v", bf.Library, bf.Severity, bf.Cause)
	}
	return fmt.Sprintf("%s (%s): %s: %v", bf.Library, bf.ScriptType, bf.Severity, bf.Cause)
}

// Unwrap returns the underlying cause.
func (bf *BuildFailure) Unwrap() error {
	return bf.Cause
}

// ErrorCollector collects failures across a cache build so that one broken
// library does not stop the others from being rebuilt.
type ErrorCollector struct {
	failures []BuildFailure
	mutex    sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		failures: make([]BuildFailure, 0),
	}
}

// Add adds a build failure to the collector
func (ec *ErrorCollector) Add(failure BuildFailure) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if failure.Timestamp.IsZero() {
		failure.Timestamp = time.Now()
	}
	ec.failures = append(ec.failures, failure)
}

// AddError records cause against library at error severity. Nil causes are ignored.
func (ec *ErrorCollector) AddError(library, scriptType string, cause error) {
	if cause == nil {
		return
	}
	ec.Add(BuildFailure{
		Library:    library,
		ScriptType: scriptType,
		Cause:      cause,
		Severity:   ErrorSeverityError,
	})
}

// Failures returns a copy of all collected failures
func (ec *ErrorCollector) Failures() []BuildFailure {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]BuildFailure, len(ec.failures))
	copy(result, ec.failures)
	return result
}

// HasErrors returns true if there are any failures
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.failures) > 0
}

// Clear clears all failures
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.failures = ec.failures[:0]
}

// ByLibrary returns failures recorded for a specific library path
func (ec *ErrorCollector) ByLibrary(library string) []BuildFailure {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var result []BuildFailure
	for _, f := range ec.failures {
		if f.Library == library {
			result = append(result, f)
		}
	}
	return result
}

// Err folds the collected failures into a single cache build error, or nil.
func (ec *ErrorCollector) Err() error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	switch len(ec.failures) {
	case 0:
		return nil
	case 1:
		f := ec.failures[0]
		return NewCacheBuildError("cache build failed for "+f.Library, &f).WithPath(f.Library)
	default:
		first := ec.failures[0]
		return NewCacheBuildError(
			fmt.Sprintf("cache build failed for %d libraries", len(ec.failures)),
			&first,
		).WithContext("failures", len(ec.failures))
	}
}
