package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/conneroisu/thematic/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// Error joins the validation errors.
func (vr *ValidationResult) Error() string {
	msgs := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// Validate checks a configuration and reports every problem found.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateStorePath(result, "roots.override", config.Roots.Override)
	validateStorePath(result, "roots.base", config.Roots.Base)
	if config.Roots.Override != "" && config.Roots.Override == config.Roots.Base {
		result.addError("roots", config.Roots.Override, "override and base roots must differ")
	}

	if len(config.ComponentRoots()) == 0 {
		result.addError("components.roots", nil, "at least one component root is required")
	}
	for i, r := range config.Components.Roots {
		validateStorePath(result, fmt.Sprintf("components.roots[%d]", i), r)
	}
	for i, r := range config.Components.BaseRoots {
		validateStorePath(result, fmt.Sprintf("components.base_roots[%d]", i), r)
	}

	validateStorePath(result, "frameworks.override_root", config.Frameworks.OverrideRoot)
	validateStorePath(result, "frameworks.base_root", config.Frameworks.BaseRoot)
	validateStorePath(result, "vendors.etc_root", config.Vendors.EtcRoot)
	validateStorePath(result, "vendors.libs_root", config.Vendors.LibsRoot)

	validateCacheConfig(result, config)
	validateContentConfig(result, &config.Content)

	if config.Resolution.MaxSupertypeDepth < 1 {
		result.addError("resolution.max_supertype_depth", config.Resolution.MaxSupertypeDepth,
			"must be at least 1")
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		result.addError("log.level", config.Log.Level, err.Error(),
			"use one of debug, info, warn, error")
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		result.addError("log.format", config.Log.Format, "unknown log format", "use text or json")
	}

	return result
}

func validateStorePath(result *ValidationResult, field, p string) {
	switch {
	case p == "":
		result.addError(field, p, "path is required")
	case !strings.HasPrefix(p, "/"):
		result.addError(field, p, "store paths must be absolute", "prefix the path with /")
	case path.Clean(p) != p && path.Clean(p)+"/" != p:
		result.addError(field, p, "path is not clean", "use "+path.Clean(p))
	}
}

func validateCacheConfig(result *ValidationResult, config *Config) {
	cache := &config.Cache
	validateStorePath(result, "cache.root", cache.Root)
	if cache.Root == "/" {
		result.addError("cache.root", cache.Root, "cache root cannot be the store root")
	}
	for _, r := range config.ComponentRoots() {
		if r != "" && (cache.Root == r || strings.HasPrefix(cache.Root, strings.TrimSuffix(r, "/")+"/")) {
			result.addWarning("cache.root", cache.Root,
				"cache root is inside component root "+r,
				"keep compiled output outside scanned trees")
		}
	}

	if cache.BuildAttempts < 1 {
		result.addError("cache.build_attempts", cache.BuildAttempts, "must be at least 1")
	}
	if cache.MinPurgeInterval < 0 {
		result.addError("cache.min_purge_interval", cache.MinPurgeInterval, "must not be negative")
	}
	if cache.RetryDelay < 0 {
		result.addError("cache.retry_delay", cache.RetryDelay, "must not be negative")
	}
	if cache.MemoryBytes < 0 {
		result.addError("cache.memory_bytes", cache.MemoryBytes, "must not be negative", "use 0 to disable the memory cache")
	}
	if cache.MemoryTTL < 0 {
		result.addError("cache.memory_ttl", cache.MemoryTTL, "must not be negative", "use 0 to disable expiry")
	}
}

func validateContentConfig(result *ValidationResult, content *ContentConfig) {
	if content.Dir == "" {
		if content.Watch {
			result.addError("content.watch", content.Watch, "watching requires content.dir")
		}
		return
	}

	info, err := os.Stat(content.Dir)
	switch {
	case err != nil:
		result.addError("content.dir", content.Dir, "directory not accessible: "+err.Error())
	case !info.IsDir():
		result.addError("content.dir", content.Dir, "not a directory")
	}
	validateStorePath(result, "content.mount", content.Mount)

	if content.Debounce < 0 {
		result.addError("content.debounce", content.Debounce, "must not be negative")
	} else if content.Watch && content.Debounce > 0 && content.Debounce < 10*time.Millisecond {
		result.addWarning("content.debounce", content.Debounce,
			"very short debounce triggers a refresh per file event", "use at least 50ms")
	}
}
