// Package errors provides the structured error taxonomy shared by the
// resolvers, caches and builders.
//
// Every failure carries the resource path it concerns so that callers can
// log it and move to the next fallback step. Errors compare with errors.Is
// by type and code, which lets orchestration layers catch narrow failures
// such as a missing view without matching on messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInvalidType    ErrorType = "invalid_type"
	ErrorTypeCacheRetrieval ErrorType = "cache_retrieval"
	ErrorTypeCacheBuild     ErrorType = "cache_build"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeComponentTypeNotFound = "ERR_COMPONENT_TYPE_NOT_FOUND"
	ErrCodeInvalidComponentType  = "ERR_INVALID_COMPONENT_TYPE"
	ErrCodeInvalidView           = "ERR_INVALID_VIEW"
	ErrCodeInvalidFrameworkView  = "ERR_INVALID_COMPONENT_UI_FRAMEWORK_VIEW"
	ErrCodeSelfSupertype         = "ERR_SELF_SUPERTYPE"
	ErrCodeInvalidResourceType   = "ERR_INVALID_RESOURCE_TYPE"
	ErrCodeInvalidScript         = "ERR_INVALID_SCRIPT"
	ErrCodeFrameworkNotFound     = "ERR_FRAMEWORK_NOT_FOUND"
	ErrCodeThemeNotFound         = "ERR_THEME_NOT_FOUND"
	ErrCodeVendorNotFound        = "ERR_VENDOR_LIBRARY_NOT_FOUND"
	ErrCodeResourceNotFound      = "ERR_RESOURCE_NOT_FOUND"
	ErrCodeComponentNotAllowed   = "ERR_COMPONENT_NOT_ALLOWED"
	ErrCodeCacheRetrieval        = "ERR_CACHE_RETRIEVAL"
	ErrCodeCacheBuild            = "ERR_CACHE_BUILD"
	ErrCodeConfigInvalid         = "ERR_CONFIG_INVALID"
	ErrCodeStore                 = "ERR_STORE"
	ErrCodeInternalError         = "ERR_INTERNAL"
)

// ThematicError is a structured error type with context.
type ThematicError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *ThematicError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, "path:"+e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ThematicError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ThematicError) Is(target error) bool {
	var t *ThematicError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ThematicError) WithContext(key string, value interface{}) *ThematicError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the resource path the error concerns.
func (e *ThematicError) WithPath(path string) *ThematicError {
	e.Path = path

	return e
}

// WithCause attaches an underlying error.
func (e *ThematicError) WithCause(cause error) *ThematicError {
	e.Cause = cause

	return e
}

// Error creation functions

// NewNotFoundError creates an error for an absent type, view, theme or framework.
// These are expected and usually recovered by the next fallback step.
func NewNotFoundError(code, message string) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeNotFound,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewInvalidTypeError creates an error for a node whose type tag does not match.
func NewInvalidTypeError(code, message string) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeInvalidType,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewCacheRetrievalError creates a cache miss error.
func NewCacheRetrievalError(message string) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeCacheRetrieval,
		Code:        ErrCodeCacheRetrieval,
		Message:     message,
		Recoverable: true,
	}
}

// NewCacheBuildError creates an error for a rebuild that could not complete.
func NewCacheBuildError(message string, cause error) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeCacheBuild,
		Code:        ErrCodeCacheBuild,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ThematicError {
	return &ThematicError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Sentinels for errors.Is matching. Only Type and Code take part in the
// comparison, so a sentinel matches every error built by the helpers below.
var (
	ErrComponentTypeNotFoundSentinel = NewNotFoundError(ErrCodeComponentTypeNotFound, "component type not found")
	ErrInvalidViewSentinel           = NewNotFoundError(ErrCodeInvalidView, "invalid view")
	ErrInvalidFrameworkViewSentinel  = NewNotFoundError(ErrCodeInvalidFrameworkView, "invalid component ui framework view")
	ErrSelfSupertypeSentinel         = NewValidationError(ErrCodeSelfSupertype, "component type supertypes itself")
	ErrInvalidResourceTypeSentinel   = NewInvalidTypeError(ErrCodeInvalidResourceType, "invalid resource type")
	ErrInvalidScriptSentinel         = NewNotFoundError(ErrCodeInvalidScript, "invalid script")
	ErrFrameworkNotFoundSentinel     = NewNotFoundError(ErrCodeFrameworkNotFound, "ui framework not found")
	ErrThemeNotFoundSentinel         = NewNotFoundError(ErrCodeThemeNotFound, "theme not found")
	ErrCacheRetrievalSentinel        = NewCacheRetrievalError("cache entry not found")
	ErrComponentNotAllowedSentinel   = NewValidationError(ErrCodeComponentNotAllowed, "component not allowed in container")
	ErrCacheBuildSentinel            = NewCacheBuildError("cache build failed", nil)
)

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var te *ThematicError
	if errors.As(err, &te) {
		return te.Recoverable
	}

	return false
}

// IsNotFound checks if an error reports an absent resource.
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsInvalidType checks if an error reports a type tag mismatch.
func IsInvalidType(err error) bool {
	return hasType(err, ErrorTypeInvalidType)
}

// IsCacheRetrieval checks if an error reports a cache miss.
func IsCacheRetrieval(err error) bool {
	return hasType(err, ErrorTypeCacheRetrieval)
}

func hasType(err error, t ErrorType) bool {
	var te *ThematicError
	if errors.As(err, &te) {
		return te.Type == t
	}

	return false
}

// Helper functions for common errors

// ErrComponentTypeNotFound reports that no candidate path adapted to a component type.
func ErrComponentTypeNotFound(name string) *ThematicError {
	return NewNotFoundError(ErrCodeComponentTypeNotFound, "component type not found: "+name).
		WithPath(name)
}

// ErrInvalidComponentType reports a component instance without a usable type.
func ErrInvalidComponentType(path string, cause error) *ThematicError {
	return NewInvalidTypeError(ErrCodeInvalidComponentType, "invalid component type").
		WithPath(path).
		WithCause(cause)
}

// ErrInvalidView reports that no view of componentType matched framework.
func ErrInvalidView(componentType, framework string) *ThematicError {
	return NewNotFoundError(
		ErrCodeInvalidView,
		fmt.Sprintf("no view of %s for ui framework %s", componentType, framework),
	).WithPath(componentType).WithContext("framework", framework)
}

// ErrInvalidComponentUiFrameworkView reports that neither a framework view,
// a common view nor a supertype view exists for componentType.
func ErrInvalidComponentUiFrameworkView(componentType, framework string) *ThematicError {
	return NewNotFoundError(
		ErrCodeInvalidFrameworkView,
		fmt.Sprintf("no framework view, common view or supertype view of %s for ui framework %s", componentType, framework),
	).WithPath(componentType).WithContext("framework", framework)
}

// ErrSelfSupertype reports a component type naming itself as its supertype.
func ErrSelfSupertype(path string) *ThematicError {
	return NewValidationError(ErrCodeSelfSupertype, "component type supertypes itself").WithPath(path)
}

// ErrInvalidResourceType reports a node that exists but has the wrong shape.
func ErrInvalidResourceType(path, expected string) *ThematicError {
	return NewInvalidTypeError(
		ErrCodeInvalidResourceType,
		"resource is not a "+expected,
	).WithPath(path).WithContext("expected", expected)
}

// ErrInvalidScript reports a script that could not be found for a component type.
func ErrInvalidScript(script, componentType, framework string) *ThematicError {
	return NewNotFoundError(
		ErrCodeInvalidScript,
		fmt.Sprintf("script %s not found for %s on %s", script, componentType, framework),
	).WithPath(componentType).WithContext("script", script).WithContext("framework", framework)
}

// ErrFrameworkNotFound reports a missing ui framework.
func ErrFrameworkNotFound(ref string) *ThematicError {
	return NewNotFoundError(ErrCodeFrameworkNotFound, "ui framework not found: "+ref).WithPath(ref)
}

// ErrThemeNotFound reports a missing theme.
func ErrThemeNotFound(framework, theme string) *ThematicError {
	return NewNotFoundError(ErrCodeThemeNotFound, "theme not found: "+theme).
		WithPath(framework).
		WithContext("theme", theme)
}

// ErrVendorLibraryNotFound reports a dangling vendor library reference.
func ErrVendorLibraryNotFound(ref string) *ThematicError {
	return NewNotFoundError(ErrCodeVendorNotFound, "vendor library not found: "+ref).WithPath(ref)
}

// ErrResourceNotFound reports a path with no node in the store.
func ErrResourceNotFound(path string) *ThematicError {
	return NewNotFoundError(ErrCodeResourceNotFound, "no resource at "+path).WithPath(path)
}

// ErrComponentNotAllowed reports a component instance placed inside a
// container whose type does not allow it.
func ErrComponentNotAllowed(instance, componentType, container string) *ThematicError {
	return NewValidationError(
		ErrCodeComponentNotAllowed,
		fmt.Sprintf("%s is not allowed inside %s", componentType, container),
	).WithPath(instance).WithContext("componentType", componentType).WithContext("container", container)
}

// ErrCacheRetrieval reports a missing compiled-output cache file.
func ErrCacheRetrieval(path string) *ThematicError {
	return NewCacheRetrievalError("no cached output at " + path).WithPath(path)
}
