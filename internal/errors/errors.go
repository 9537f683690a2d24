// Package errors provides the error taxonomy for the application shell.
// It defines sentinel errors, typed errors for each failure class the
// lifecycle can hit, and classification helpers.
//
// # Error Types
//
// Failure classes, from most to least severe:
//   - InitError: the engine bring-up stage failed. Fatal; its Reason is shown
//     to the user before the process exits.
//   - DefectError: a contract violation such as advancing to an unknown
//     lifecycle state. Used as a panic payload, never returned.
//   - LaunchError: a staged task could not be started. Logged and local.
//   - SessionError: a call reached an engine session that was already
//     released.
//
// # Usage
//
//	err := errors.NewInitError(errors.InitCauseDeviceUnsupported, -2)
//	dialog.Show(err.Reason())
//
//	if errors.Is(err, errors.ErrSessionReleased) { ... }
//
//	var launchErr *errors.LaunchError
//	if errors.As(err, &launchErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors whose message is written for end users
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers only import this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	// SeverityCritical marks errors that end the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidState indicates a transition to a state the controller does not know.
	ErrInvalidState = New("invalid application state")
	// ErrEngineInit indicates that engine bring-up reported failure.
	ErrEngineInit = New("engine initialization failed")
	// ErrLaunchFailed indicates that a staged task could not be started.
	ErrLaunchFailed = New("task launch failed")
	// ErrRunnerClosed indicates that the task runner no longer accepts work.
	ErrRunnerClosed = New("task runner closed")
	// ErrSessionReleased indicates a call on an engine session after release.
	ErrSessionReleased = New("engine session released")
	// ErrTextureMissing indicates that a texture asset could not be read.
	ErrTextureMissing = New("texture missing")
	// ErrNotImage indicates that a texture asset is not an image.
	ErrNotImage = New("asset is not an image")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// ShellError is implemented by every typed error in this package.
type ShellError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// InitError
// -----------------------------------------------------------------------------

// InitCause distinguishes the reasons engine bring-up can fail.
type InitCause int

const (
	// InitCauseGeneric covers every failure without a more specific code.
	InitCauseGeneric InitCause = iota
	// InitCauseDeviceUnsupported means the device cannot run the AR engine.
	InitCauseDeviceUnsupported
	// InitCauseNoNetwork means the remote camera configuration could not be fetched.
	InitCauseNoNetwork
)

// String returns a short identifier for the cause.
func (c InitCause) String() string {
	switch c {
	case InitCauseDeviceUnsupported:
		return "device_unsupported"
	case InitCauseNoNetwork:
		return "no_network"
	default:
		return "generic"
	}
}

// InitError is the fatal-init error. Its Reason is meant for the fatal
// dialog; after the user acknowledges it the process terminates.
//
// Example:
//
//	err := errors.NewInitError(errors.InitCauseNoNetwork, -3)
//	fmt.Println(err) // "init error [cause=no_network, code=-3]: No network connection..."
type InitError struct {
	baseError
	Cause InitCause
	Code  int
}

// NewInitError creates an InitError for the given cause and raw progress code.
func NewInitError(cause InitCause, code int) *InitError {
	return &InitError{
		baseError: baseError{
			message:    initReason(cause),
			cause:      ErrEngineInit,
			severity:   SeverityCritical,
			userFacing: true,
		},
		Cause: cause,
		Code:  code,
	}
}

func initReason(cause InitCause) string {
	switch cause {
	case InitCauseDeviceUnsupported:
		return "The AR engine could not be initialized: this device is not supported."
	case InitCauseNoNetwork:
		return "No network connection. It is required to download the camera settings."
	default:
		return "The AR engine could not be initialized."
	}
}

// Reason returns the human-readable message shown in the fatal dialog.
func (e *InitError) Reason() string {
	return e.message
}

// Error returns the formatted error message.
func (e *InitError) Error() string {
	return fmt.Sprintf("init error [cause=%s, code=%d]: %s", e.Cause, e.Code, e.message)
}

// Is checks if this error matches the target.
func (e *InitError) Is(target error) bool {
	if _, ok := target.(*InitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// LaunchError
// -----------------------------------------------------------------------------

// LaunchError reports that a staged task could not be started.
type LaunchError struct {
	baseError
	Stage string
}

// NewLaunchError creates a LaunchError for the named stage. It is
// retryable unless the runner was closed.
func NewLaunchError(stage string, cause error) *LaunchError {
	if cause == nil {
		cause = ErrLaunchFailed
	}
	return &LaunchError{
		baseError: baseError{
			message:   "could not start staged task",
			cause:     cause,
			severity:  SeverityError,
			retryable: !errors.Is(cause, ErrRunnerClosed),
		},
		Stage: stage,
	}
}

// Error returns the formatted error message.
func (e *LaunchError) Error() string {
	prefix := "launch error"
	if e.Stage != "" {
		prefix = fmt.Sprintf("launch error [stage=%s]", e.Stage)
	}
	return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *LaunchError) Is(target error) bool {
	if _, ok := target.(*LaunchError); ok {
		return true
	}
	if target == ErrLaunchFailed {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// DefectError
// -----------------------------------------------------------------------------

// DefectError describes a programming defect. The lifecycle controller
// panics with it; callers are not expected to handle it.
type DefectError struct {
	baseError
	State string
}

// NewDefectError creates a DefectError for an unrecognized state.
func NewDefectError(state string) *DefectError {
	return &DefectError{
		baseError: baseError{
			message:  "unrecognized lifecycle target",
			cause:    ErrInvalidState,
			severity: SeverityCritical,
		},
		State: state,
	}
}

// Error returns the formatted error message.
func (e *DefectError) Error() string {
	return fmt.Sprintf("defect [state=%s]: %s: %v", e.State, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *DefectError) Is(target error) bool {
	if _, ok := target.(*DefectError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// SessionError
// -----------------------------------------------------------------------------

// SessionError represents a failed call on an engine session.
//
// Example:
//
//	err := errors.NewSessionError("start camera", errors.ErrSessionReleased).WithSessionID(id)
type SessionError struct {
	baseError
	SessionID string
	Operation string
}

// NewSessionError creates a SessionError for the given operation.
func NewSessionError(operation string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:  operation,
			cause:    cause,
			severity: SeverityWarning,
		},
		Operation: operation,
	}
}

// WithSessionID adds the engine session ID to the error context.
func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	var parts []string
	if e.SessionID != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.SessionID))
	}

	prefix := "session error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("session error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var shellErr ShellError
	if As(err, &shellErr) {
		return shellErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is written for end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    showDialog(err)
//	} else {
//	    logger.Error("internal error", "error", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var shellErr ShellError
	if As(err, &shellErr) {
		return shellErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ShellError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var shellErr ShellError
	if As(err, &shellErr) {
		return shellErr.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
