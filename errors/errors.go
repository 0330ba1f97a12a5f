package errors

import (
	stderrors "errors"
	"fmt"
)

// PlatformError extends error with a code, a classification and context metadata.
type PlatformError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil if there is none.
	Context() map[string]interface{}

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats the error as "[CODE] message" or "[CODE] message: cause".
func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode                     { return e.code }
func (e *platformError) Classification() ErrorClassification { return e.classification }
func (e *platformError) Message() string                     { return e.message }
func (e *platformError) Unwrap() error                       { return e.cause }

func (e *platformError) Context() map[string]interface{} {
	return copyContext(e.context)
}

// New creates a PlatformError with the default classification for code.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "missing or invalid git repo URI")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
	}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. The cause stays reachable through
// errors.Is and errors.As. Returns nil if err is nil.
//
// The classification always follows code: wrapping a retryable clone failure as
// a permanent checkout failure makes the result permanent.
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}
	return &platformError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches a copy of ctx in one step.
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeCloneFailed, "failed to clone mirror",
//	    map[string]interface{}{"identifier": url, "dir": parent})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return &platformError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
		context:        copyContext(ctx),
		cause:          err,
	}
}

// asPlatformError returns err as a PlatformError, converting plain errors to
// CodeUnknown so context can be attached to anything.
func asPlatformError(err error) PlatformError {
	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr
	}
	return &platformError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}

func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
