package errors

// ErrorCode identifies a kind of failure.
// Codes are strings so they read well in logs and serialize naturally to JSON.
type ErrorCode string

const (
	// Validation errors.

	// CodeInvalidInput indicates a missing or malformed identifier, ref or argument.
	// It is always detected before any process is started.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration value is unusable.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Process boundary errors.

	// CodeExecutableNotFound indicates the external tool could not be located by name.
	CodeExecutableNotFound ErrorCode = "EXECUTABLE_NOT_FOUND"

	// CodeTimeout indicates a process exceeded its configured time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// Step errors.

	// CodeCloneFailed indicates the initial mirror clone did not complete.
	CodeCloneFailed ErrorCode = "CLONE_FAILED"

	// CodeRefreshFailed indicates the in-place remote update of a mirror failed.
	CodeRefreshFailed ErrorCode = "REFRESH_FAILED"

	// CodeCheckoutFailed indicates materializing a ref into a working tree failed.
	CodeCheckoutFailed ErrorCode = "CHECKOUT_FAILED"

	// CodeSubmoduleFailed indicates recursive submodule initialization failed.
	CodeSubmoduleFailed ErrorCode = "SUBMODULE_FAILED"

	// CodeListRefsFailed indicates the reference table of a mirror could not be read.
	CodeListRefsFailed ErrorCode = "LIST_REFS_FAILED"

	// Local disk errors.

	// CodeFileSystem indicates a local directory operation failed.
	CodeFileSystem ErrorCode = "FILESYSTEM_ERROR"

	// CodeNotFound indicates a path or resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// System errors.

	// CodeUnavailable indicates the cache has been closed and accepts no more work.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// CodeInternal indicates a bug, such as a queued task that panicked.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification indicates whether retrying the failed operation may help.
type ErrorClassification string

const (
	// ClassificationRetryable marks temporary failures, for example a clone that
	// failed because the remote was unreachable.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that will recur on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether the classification allows a retry.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// retryableCodes lists the codes that default to ClassificationRetryable.
// Every other code is permanent.
var retryableCodes = map[ErrorCode]struct{}{
	CodeCloneFailed:   {},
	CodeRefreshFailed: {},
	CodeTimeout:       {},
	CodeUnavailable:   {},
}

func defaultClassification(code ErrorCode) ErrorClassification {
	if _, ok := retryableCodes[code]; ok {
		return ClassificationRetryable
	}
	return ClassificationPermanent
}
