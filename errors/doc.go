// Package errors provides the structured failure taxonomy used by the mirror cache.
//
// Every failure surfaced by the cache is a PlatformError: an ErrorCode naming the
// kind of failure, a classification (retryable or permanent), a human-readable
// message, optional context metadata and the wrapped cause. The package stays
// compatible with the standard library (errors.Is, errors.As, errors.Unwrap).
//
// # Codes
//
//   - Validation: CodeInvalidInput, CodeInvalidConfig
//   - Process boundary: CodeExecutableNotFound, CodeTimeout
//   - Mirror and checkout steps: CodeCloneFailed, CodeRefreshFailed,
//     CodeCheckoutFailed, CodeSubmoduleFailed, CodeListRefsFailed
//   - Local disk: CodeFileSystem, CodeNotFound
//   - System: CodeUnavailable, CodeInternal, CodeUnknown
//
// # Usage
//
//	result, err := git.WithDir(mirrorPath).Run("remote", "update", "--prune")
//	if err != nil {
//	    return errors.WrapWithContext(err, errors.CodeRefreshFailed, "failed to refresh mirror",
//	        map[string]interface{}{"dir": mirrorPath})
//	}
//
//	if errors.HasCode(err, errors.CodeInvalidInput) {
//	    // caller bug, do not retry
//	}
//
// Clone and refresh failures are classified retryable because they usually stem
// from the network. Nothing in the cache retries on its own; the classification
// only informs callers.
//
// ToJSON renders any error as a flat ErrorResponse, omitting the cause chain.
package errors
