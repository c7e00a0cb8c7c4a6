// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Configuration errors
	ErrConfigMissingHostname = "CONFIG_MISSING_HOSTNAME"
	ErrConfigInvalid         = "CONFIG_INVALID"

	// Transport errors
	ErrTransportFailed = "TRANSPORT_FAILED"

	// Resolution errors (recoverable: nothing to do, not a crash)
	ErrPathNotFound = "PATH_NOT_FOUND"
	ErrNotAFolder   = "NOT_A_FOLDER"

	// Validation errors
	ErrUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrFileNotFound        = "FILE_NOT_FOUND"
	ErrOverwriteDeclined   = "OVERWRITE_DECLINED"

	// Device data errors
	ErrUnresolvableAncestry = "UNRESOLVABLE_ANCESTRY"
	ErrMalformedRecord      = "MALFORMED_RECORD"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
