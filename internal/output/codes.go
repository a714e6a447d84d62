// Package output provides structured error handling and result formatting
// for the CLI.
package output

// Exit codes, one per error class, stable for scripting.
const (
	ExitOK           = 0  // Success
	ExitUsage        = 1  // Invalid arguments or flags
	ExitNotFound     = 2  // Resource not found
	ExitAuth         = 3  // Not authenticated / session expired
	ExitForbidden    = 4  // Access denied
	ExitRateLimit    = 5  // Rate limited (429)
	ExitNetwork      = 6  // Connection/DNS/timeout error
	ExitServer       = 7  // Server returned an error
	ExitConflict     = 8  // Resource conflict (409)
	ExitValidation   = 9  // Request rejected as invalid (422)
	ExitCancelled    = 10 // Request suppressed (logout in progress)
	ExitRoleMismatch = 11 // Logged in with the wrong account type
)

// Error codes for the JSON envelope.
const (
	CodeUsage        = "usage"
	CodeNotFound     = "not_found"
	CodeAuth         = "auth_required"
	CodeForbidden    = "forbidden"
	CodeConflict     = "conflict"
	CodeValidation   = "validation_failed"
	CodeRateLimit    = "rate_limit"
	CodeServer       = "server_error"
	CodeNetwork      = "network"
	CodeCancelled    = "cancelled"
	CodeRoleMismatch = "role_mismatch"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth:
		return ExitAuth
	case CodeForbidden:
		return ExitForbidden
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeConflict:
		return ExitConflict
	case CodeValidation:
		return ExitValidation
	case CodeCancelled:
		return ExitCancelled
	case CodeRoleMismatch:
		return ExitRoleMismatch
	case CodeServer:
		return ExitServer
	default:
		return ExitServer
	}
}
