// Package exitcode provides the process exit codes used by noticegen
package exitcode

// Exit codes for the noticegen CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	LicenseMissing  = 3
	FileSystemError = 4
	NetworkError    = 5
	NoticeMismatch  = 10
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case LicenseMissing:
		return "License or homepage missing"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case NoticeMismatch:
		return "Notice mismatch"
	default:
		return "Unknown error"
	}
}
