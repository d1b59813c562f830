package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Structural errors abort a run
	ErrMalformedDate  = fmt.Errorf("malformed date")
	ErrMalformedTable = fmt.Errorf("malformed table")

	// Run control
	ErrInterrupted    = fmt.Errorf("run interrupted")
	ErrUnknownRunMode = fmt.Errorf("unknown run mode")
	ErrAuditFailed    = fmt.Errorf("catalog audit failed")

	// Per-item resolution failures, recorded in the missing-items ledger
	ErrDefaultConfig = fmt.Errorf("dataset only exposes the default config")
	ErrConfigPattern = fmt.Errorf("config name is not a language pair")
	ErrNoConfigs     = fmt.Errorf("dataset has no configs")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDatasetNotFound    = fmt.Errorf("dataset not found")

	// Journal errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
