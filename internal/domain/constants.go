package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultTimeoutSeconds mirrors DefaultHTTPClientTimeout for the config file
	DefaultTimeoutSeconds = 60
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain history
	DefaultHistoryRetainDays = 30
)

// Environment variables
const (
	EnvConfigPath  = "QUEST_CONFIG"
	EnvDebug       = "QUEST_DEBUG"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvOpenAIOrgID = "OPENAI_ORG_ID"
)
