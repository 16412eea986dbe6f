package commands

import "github.com/doeshing/quest/internal/domain"

// History defaults
const (
	DefaultHistoryLimit       = domain.DefaultHistoryLimit
	DefaultHistorySearchLimit = domain.DefaultHistorySearchLimit
	DefaultHistoryRetainDays  = domain.DefaultHistoryRetainDays
)

// Error messages
const (
	ErrConfigLoaderUnavailable = "config loader unavailable"
	ErrHistoryStoreUnavailable = "history store unavailable (enable history in the config)"
	ErrQueryRequired           = "--query required"
	ErrInvalidRetainDays       = "--days must be > 0"
	ErrInvalidConfiguration    = "invalid configuration (see 'quest doctor' or 'quest config reset')"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
)
