package domain

// Config mirrors ~/.quest/config.yaml.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version" json:"config_format_version"`
	Preferences         Preferences      `yaml:"preferences" json:"preferences"`
	Provider            ProviderSettings `yaml:"provider" json:"provider"`
	History             HistorySettings  `yaml:"history" json:"history"`
}

// Preferences captures user level toggles.
type Preferences struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// ProviderSettings describes where completions are sent and how the request
// is authenticated. The model and temperature are fixed and not configurable.
type ProviderSettings struct {
	Endpoint       string `yaml:"endpoint" json:"endpoint"`
	AuthEnvVar     string `yaml:"auth_env_var" json:"auth_env_var"`
	OrgEnvVar      string `yaml:"org_env_var,omitempty" json:"org_env_var,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// HistorySettings controls the local record of completion calls.
type HistorySettings struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	Path          string `yaml:"path" json:"path"`
	RetentionDays int    `yaml:"retention_days" json:"retention_days"`
}
