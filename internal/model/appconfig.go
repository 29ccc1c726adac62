package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultCompanionTitle  string        `json:"default_companion_title"`
	DefaultTemplateName    string        `json:"default_template_name"`
	DefaultWidthParameter  string        `json:"default_width_parameter"`
	DefaultHeightParameter string        `json:"default_height_parameter"`
	DefaultFailurePolicy   FailurePolicy `json:"default_failure_policy"`
	DefaultScanWorkers     int           `json:"default_scan_workers"`

	// Application preferences
	LogLevel       string   `json:"log_level"`    // one of panic, fatal, error, warn, info, debug
	JournalPath    string   `json:"journal_path"` // SQLite batch journal, empty = disabled
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultCompanionTitle:  defaults.CompanionTitle,
		DefaultTemplateName:    defaults.TemplateName,
		DefaultWidthParameter:  defaults.WidthParameter,
		DefaultHeightParameter: defaults.HeightParameter,
		DefaultFailurePolicy:   defaults.FailurePolicy,
		DefaultScanWorkers:     defaults.ScanWorkers,
		LogLevel:               "info",
		RecentProjects:         []string{},
	}
}

// ApplyToSettings copies the non-empty defaults from AppConfig into s.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if c.DefaultCompanionTitle != "" {
		s.CompanionTitle = c.DefaultCompanionTitle
	}
	if c.DefaultTemplateName != "" {
		s.TemplateName = c.DefaultTemplateName
	}
	if c.DefaultWidthParameter != "" {
		s.WidthParameter = c.DefaultWidthParameter
	}
	if c.DefaultHeightParameter != "" {
		s.HeightParameter = c.DefaultHeightParameter
	}
	if c.DefaultFailurePolicy.Valid() {
		s.FailurePolicy = c.DefaultFailurePolicy
	}
	if c.DefaultScanWorkers > 0 {
		s.ScanWorkers = c.DefaultScanWorkers
	}
}
