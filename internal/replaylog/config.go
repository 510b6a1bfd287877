package replaylog

// Config controls session logging. The zero value is disabled; DefaultConfig
// fills in the conventional paths.
type Config struct {
	Enabled                 bool   `yaml:"enabled"`
	LogDirectory            string `yaml:"log_directory"`
	FilePrefix              string `yaml:"file_prefix"`
	FlushInterval           int    `yaml:"flush_interval"`
	IncludeComponentDetails bool   `yaml:"include_component_details"`
}

// DefaultConfig returns the settings the CLI ships with: logging off, but
// pointed at a sensible directory for when it is switched on.
func DefaultConfig() Config {
	return Config{
		Enabled:                 false,
		LogDirectory:            "ecsim_logs",
		FilePrefix:              "session",
		FlushInterval:           20,
		IncludeComponentDetails: true,
	}
}
