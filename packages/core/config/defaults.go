package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Reporters:    []string{"console"},
		Parallel:     BoolPtr(false),
		Concurrency:  5,
		Bail:         BoolPtr(false),
		Verbose:      BoolPtr(false),
		NoColor:      BoolPtr(false),
		QueryTimeout: 30000, // 30 seconds
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.Reporters) == 1 && c.Reporters[0] == defaults.Reporters[0] &&
		c.OutputDir == defaults.OutputDir &&
		c.GetParallel() == defaults.GetParallel() &&
		c.Concurrency == defaults.Concurrency &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.DB == defaults.DB &&
		c.QueryTimeout == defaults.QueryTimeout &&
		c.EnvFile == defaults.EnvFile &&
		len(c.Variables) == 0
}
