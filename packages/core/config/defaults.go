package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30000, // 30 seconds
		ValidateSSL: BoolPtr(true),
		LogFormat:   LogFormatConsole,
		Verbose:     BoolPtr(false),
		NoColor:     BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Host == defaults.Host &&
		c.Port == defaults.Port &&
		c.Timeout == defaults.Timeout &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		len(c.Headers) == 0 &&
		c.LogFormat == defaults.LogFormat &&
		c.History == defaults.History &&
		len(c.ExpectStatus) == 0 &&
		c.Schema == defaults.Schema &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
