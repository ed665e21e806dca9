package filter

// ConfigError reports an invalid filter configuration. It is raised before
// any conversation is processed.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}
