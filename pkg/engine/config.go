package engine

// Config holds configuration for the correction loop controller.
type Config struct {
	// MaxAttempts is the attempt ceiling per task. Zero or negative
	// means use the default of 3.
	MaxAttempts int
}

// maxAttempts returns the effective ceiling, defaulting to 3.
func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}
