package multiplex

const (
	// DefaultConcurrency is how many exchanges progress at the same time
	DefaultConcurrency = 16
)

type Config struct {
	// Concurrency is how many exchanges may be in flight at once
	Concurrency int `toml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	// MaxPending bounds the number of registered requests, 0 is unbounded. Add fails once reached
	MaxPending int `toml:"max_pending" json:"max_pending" mapstructure:"max_pending"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
	}
}

type ConfigOption func(*Config)

func Concurrency(n int) ConfigOption {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.Concurrency = n
	}
}

func MaxPending(n int) ConfigOption {
	return func(c *Config) {
		c.MaxPending = n
	}
}
