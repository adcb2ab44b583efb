package store

import "fmt"

// Driver names accepted by Config.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds store initialization parameters.
type Config struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"` // file | sqlite | redis
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`     // file root or sqlite db path
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`       // redis connection url
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"` // redis keyspace prefix
}

// DefaultConfig returns the default store configuration: a file store
// under ./state.
func DefaultConfig() Config {
	return Config{
		Driver: DriverFile,
		Path:   "state",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFileStore(cfg.Path), nil
	case DriverSQLite:
		return NewSQLiteStore(cfg.Path)
	case DriverRedis:
		return NewRedisStore(cfg.URL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
