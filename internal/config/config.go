package config

// Config is the complete blockpulse configuration. It can be loaded from
// .blockpulse/config.yml with environment variable overrides.
type Config struct {
	Store Store `yaml:"store" mapstructure:"store"`
	Sink  Sink  `yaml:"sink" mapstructure:"sink"`
	Theme Theme `yaml:"theme" mapstructure:"theme"`
	Paths Paths `yaml:"paths" mapstructure:"paths"`
	Cache Cache `yaml:"cache" mapstructure:"cache"`
}

// Store locates the content database.
type Store struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file, or ":memory:"
}

// Sink configures where emitted events go.
type Sink struct {
	Type string `yaml:"type" mapstructure:"type"` // "jsonl", "stdout" or "sqlite"
	Path string `yaml:"path" mapstructure:"path"` // events file for the jsonl sink
}

// Theme mirrors the active presentation layer of the host site.
type Theme struct {
	Active string `yaml:"active" mapstructure:"active"` // theme slug used for template-part resolution
	// BlockTheme reports full-site-editing support; without it the trigger
	// gate rejects every save.
	BlockTheme bool `yaml:"block_theme" mapstructure:"block_theme"`
}

// Paths selects document export files for ingest and watch.
type Paths struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for document exports
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// Cache sizes the reference-resolution cache.
type Cache struct {
	Capacity   int `yaml:"capacity" mapstructure:"capacity"`
	TTLSeconds int `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// Sink types.
const (
	SinkJSONL  = "jsonl"
	SinkStdout = "stdout"
	SinkSQLite = "sqlite"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Store: Store{
			Path: ".blockpulse/content.db",
		},
		Sink: Sink{
			Type: SinkJSONL,
			Path: ".blockpulse/events.jsonl",
		},
		Theme: Theme{
			Active:     "storefront",
			BlockTheme: true,
		},
		Paths: Paths{
			Include: []string{"**.json"},
			Ignore:  []string{"**/.*"},
		},
		Cache: Cache{
			Capacity:   1024,
			TTLSeconds: 60,
		},
	}
}
