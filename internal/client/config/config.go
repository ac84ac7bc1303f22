package config

// Config holds runtime settings for the VeriStream CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API, e.g. "http://localhost:8000/api".
//   - DatabaseFile: path of the local sqlite database (token, preferences).
//   - RequestsPerSecond: client-side request rate cap; 0 disables limiting.
//   - ChunkSize: upload chunk size in bytes.
type Config struct {
	APIBaseURL        string
	DatabaseFile      string
	RequestsPerSecond float64
	ChunkSize         int64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.DatabaseFile = "veristream.db"
	c.RequestsPerSecond = 0
	c.ChunkSize = 1 << 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
