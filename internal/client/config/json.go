package config

import (
	"encoding/json"
	"os"

	"github.com/veristream/veristream-cli/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "zero" so a JSON file only overrides
// the keys it actually sets.
type JsonConfig struct {
	APIBaseURL        *string  `json:"api_base_url"`
	DatabaseFile      *string  `json:"database_file"`
	RequestsPerSecond *float64 `json:"requests_per_second"`
	ChunkSize         *int64   `json:"chunk_size"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags; when neither is given,
// no JSON is loaded. Read or unmarshal errors panic (caller may recover).
// Intended usage is: defaults -> parseJson -> parseFlags, where later
// stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.DatabaseFile != nil {
		cfg.DatabaseFile = *jc.DatabaseFile
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.ChunkSize != nil && *jc.ChunkSize > 0 {
		cfg.ChunkSize = *jc.ChunkSize
	}
}
