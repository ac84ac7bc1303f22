package config

import (
	"flag"
	"os"

	"github.com/veristream/veristream-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the REST API (default from Config)
//	-d string   path of the local database file (default from Config)
//	-r float    request rate cap in requests/second, 0 = unlimited
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the REST API")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "path of the local database file")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "request rate cap (requests/second, 0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
