package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/tablestore/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-t int      timeout, seconds
//	-m int      maximum open connections
//	-l string   log level
//
// Other arguments, -c and -config included, are filtered out first.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-t", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	timeout := fs.Int("t", int(config.Timeout.Seconds()), "timeout (in seconds)")
	fs.IntVar(&config.MaxOpenConns, "m", config.MaxOpenConns, "maximum open connections")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Timeout = time.Duration(*timeout) * time.Second
}
