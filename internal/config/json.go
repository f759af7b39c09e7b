package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tablestore/internal/flagx"
	"github.com/dmitrijs2005/tablestore/internal/timex"
)

// JsonConfig is the shape of the JSON config file. Timeout accepts "30s" as
// well as integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN  string         `json:"database_dsn"`
	Timeout      timex.Duration `json:"timeout"`
	MaxOpenConns int            `json:"max_open_conns"`
	LogLevel     string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c or -config in args.
// Keys missing from the file keep their current value.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		DatabaseDSN:  config.DatabaseDSN,
		Timeout:      timex.Duration{Duration: config.Timeout},
		MaxOpenConns: config.MaxOpenConns,
		LogLevel:     config.LogLevel,
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.Timeout = c.Timeout.Duration
	config.MaxOpenConns = c.MaxOpenConns
	config.LogLevel = c.LogLevel
}
