package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophsession/internal/flagx"
)

var knownFlags = []string{"-b", "-t", "-g", "-s", "-d", "-r", "-rp", "-rt", "-m"}

// parseFlags overlays cfg with the flags it knows; the rest of args (the
// config path, subcommands) is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("gophsession", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "relay base url")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "backend transport: http or grpc")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC backend address")
	fs.StringVar(&cfg.TokenStore, "s", cfg.TokenStore, "token store: sqlite, redis or memory")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.RedisPassword, "rp", cfg.RedisPassword, "Redis password")
	fs.DurationVar(&cfg.RequestTimeout, "rt", cfg.RequestTimeout, "backend request timeout")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address, empty disables")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
