package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns:
//
//	-a string   REST API base URL
//	-w string   websocket base URL
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-i int      online check interval (seconds)
//	-l string   log level
//
// Other arguments are filtered out with flagx.FilterArgs. Parse errors panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "REST API base URL")
	fs.StringVar(&cfg.WSURL, "w", cfg.WSURL, "websocket base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
