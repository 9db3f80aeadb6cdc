package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the GhostNote server
//	-t int      request timeout in seconds
//	-s string   session directory
//
// Only the flags above are parsed; flagx.FilterArgs drops the rest.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the GhostNote server")
	fs.StringVar(&cfg.SessionDir, "s", cfg.SessionDir, "directory for the saved session")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
