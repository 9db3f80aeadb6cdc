package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session HMAC secret key
//	-t int      session validity, hours
//	-v int      verification code validity, minutes
//	-m int      maximum message length
//	-u string   public base URL used in email links
//	-e string   environment ("production", "development")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration
//     only when present on the command line.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-v", "-m", "-u", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Hours()), "session validity (in hours)")
	verifyCodeTTL := fs.Int("v", int(config.VerifyCodeTTL.Minutes()), "verification code validity (in minutes)")

	fs.IntVar(&config.MaxMessageLength, "m", config.MaxMessageLength, "maximum message length")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only explicitly passed durations override, so finer values from JSON
	// or the environment survive the integer conversion.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Hour
		case "v":
			config.VerifyCodeTTL = time.Duration(*verifyCodeTTL) * time.Minute
		}
	})
}
