package config

import (
	"errors"
	"io/fs"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// dotEnvFiles are loaded before decoding. Variables already present in the
// process environment win.
var dotEnvFiles = []string{".env"}

// parseEnv overlays Config fields tagged with `env` from the environment.
// Unset variables leave the current value untouched. Malformed numeric or
// duration values panic, as invalid JSON does.
func parseEnv(config *Config) {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		panic(err)
	}
}
