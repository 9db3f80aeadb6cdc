// Package config loads runtime configuration for the GhostNote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the GhostNote server
//	-t int      request timeout (seconds)
//	-s string   session directory
//
// # JSON schema
//
//	{
//	  "server_url": "https://ghostnote.example",
//	  "request_timeout": "10s",
//	  "session_dir": ".ghostnote"
//	}
package config
