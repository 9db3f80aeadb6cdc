// Package cli provides the interactive GhostNote command-line client.
//
// It wires configuration, the HTTP API client, a saved session, and a REPL.
// Anonymous commands (send, suggest, status, stats) work without an account;
// inbox commands require a prior login. The session token is kept on disk
// so a later run resumes it until it expires or the user logs out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
