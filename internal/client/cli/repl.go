package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printFn and printlnFn are test seams for user-facing output.
var (
	printFn   = fmt.Print
	printlnFn = fmt.Println
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Inbox(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Suggest(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const (
	helpPublic = "Available commands: register, verify [user] [code], resend [user], login, " +
		"send [user] [category], suggest [category], status <user>, stats, exit"
	helpPrivate = "Available commands: whoami, inbox [category|all] [unread], search <text>, read <id>, " +
		"delete <id>, accept [on|off], send [user] [category], suggest [category], status <user>, stats, logout, exit"
)

// requiresLogin lists commands that act on the signed-in account.
var requiresLogin = map[string]bool{
	"logout": true,
	"whoami": true,
	"inbox":  true,
	"l":      true,
	"list":   true,
	"search": true,
	"read":   true,
	"delete": true,
	"accept": true,
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The prompt shows statusFn's output. The loop ends on EOF, "exit" or "quit".
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("ghostnote%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if requiresLogin[cmd] && !a.isLoggedIn() {
			printlnFn(errorText(errNotLoggedIn))
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpPrivate)
			} else {
				printlnFn(helpPublic)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "verify":
			cmdErr = a.Verify(ctx, args)
		case "resend":
			cmdErr = a.Resend(ctx, args)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "inbox", "l", "list":
			cmdErr = a.Inbox(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "read":
			cmdErr = a.Read(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "accept":
			cmdErr = a.Accept(ctx, args)

		case "send":
			cmdErr = a.Send(ctx, args)
		case "suggest":
			cmdErr = a.Suggest(ctx, args)
		case "status":
			cmdErr = a.Status(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(errorText(cmdErr))
		}
	}
}

func (a *App) getStatus() string {
	if a.session == nil || a.session.User.Username == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", a.session.User.Username)
}

// Root prints the greeting and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to GhostNote CLI (type 'help' for commands)")
	if a.isLoggedIn() {
		printlnFn("Resumed session for", a.session.User.Username)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
