package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ghostnote/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) && args[i] != "" {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// Register prompts for a username, email and password and creates an
// unverified account. The server emails a verification code.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	if err := a.backend.CheckUsernameUnique(ctx, username); err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Choose a password (at least 8 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.backend.SignUp(ctx, username, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	fmt.Fprintf(a.out, "Check your inbox, then run: verify %s <code>\n", username)
	return nil
}

// Verify confirms an account with the emailed code.
func (a *App) Verify(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}
	code, err := a.argOrPrompt(args, 1, "Enter verification code")
	if err != nil {
		return err
	}

	if err := a.backend.VerifyCode(ctx, username, code); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account verified. You can now login.")
	return nil
}

// Resend asks for a fresh verification code.
func (a *App) Resend(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}

	if err := a.backend.ResendCode(ctx, username); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "A new verification code was sent to your email.")
	return nil
}

// Login authenticates by email or username and saves the session.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.backend.SignIn(ctx, identifier, string(password))
	if err != nil {
		return err
	}

	a.setSession(s)
	fmt.Fprintf(a.out, "Signed in as %s\n", s.User.Username)
	return nil
}

// Logout discards the session locally. Tokens are stateless, so there is
// nothing to revoke on the server.
func (a *App) Logout(ctx context.Context) error {
	a.dropSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami refreshes the session so the printed flags are current.
func (a *App) Whoami(ctx context.Context) error {
	return a.authorized(func(token string) error {
		s, err := a.backend.Refresh(ctx, token)
		if err != nil {
			return err
		}
		a.setSession(s)

		u := s.User
		fmt.Fprintf(a.out, "Username:           %s\n", u.Username)
		fmt.Fprintf(a.out, "Accepting messages: %s\n", yesNo(u.IsAcceptingMessages))
		fmt.Fprintf(a.out, "Share link:         %s\n", a.shareLink(u.Username))
		fmt.Fprintf(a.out, "Session expires:    %s\n", s.ExpiresAt.Local().Format(timeLayout))
		return nil
	})
}
