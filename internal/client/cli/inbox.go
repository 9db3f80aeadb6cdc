package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghostnote/internal/client/api"
)

// Inbox lists messages. Arguments: an optional category ("all" for none)
// and the word "unread" to hide read messages.
func (a *App) Inbox(ctx context.Context, args []string) error {
	var f api.InboxFilter
	for _, arg := range args {
		switch arg = strings.ToLower(arg); {
		case arg == "unread":
			f.UnreadOnly = true
		case arg == "all":
		case f.Category == "":
			f.Category = arg
		default:
			return usageError("inbox [category|all] [unread]")
		}
	}
	return a.listInbox(ctx, f)
}

// Search lists messages whose content contains the given text.
func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if q == "" {
		return usageError("search <text>")
	}
	return a.listInbox(ctx, api.InboxFilter{Query: q})
}

func (a *App) listInbox(ctx context.Context, f api.InboxFilter) error {
	return a.authorized(func(token string) error {
		in, err := a.backend.Inbox(ctx, token, f)
		if err != nil {
			return err
		}
		printInbox(a.out, in)
		return nil
	})
}

// resolveMessage finds the message whose id equals ref or starts with it.
func (a *App) resolveMessage(ctx context.Context, token, ref string) (*api.Message, error) {
	in, err := a.backend.Inbox(ctx, token, api.InboxFilter{})
	if err != nil {
		return nil, err
	}

	var found *api.Message
	for i := range in.Messages {
		m := &in.Messages[i]
		if m.ID == ref {
			return m, nil
		}
		if strings.HasPrefix(m.ID, ref) {
			if found != nil {
				return nil, errAmbiguousID
			}
			found = m
		}
	}
	if found == nil {
		return nil, errMessageNotFound
	}
	return found, nil
}

// Read prints one message in full and marks it read.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("read <id>")
	}

	return a.authorized(func(token string) error {
		m, err := a.resolveMessage(ctx, token, args[0])
		if err != nil {
			return err
		}
		printMessage(a.out, m)

		if m.IsRead {
			return nil
		}
		return a.backend.MarkRead(ctx, token, m.ID)
	})
}

// Delete removes one message after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}

	return a.authorized(func(token string) error {
		m, err := a.resolveMessage(ctx, token, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s\n", preview(m.Content))
		answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete message %s? (y/N)", shortID(m.ID)), a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Fprintln(a.out, "Cancelled")
			return nil
		}

		if err := a.backend.Delete(ctx, token, m.ID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Message deleted")
		return nil
	})
}

// Accept shows the accept-messages flag, or sets it with "on" / "off".
func (a *App) Accept(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usageError("accept [on|off]")
	}

	return a.authorized(func(token string) error {
		if len(args) == 0 {
			on, err := a.backend.Accepting(ctx, token)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Accepting messages: %s\n", yesNo(on))
			return nil
		}

		var on bool
		switch strings.ToLower(args[0]) {
		case "on", "yes", "true":
			on = true
		case "off", "no", "false":
		default:
			return usageError("accept [on|off]")
		}

		if err := a.backend.SetAccepting(ctx, token, on); err != nil {
			return err
		}

		s := *a.session
		s.User.IsAcceptingMessages = on
		a.setSession(&s)

		fmt.Fprintf(a.out, "Accepting messages: %s\n", yesNo(on))
		return nil
	})
}
