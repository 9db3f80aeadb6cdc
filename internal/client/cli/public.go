package cli

import (
	"context"
	"fmt"
)

// Send posts an anonymous message. Arguments: recipient and category,
// both optional; the content is read as multi-line text.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return usageError("send [user] [category]")
	}

	recipient, err := a.argOrPrompt(args, 0, "Recipient username")
	if err != nil {
		return err
	}
	var category string
	if len(args) == 2 {
		category = args[1]
	}

	content, err := getMultiline(a.reader, "Enter your message", a.out)
	if err != nil {
		return err
	}

	res, err := a.backend.Send(ctx, recipient, content, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Message sent to %s (%d in their inbox)\n", res.Recipient, res.MessageCount)
	return nil
}

// Suggest prints message ideas for an optional category.
func (a *App) Suggest(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usageError("suggest [category]")
	}
	var category, username string
	if len(args) == 1 {
		category = args[0]
	}
	if a.session != nil {
		username = a.session.User.Username
	}

	s, err := a.backend.Suggest(ctx, username, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Suggestions (%s, source: %s)\n", s.Category, s.Source)
	for i, item := range s.Items {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, item)
	}
	if s.Error != "" {
		fmt.Fprintf(a.out, "note: %s\n", s.Error)
	}
	return nil
}

// Status reports whether a user exists and accepts messages.
func (a *App) Status(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("status <user>")
	}

	st, err := a.backend.UserStatus(ctx, args[0])
	if err != nil {
		return err
	}

	switch {
	case !st.Exists:
		fmt.Fprintf(a.out, "User %s not found\n", args[0])
	case st.IsAcceptingMessages:
		fmt.Fprintf(a.out, "%s is accepting messages: %s\n", st.Username, a.shareLink(st.Username))
	default:
		fmt.Fprintf(a.out, "%s is not accepting messages\n", st.Username)
	}
	return nil
}

// Stats prints the public platform counters.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.backend.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Users:                 %d\n", st.TotalUsers)
	fmt.Fprintf(a.out, "Messages:              %d\n", st.TotalMessages)
	fmt.Fprintf(a.out, "Users with messages:   %d\n", st.UsersWithMessages)
	fmt.Fprintf(a.out, "Accepting messages:    %d\n", st.AcceptingUsers)
	fmt.Fprintf(a.out, "Avg messages per user: %.1f\n", st.AverageMessagesPerUser)
	return nil
}
