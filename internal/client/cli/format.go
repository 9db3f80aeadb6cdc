package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/ghostnote/internal/client/api"
)

const (
	timeLayout   = "2006-01-02 15:04"
	shortIDLen   = 8
	previewRunes = 60
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// preview flattens content to one line of at most previewRunes runes.
func preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	r := []rune(s)
	return string(r[:previewRunes-3]) + "..."
}

func printInbox(w io.Writer, in *api.Inbox) {
	fmt.Fprintf(w, "Inbox of %s: %d messages, %d unread (accepting messages: %s)\n",
		in.Username, in.TotalCount, in.UnreadCount, yesNo(in.IsAcceptingMessages))

	if len(in.CategoryCounts) > 0 {
		cats := make([]string, 0, len(in.CategoryCounts))
		for c := range in.CategoryCounts {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		parts := make([]string, 0, len(cats))
		for _, c := range cats {
			parts = append(parts, fmt.Sprintf("%s %d", c, in.CategoryCounts[c]))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, " | "))
	}

	if len(in.Messages) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}

	for _, m := range in.Messages {
		mark := " "
		if !m.IsRead {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-8s  %s  %-12s  %s\n",
			mark, shortID(m.ID), m.CreatedAt.Local().Format(timeLayout), m.Category, preview(m.Content))
	}
}

func printMessage(w io.Writer, m *api.Message) {
	fmt.Fprintf(w, "Id:       %s\n", m.ID)
	fmt.Fprintf(w, "Received: %s\n", m.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Category: %s\n", m.Category)
	fmt.Fprintln(w)
	fmt.Fprintln(w, m.Content)
}
