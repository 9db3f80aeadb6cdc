package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/ghostnote/internal/netx"
)

var (
	errNotLoggedIn     = errors.New("please login first")
	errSessionExpired  = errors.New("session expired, please login again")
	errMessageNotFound = errors.New("no message with this id")
	errAmbiguousID     = errors.New("id prefix matches several messages")
)

// usageError carries the expected syntax of a command.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// errorText renders err for the terminal, including per-field validation
// messages returned by the server.
func errorText(err error) string {
	var se *netx.StatusError
	if !errors.As(err, &se) || len(se.Fields) == 0 {
		return "Error: " + err.Error()
	}

	keys := make([]string, 0, len(se.Fields))
	for k := range se.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Error: invalid input")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, se.Fields[k])
	}
	return b.String()
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}
