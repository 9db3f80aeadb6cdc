package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"
)

const previewLimit = 100

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif;">
  <h2>Hello {{.Username}},</h2>
  <p>Thank you for registering. Please use the following verification code to complete your registration:</p>
  <p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
  <p>The code expires in {{.TTL}}.</p>
  <p>If you did not request this code, please ignore this email.</p>
</body>
</html>`))

var newMessageTmpl = template.Must(template.New("new-message").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif;">
  <h2>Hi {{.Username}}, you have a new anonymous message</h2>
  <p><em>Category: {{.Category}}</em></p>
  <blockquote style="border-left: 4px solid #ccc; padding-left: 12px;">{{.Preview}}</blockquote>
  {{if .Unread}}<p>You have {{.Unread}} unread message{{if ne .Unread 1}}s{{end}}.</p>{{end}}
  <p><a href="{{.DashboardURL}}">Open your dashboard</a></p>
</body>
</html>`))

// VerificationEmail renders the sign-up verification code email.
func VerificationEmail(to, username, code string, ttl time.Duration) (Email, error) {
	data := struct {
		Username string
		Code     string
		TTL      string
	}{username, code, humanDuration(ttl)}

	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return Email{}, err
	}

	return Email{
		To:      to,
		Subject: "GhostNote | Verification Code",
		HTML:    buf.String(),
		Text: fmt.Sprintf("Hello %s,\n\nYour verification code is %s. It expires in %s.\n\nIf you did not request this code, please ignore this email.\n",
			username, code, data.TTL),
	}, nil
}

// NewMessage describes a freshly received anonymous message.
type NewMessage struct {
	To           string
	Username     string
	Content      string
	Category     string
	// Unread is the recipient's unread count; zero leaves the line out.
	Unread       int64
	DashboardURL string
}

// NewMessageEmail renders the "you have a new message" notice.
func NewMessageEmail(n NewMessage) (Email, error) {
	data := struct {
		Username     string
		Category     string
		Preview      string
		Unread       int64
		DashboardURL string
	}{n.Username, n.Category, Preview(n.Content), n.Unread, n.DashboardURL}

	var buf bytes.Buffer
	if err := newMessageTmpl.Execute(&buf, data); err != nil {
		return Email{}, err
	}

	return Email{
		To:      n.To,
		Subject: "You received a new anonymous message",
		HTML:    buf.String(),
		Text: fmt.Sprintf("Hi %s,\n\n\"%s\"\n\n%sOpen your dashboard: %s\n",
			n.Username, data.Preview, unreadLine(n.Unread), n.DashboardURL),
	}, nil
}

// unreadLine is empty when the count is unknown (zero).
func unreadLine(n int64) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "You have 1 unread message.\n"
	}
	return fmt.Sprintf("You have %d unread messages.\n", n)
}

// Preview truncates content to 100 characters followed by "...".
func Preview(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= previewLimit {
		return content
	}
	r := []rune(content)
	return string(r[:previewLimit]) + "..."
}

func humanDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	case d%time.Minute == 0 && d >= time.Minute:
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	default:
		return d.String()
	}
}
