// Package notify delivers transactional email: verification codes are sent
// inline, new-message notices go through a bounded background queue.
package notify

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
)

// ErrNotConfigured is returned by mailers that cannot deliver anything.
var ErrNotConfigured = errors.New("email delivery is not configured")

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// NopMailer is used when SMTP is not configured. It logs and skips.
type NopMailer struct {
	logger logging.Logger
}

func NewNopMailer(logger logging.Logger) *NopMailer {
	return &NopMailer{logger: logger.With("module", "mailer")}
}

func (m *NopMailer) Send(ctx context.Context, e Email) error {
	m.logger.Warn(ctx, "email skipped: SMTP not configured", "to", e.To, "subject", e.Subject)
	return ErrNotConfigured
}
