// Package models holds server-side domain records.
package models

import "time"

// Account is a registered (or pending) GhostNote user.
type Account struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	VerifyCode          string
	VerifyCodeExpires   time.Time
	IsVerified          bool
	IsAcceptingMessages bool
	CreatedAt           time.Time
}

// CodeExpired reports whether the pending verification code is past its expiry at now.
func (a *Account) CodeExpired(now time.Time) bool {
	return now.After(a.VerifyCodeExpires)
}
