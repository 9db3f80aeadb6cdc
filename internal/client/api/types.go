package api

import "time"

// Identity is the account snapshot carried by a session.
type Identity struct {
	AccountID           string `json:"accountId"`
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// Session is a signed-in session as returned by sign-in and refresh.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Message is one inbox entry.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Inbox is the owner's filtered message list plus totals over all messages.
type Inbox struct {
	Messages            []Message      `json:"messages"`
	Username            string         `json:"username"`
	IsAcceptingMessages bool           `json:"isAcceptingMessages"`
	TotalCount          int            `json:"totalCount"`
	UnreadCount         int            `json:"unreadCount"`
	CategoryCounts      map[string]int `json:"categoryCounts"`
}

// InboxFilter narrows the returned messages. Zero values mean no filter.
type InboxFilter struct {
	Category   string
	Query      string
	UnreadOnly bool
}

// SendResult confirms an accepted anonymous message.
type SendResult struct {
	Recipient    string    `json:"recipient"`
	MessageID    string    `json:"messageId"`
	MessageCount int64     `json:"messageCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserStatus is the public view of a recipient.
type UserStatus struct {
	Exists              bool   `json:"exists"`
	Username            string `json:"username"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// Suggestions are message ideas and where they came from.
type Suggestions struct {
	Items    []string `json:"suggestions"`
	Source   string   `json:"source"`
	Category string   `json:"category"`
	Error    string   `json:"error,omitempty"`
}

// Stats are the public platform counters.
type Stats struct {
	TotalUsers             int64   `json:"totalUsers"`
	TotalMessages          int64   `json:"totalMessages"`
	UsersWithMessages      int64   `json:"usersWithMessages"`
	AcceptingUsers         int64   `json:"acceptingUsers"`
	AverageMessagesPerUser float64 `json:"averageMessagesPerUser"`
	BaselineApplied        bool    `json:"baselineApplied"`
}

// envelope is the common {success, message} part of every response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
