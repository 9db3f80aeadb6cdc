package models

import (
	"strings"
	"time"
)

// Category classifies an anonymous message.
type Category string

const (
	CategoryConstructive Category = "constructive"
	CategoryAppreciation Category = "appreciation"
	CategorySuggestion   Category = "suggestion"
	CategoryQuestion     Category = "question"
	CategoryGeneral      Category = "general"
)

// Categories lists every accepted message category.
var Categories = []Category{
	CategoryConstructive,
	CategoryAppreciation,
	CategorySuggestion,
	CategoryQuestion,
	CategoryGeneral,
}

// ParseCategory maps raw input to a Category. Empty input yields CategoryGeneral.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryGeneral, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Message is one anonymous note in an account's inbox.
type Message struct {
	ID        string
	AccountID string
	Content   string
	Category  Category
	IsRead    bool
	CreatedAt time.Time
}

// Matches reports whether the message belongs to category c. Uncategorized
// messages count as general.
func (m *Message) Matches(c Category) bool {
	if c == "" {
		return true
	}
	if m.Category == "" {
		return c == CategoryGeneral
	}
	return m.Category == c
}
