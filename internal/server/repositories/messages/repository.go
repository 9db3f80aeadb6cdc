// Package messages stores inbox entries. Each message is owned by exactly
// one account and is addressed by (account, message) pairs.
package messages

import (
	"context"

	"github.com/dmitrijs2005/ghostnote/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Message, error)
	Count(ctx context.Context, accountID string) (total int64, unread int64, err error)
	Delete(ctx context.Context, accountID, messageID string) error
	MarkRead(ctx context.Context, accountID, messageID string) error
}
