// Package accounts is the credential store: account identity, password
// hash, verification state and the accept-messages preference.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	UpdatePending(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	FindVerifiedByUsername(ctx context.Context, username string) (*models.Account, error)
	FindUnverifiedByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateCode(ctx context.Context, id, code string, expires time.Time) error
	SetAccepting(ctx context.Context, id string, enabled bool) error
	Stats(ctx context.Context) (*models.Stats, error)
}
