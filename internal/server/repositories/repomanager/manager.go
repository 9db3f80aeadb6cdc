package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ghostnote/internal/dbx"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/messages"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Messages(db dbx.DBTX) messages.Repository
}
