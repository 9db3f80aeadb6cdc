package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/dbx"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, email, password_hash, verify_code, verify_code_expires,
		 is_verified, is_accepting_messages, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.VerifyCode, &a.VerifyCodeExpires,
		&a.IsVerified, &a.IsAcceptingMessages, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func wrapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, email, password_hash, verify_code, verify_code_expires)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, is_verified, is_accepting_messages, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.Username, a.Email, a.PasswordHash, a.VerifyCode, a.VerifyCodeExpires).
		Scan(&a.ID, &a.IsVerified, &a.IsAcceptingMessages, &a.CreatedAt)

	if err != nil {
		return nil, wrapWriteError(err)
	}

	return a, nil
}

// UpdatePending overwrites handle, password and code of an unverified account.
func (r *PostgresRepository) UpdatePending(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts
		 SET username = $2, password_hash = $3, verify_code = $4, verify_code_expires = $5
		 WHERE id = $1 AND NOT is_verified
		 `

	res, err := r.db.ExecContext(ctx, query, a.ID, a.Username, a.PasswordHash, a.VerifyCode, a.VerifyCodeExpires)
	if err != nil {
		return wrapWriteError(err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindVerifiedByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE lower(username) = lower($1) AND is_verified
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, username))
}

// FindUnverifiedByUsername returns the most recent pending account holding the handle.
func (r *PostgresRepository) FindUnverifiedByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE lower(username) = lower($1) AND NOT is_verified
		 ORDER BY created_at DESC
		 LIMIT 1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE lower(email) = lower($1)
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// FindByIdentifier matches either email or handle, preferring verified accounts.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE lower(email) = lower($1) OR lower(username) = lower($1)
		 ORDER BY is_verified DESC, created_at DESC
		 LIMIT 1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, identifier))
}

// MarkVerified flips the verified flag. A concurrent verification of the same
// handle surfaces as common.ErrConflict.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE accounts SET is_verified = TRUE
		 WHERE id = $1 AND NOT is_verified
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrapWriteError(err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) UpdateCode(ctx context.Context, id, code string, expires time.Time) error {
	query :=
		`UPDATE accounts SET verify_code = $2, verify_code_expires = $3
		 WHERE id = $1 AND NOT is_verified
		 `

	res, err := r.db.ExecContext(ctx, query, id, code, expires)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) SetAccepting(ctx context.Context, id string, enabled bool) error {
	query :=
		`UPDATE accounts SET is_accepting_messages = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, enabled)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) Stats(ctx context.Context) (*models.Stats, error) {
	query :=
		`SELECT
		   COUNT(*),
		   COALESCE(SUM(m.cnt), 0),
		   COUNT(*) FILTER (WHERE m.cnt > 0),
		   COUNT(*) FILTER (WHERE a.is_accepting_messages)
		 FROM accounts a
		 LEFT JOIN (
		   SELECT account_id, COUNT(*) AS cnt FROM messages
		   WHERE content IS NOT NULL AND btrim(content) <> ''
		   GROUP BY account_id
		 ) m ON m.account_id = a.id
		 WHERE a.is_verified
		 `

	s := &models.Stats{}
	err := r.db.QueryRowContext(ctx, query).Scan(&s.TotalUsers, &s.TotalMessages, &s.UsersWithMessages, &s.AcceptingUsers)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
