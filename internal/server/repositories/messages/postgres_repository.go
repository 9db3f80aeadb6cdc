package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/dbx"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (account_id, content, category, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, m.AccountID, m.Content, string(m.Category), m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

// ListByAccount returns raw inbox rows newest first. Legacy rows with NULL
// content come back with an empty Content.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Message, error) {
	query :=
		`SELECT id, account_id, content, category, is_read, created_at FROM messages
		 WHERE account_id = $1
		 ORDER BY created_at DESC, seq DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		var (
			m        models.Message
			content  sql.NullString
			category sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.AccountID, &content, &category, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Content = content.String
		m.Category = models.Category(category.String)
		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, accountID string) (int64, int64, error) {
	query :=
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM messages
		 WHERE account_id = $1 AND content IS NOT NULL AND btrim(content) <> ''
		 `

	var total, unread int64
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, unread, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID, messageID string) error {
	query :=
		`DELETE FROM messages
		 WHERE id = $1 AND account_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, messageID, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) MarkRead(ctx context.Context, accountID, messageID string) error {
	query :=
		`UPDATE messages SET is_read = TRUE
		 WHERE id = $1 AND account_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, messageID, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
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
