package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/crm-followup/internal/entity"
)

const actionColumns = `id, client_id, type, content, outcome, created_at`

type ActionRepository struct {
	DB *sql.DB
}

func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{DB: db}
}

func scanAction(row rowScanner) (*entity.Action, error) {
	var a entity.Action
	if err := row.Scan(&a.ID, &a.ClientID, &a.Type, &a.Content, &a.Outcome, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActionRepository) Create(ctx context.Context, a *entity.Action) error {
	query := `
		INSERT INTO actions (client_id, type, content, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.ClientID, a.Type, a.Content, a.Outcome, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return entity.ErrClientNotFound
		}
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// UpdateOutcome resolve uma ação pendente. Ação já resolvida não muda mais.
func (r *ActionRepository) UpdateOutcome(ctx context.Context, id int64, outcome entity.ActionOutcome) (*entity.Action, error) {
	if !outcome.IsTerminal() {
		return nil, fmt.Errorf("resultado inválido para resolver ação: %q", outcome)
	}

	query := `UPDATE actions SET outcome = $2 WHERE id = $1 AND outcome = 'pending' RETURNING ` + actionColumns
	a, err := scanAction(r.DB.QueryRowContext(ctx, query, id, outcome))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update action %d: %w", id, err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM actions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check action %d: %w", id, err)
	}
	if exists {
		return nil, entity.ErrActionAlreadyResolved
	}
	return nil, entity.ErrActionNotFound
}

func (r *ActionRepository) ListByClient(ctx context.Context, clientID int64) ([]*entity.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE client_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryActions(ctx, query, clientID)
}

// FindStalePending lista ações que continuam pendentes depois de olderThan.
func (r *ActionRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE outcome = 'pending' AND created_at < $1 ORDER BY created_at`
	return r.queryActions(ctx, query, olderThan)
}

func (r *ActionRepository) queryActions(ctx context.Context, query string, args ...any) ([]*entity.Action, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []*entity.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}
