package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const clientColumns = `id, name, phone, email, cpf, status, first_purchase_date::text, procedure,
	amount_paid, next_action, last_action, notes, created_at`

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var (
		c          entity.Client
		email      sql.NullString
		cpf        sql.NullString
		purchase   sql.NullString
		procedure  sql.NullString
		amount     sql.NullFloat64
		nextAction sql.NullString
		lastAction sql.NullTime
		notes      sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &email, &cpf, &c.Status, &purchase, &procedure,
		&amount, &nextAction, &lastAction, &notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Email = nullableString(email)
	c.CPF = nullableString(cpf)
	c.Procedure = nullableString(procedure)
	c.Notes = nullableString(notes)
	if purchase.Valid {
		d := entity.LooseDate(purchase.String)
		c.FirstPurchaseDate = &d
	}
	if nextAction.Valid {
		d := entity.LooseDate(nextAction.String)
		c.NextAction = &d
	}
	if amount.Valid {
		v := amount.Float64
		c.AmountPaid = &v
	}
	if lastAction.Valid {
		t := lastAction.Time
		c.LastAction = &t
	}
	return &c, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func looseDateArg(d *entity.LooseDate) any {
	if d == nil || d.IsBlank() {
		return nil
	}
	return d.String()
}

func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (name, phone, email, cpf, status, first_purchase_date, procedure,
			amount_paid, next_action, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.DB.QueryRowContext(ctx, query,
		c.Name,
		c.Phone,
		c.Email,
		c.CPF,
		c.Status,
		looseDateArg(c.FirstPurchaseDate),
		c.Procedure,
		c.AmountPaid,
		looseDateArg(c.NextAction),
		c.Notes,
		c.CreatedAt,
	).Scan(&c.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return entity.ErrDuplicateClient
		}
		log.Error().Err(err).Msg("Erro crítico no banco ao inserir cliente")
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client %d: %w", id, err)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return r.queryClients(ctx, query, limit, offset)
}

// FindWithPurchaseBefore traz quem comprou até a data informada (inclusive).
// Comparação por dia; o horário de date é ignorado.
func (r *ClientRepository) FindWithPurchaseBefore(ctx context.Context, date time.Time) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE first_purchase_date IS NOT NULL AND first_purchase_date <= $1::date
		ORDER BY first_purchase_date, id`
	return r.queryClients(ctx, query, date.Format("2006-01-02"))
}

func (r *ClientRepository) queryClients(ctx context.Context, query string, args ...any) ([]*entity.Client, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (r *ClientRepository) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Client, error) {
	query := `UPDATE clients SET status = $2 WHERE id = $1 RETURNING ` + clientColumns
	return r.updateOne(ctx, query, id, status)
}

// UpdateNextAction grava a próxima ação em ISO-8601 junto com o horário do último contato.
func (r *ClientRepository) UpdateNextAction(ctx context.Context, id int64, nextAction, lastAction time.Time) (*entity.Client, error) {
	query := `UPDATE clients SET next_action = $2, last_action = $3 WHERE id = $1 RETURNING ` + clientColumns
	return r.updateOne(ctx, query, id, nextAction.Format(time.RFC3339), lastAction)
}

// UpdateManual aplica as edições do painel. next_action vazio limpa o agendamento.
func (r *ClientRepository) UpdateManual(ctx context.Context, id int64, patch entity.ClientPatch) (*entity.Client, error) {
	query := `
		UPDATE clients SET
			status = COALESCE($2, status),
			next_action = CASE WHEN $3::text IS NULL THEN next_action ELSE NULLIF($3::text, '') END,
			notes = COALESCE($4, notes)
		WHERE id = $1
		RETURNING ` + clientColumns
	return r.updateOne(ctx, query, id, patch.Status, patch.NextAction, patch.Notes)
}

func (r *ClientRepository) updateOne(ctx context.Context, query string, id int64, args ...any) (*entity.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}
	return c, nil
}

func (r *ClientRepository) Summary(ctx context.Context) (*entity.ClientSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status ILIKE 'Novo%'),
			(SELECT COUNT(*) FROM actions WHERE outcome = 'pending')
		FROM clients
	`
	var s entity.ClientSummary
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.TotalClients, &s.NewClients, &s.PendingActions); err != nil {
		return nil, fmt.Errorf("client summary: %w", err)
	}
	return &s, nil
}
