package database

import (
	"context"
	"database/sql"
	"fmt"
)

// next_action é TEXT de propósito: o painel permite edição manual livre.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	email TEXT,
	cpf TEXT UNIQUE,
	status TEXT NOT NULL DEFAULT 'Novo Cliente - 1 compra',
	first_purchase_date DATE,
	procedure TEXT,
	amount_paid NUMERIC(12,2),
	next_action TEXT,
	last_action TIMESTAMP WITH TIME ZONE,
	notes TEXT,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_clients_first_purchase_date ON clients(first_purchase_date);

CREATE TABLE IF NOT EXISTS actions (
	id BIGSERIAL PRIMARY KEY,
	client_id BIGINT NOT NULL REFERENCES clients(id),
	type TEXT NOT NULL CHECK (type IN ('message', 'call', 'purchase')),
	content TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL DEFAULT 'pending'
		CHECK (outcome IN ('pending', 'yes', 'no', 'no-response', 'scheduled', 'purchased')),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_actions_client_id ON actions(client_id);
CREATE INDEX IF NOT EXISTS idx_actions_pending ON actions(created_at) WHERE outcome = 'pending';
`

// Migrate cria as tabelas se ainda não existirem. Pode rodar a cada boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
