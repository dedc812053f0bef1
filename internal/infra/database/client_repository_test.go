package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/crm-followup/internal/entity"
)

var clientColumnNames = []string{
	"id", "name", "phone", "email", "cpf", "status", "first_purchase_date", "procedure",
	"amount_paid", "next_action", "last_action", "notes", "created_at",
}

func setupClientRepo(t *testing.T) (*ClientRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewClientRepository(db), mock
}

func TestClientRepository_Create(t *testing.T) {
	repo, mock := setupClientRepo(t)
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	email := "maria@exemplo.com"

	c := &entity.Client{
		Name:              "Maria",
		Phone:             "11987654321",
		Email:             &email,
		Status:            entity.DefaultClientStatus,
		FirstPurchaseDate: entity.NewDateOnly(created),
		CreatedAt:         created,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clients")).
		WithArgs("Maria", "11987654321", email, nil, entity.DefaultClientStatus, "2024-01-01", nil, nil, nil, nil, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(15)))

	err := repo.Create(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, int64(15), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepository_CreateDuplicate(t *testing.T) {
	repo, mock := setupClientRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clients")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &entity.Client{Name: "Maria", Phone: "11987654321"})

	assert.ErrorIs(t, err, entity.ErrDuplicateClient)
}

func TestClientRepository_FindByID(t *testing.T) {
	repo, mock := setupClientRepo(t)
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			int64(3), "João", "11987654321", nil, nil, "Novo Cliente - 1 compra", "2024-01-01", "Botox",
			250.5, "15/01/2024", last, nil, created,
		))

	c, err := repo.FindByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "João", c.Name)
	assert.Nil(t, c.Email)
	assert.Equal(t, entity.LooseDate("2024-01-01"), *c.FirstPurchaseDate)
	assert.Equal(t, entity.LooseDate("15/01/2024"), *c.NextAction)
	assert.Equal(t, 250.5, *c.AmountPaid)
	assert.Equal(t, last, *c.LastAction)
	assert.Equal(t, "Botox", *c.Procedure)
}

func TestClientRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := setupClientRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)

	assert.ErrorIs(t, err, entity.ErrClientNotFound)
}

func TestClientRepository_FindWithPurchaseBefore(t *testing.T) {
	repo, mock := setupClientRepo(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("first_purchase_date <= $1::date")).
		WithArgs("2024-01-03").
		WillReturnRows(sqlmock.NewRows(clientColumnNames).
			AddRow(int64(1), "A", "11987654321", nil, nil, "Novo", "2023-12-01", nil, nil, nil, nil, nil, created).
			AddRow(int64(2), "B", "11987654322", nil, nil, "Novo", "2024-01-03", nil, nil, "amanhã", nil, nil, created))

	cutoff := time.Date(2024, 1, 3, 0, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	clients, err := repo.FindWithPurchaseBefore(context.Background(), cutoff)

	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Nil(t, clients[0].NextAction)
	assert.Equal(t, entity.LooseDate("amanhã"), *clients[1].NextAction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepository_UpdateNextAction(t *testing.T) {
	repo, mock := setupClientRepo(t)
	next := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE clients SET next_action = $2, last_action = $3 WHERE id = $1")).
		WithArgs(int64(7), "2024-01-15T00:00:00Z", last).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			int64(7), "João", "11987654321", nil, nil, "Novo", "2024-01-01", nil, nil, "2024-01-15T00:00:00Z", last, nil, last,
		))

	c, err := repo.UpdateNextAction(context.Background(), 7, next, last)

	require.NoError(t, err)
	parsed, err := c.NextAction.Parse(time.UTC)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(next))
}

func TestClientRepository_UpdateStatusNotFound(t *testing.T) {
	repo, mock := setupClientRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE clients SET status = $2")).
		WithArgs(int64(8), "VIP").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), 8, "VIP")

	assert.ErrorIs(t, err, entity.ErrClientNotFound)
}

func TestClientRepository_UpdateManual(t *testing.T) {
	repo, mock := setupClientRepo(t)
	empty := ""
	status := "Retornar ligação"
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("NULLIF($3::text, '')")).
		WithArgs(int64(4), status, empty, nil).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			int64(4), "Ana", "11987654321", nil, nil, status, nil, nil, nil, nil, nil, nil, now,
		))

	c, err := repo.UpdateManual(context.Background(), 4, entity.ClientPatch{Status: &status, NextAction: &empty})

	require.NoError(t, err)
	assert.Equal(t, status, c.Status)
	assert.Nil(t, c.NextAction)
}

func TestClientRepository_Summary(t *testing.T) {
	repo, mock := setupClientRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status ILIKE 'Novo%')")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "new", "pending"}).AddRow(10, 4, 2))

	s, err := repo.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, entity.ClientSummary{TotalClients: 10, NewClients: 4, PendingActions: 2}, *s)
}

func TestClientRepository_ListQueryError(t *testing.T) {
	repo, mock := setupClientRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(50, 0).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background(), 50, 0)

	assert.Error(t, err)
}
