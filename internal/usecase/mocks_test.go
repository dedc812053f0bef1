package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

// MockClientRepository - Mock para o repositório de clientes
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *entity.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) FindWithPurchaseBefore(ctx context.Context, date time.Time) ([]*entity.Client, error) {
	args := m.Called(ctx, date)
	if v := args.Get(0); v != nil {
		return v.([]*entity.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Client, error) {
	args := m.Called(ctx, id, status)
	if v := args.Get(0); v != nil {
		return v.(*entity.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) UpdateNextAction(ctx context.Context, id int64, nextAction, lastAction time.Time) (*entity.Client, error) {
	args := m.Called(ctx, id, nextAction, lastAction)
	if v := args.Get(0); v != nil {
		return v.(*entity.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockActionRepository - Mock para a trilha de ações
type MockActionRepository struct {
	mock.Mock
	nextID int64
}

func (m *MockActionRepository) Create(ctx context.Context, a *entity.Action) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		m.nextID++
		a.ID = m.nextID
	}
	return args.Error(0)
}

func (m *MockActionRepository) UpdateOutcome(ctx context.Context, id int64, outcome entity.ActionOutcome) (*entity.Action, error) {
	args := m.Called(ctx, id, outcome)
	if v := args.Get(0); v != nil {
		return v.(*entity.Action), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendFollowUp(ctx context.Context, c *entity.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectDue(ctx context.Context, referenceDays int) ([]*entity.Client, error) {
	args := m.Called(ctx, referenceDays)
	if v := args.Get(0); v != nil {
		return v.([]*entity.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishClientRegistered(ctx context.Context, event usecase.ClientRegisteredEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func looseDate(s string) *entity.LooseDate {
	d := entity.LooseDate(s)
	return &d
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
