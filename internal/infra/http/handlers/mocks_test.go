package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/infra/scheduler"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *entity.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id int64) (*entity.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Client), args.Error(1)
}

func (m *MockClientRepository) FindWithPurchaseBefore(ctx context.Context, date time.Time) ([]*entity.Client, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Client, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateNextAction(ctx context.Context, id int64, next, last time.Time) (*entity.Client, error) {
	args := m.Called(ctx, id, next, last)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateManual(ctx context.Context, id int64, patch entity.ClientPatch) (*entity.Client, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) Summary(ctx context.Context) (*entity.ClientSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientSummary), args.Error(1)
}

type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) Create(ctx context.Context, a *entity.Action) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActionRepository) UpdateOutcome(ctx context.Context, id int64, outcome entity.ActionOutcome) (*entity.Action, error) {
	args := m.Called(ctx, id, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Action), args.Error(1)
}

func (m *MockActionRepository) ListByClient(ctx context.Context, clientID int64) ([]*entity.Action, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Action), args.Error(1)
}

func (m *MockActionRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Action, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Action), args.Error(1)
}

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Execute(ctx context.Context, input usecase.RegisterClientInput, origin string) (*usecase.RegisterClientOutput, error) {
	args := m.Called(ctx, input, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RegisterClientOutput), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Status() scheduler.Status {
	return m.Called().Get(0).(scheduler.Status)
}

func (m *MockScheduler) RunNow(ctx context.Context) (*usecase.CycleReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CycleReport), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeConn struct{ closed bool }

func (c fakeConn) IsClosed() bool { return c.closed }
