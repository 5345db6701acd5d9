package service_test

import (
	"context"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockBackend) FetchHistory(
	ctx context.Context, productID string,
) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, productID)
	h, _ := args.Get(0).([]domain.HistoryEntry)
	return h, args.Error(1)
}

func (m *MockBackend) RequestScrape(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, evt domain.ClientEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func price(v float64) *float64 {
	return &v
}

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
