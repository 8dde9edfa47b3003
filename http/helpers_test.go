package http_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sagarc03/bluelist"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of bluelist.DocumentStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Find(ctx context.Context, typeName string, filter bluelist.Filter, limit int) ([]bluelist.Record, error) {
	args := m.Called(ctx, typeName, filter, limit)
	records, _ := args.Get(0).([]bluelist.Record)
	return records, args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (bluelist.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(bluelist.Record), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, typeName string, fields map[string]any) (bluelist.Record, error) {
	args := m.Called(ctx, typeName, fields)
	return args.Get(0).(bluelist.Record), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, rec bluelist.Record) (bluelist.Record, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(bluelist.Record), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSigner is a mock implementation of http.Signer
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(fileName string) (bluelist.SignedPolicy, error) {
	args := m.Called(fileName)
	return args.Get(0).(bluelist.SignedPolicy), args.Error(1)
}

const testRoot = "/v1/apps/bluelist"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler builds a router over a fresh MockStore and MockSigner.
func newTestHandler(t *testing.T, configure ...func(*bluelisthttp.HandlerConfig)) (*bluelisthttp.Handler, *MockStore, *MockSigner) {
	t.Helper()

	config := &bluelisthttp.HandlerConfig{
		ContextRoot: testRoot,
		Logger:      discardLogger(),
	}
	for _, fn := range configure {
		fn(config)
	}

	store := new(MockStore)
	signer := new(MockSigner)
	t.Cleanup(func() {
		store.AssertExpectations(t)
		signer.AssertExpectations(t)
	})

	return bluelisthttp.NewHandler(config, store, signer), store, signer
}
