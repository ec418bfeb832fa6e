package usecases

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	merchants    map[int64]string
	merchantsErr error
	projects     map[int64]string
	projectErr   error
}

func (s *stubStore) MaxWithdrawalID(context.Context) (int64, error) { return 0, nil }
func (s *stubStore) ListWithdrawalsAfter(context.Context, int64) ([]entities.WithdrawalTransaction, error) {
	return nil, nil
}
func (s *stubStore) ListWithdrawalsByIDs(context.Context, []int64) ([]entities.WithdrawalTransaction, error) {
	return nil, nil
}
func (s *stubStore) MaxDepositID(context.Context) (int64, error) { return 0, nil }
func (s *stubStore) ListDepositsAfter(context.Context, int64) ([]entities.DepositTransaction, error) {
	return nil, nil
}
func (s *stubStore) ListDepositsByIDs(context.Context, []int64) ([]entities.DepositTransaction, error) {
	return nil, nil
}
func (s *stubStore) MaxExchangeID(context.Context) (int64, error) { return 0, nil }
func (s *stubStore) ListExchangesAfter(context.Context, int64) ([]entities.ExchangeTransaction, error) {
	return nil, nil
}
func (s *stubStore) ListExchangesByIDs(context.Context, []int64) ([]entities.ExchangeTransaction, error) {
	return nil, nil
}
func (s *stubStore) RecentPublicTransactions(context.Context) ([]entities.PublicTransaction, error) {
	return nil, nil
}

func (s *stubStore) ProjectName(_ context.Context, projectID int64) (string, error) {
	if s.projectErr != nil {
		return "", s.projectErr
	}
	return s.projects[projectID], nil
}

func (s *stubStore) Merchants(context.Context) (map[int64]string, error) {
	return s.merchants, s.merchantsErr
}

func TestDirectoryMerchantName(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{merchants: map[int64]string{7: "Acme Ltd"}}

	dir, err := NewDirectory(ctx, slog.Default(), store)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", dir.MerchantName(7))
	assert.Equal(t, "Unknown", dir.MerchantName(999))
}

func TestDirectoryProjectName(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{projects: map[int64]string{3: "Main Project"}}

	dir, err := NewDirectory(ctx, slog.Default(), store)
	require.NoError(t, err)

	assert.Equal(t, "Main Project", dir.ProjectName(ctx, 3))
	assert.Equal(t, "Unknown", dir.ProjectName(ctx, 44), "missing project degrades to Unknown")

	store.projectErr = errors.New("connection reset")
	assert.Equal(t, "Unknown", dir.ProjectName(ctx, 3), "lookup error degrades to Unknown")
}

func TestDirectoryLoadFailure(t *testing.T) {
	store := &stubStore{merchantsErr: errors.New("table missing")}

	_, err := NewDirectory(context.Background(), slog.Default(), store)
	require.Error(t, err)
}
