package ports

import (
	"context"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
)

// TransactionStore is the read-only view of the processing database the
// monitors poll. The notifier never writes transaction rows.
type TransactionStore interface {
	MaxWithdrawalID(ctx context.Context) (int64, error)
	ListWithdrawalsAfter(ctx context.Context, afterID int64) ([]entities.WithdrawalTransaction, error)
	ListWithdrawalsByIDs(ctx context.Context, ids []int64) ([]entities.WithdrawalTransaction, error)

	MaxDepositID(ctx context.Context) (int64, error)
	ListDepositsAfter(ctx context.Context, afterID int64) ([]entities.DepositTransaction, error)
	ListDepositsByIDs(ctx context.Context, ids []int64) ([]entities.DepositTransaction, error)

	MaxExchangeID(ctx context.Context) (int64, error)
	ListExchangesAfter(ctx context.Context, afterID int64) ([]entities.ExchangeTransaction, error)
	ListExchangesByIDs(ctx context.Context, ids []int64) ([]entities.ExchangeTransaction, error)

	ProjectName(ctx context.Context, projectID int64) (string, error)
	Merchants(ctx context.Context) (map[int64]string, error)
	RecentPublicTransactions(ctx context.Context) ([]entities.PublicTransaction, error)
}

// Notifier delivers transaction cards and status follow-ups to chat.
// All three operations are best effort from the monitors' point of view:
// a failed Post simply leaves the transaction unannounced for this cycle.
type Notifier interface {
	Post(ctx context.Context, channel, text string) (entities.MessageRef, error)
	PostThread(ctx context.Context, ref entities.MessageRef, text string) error
	Update(ctx context.Context, ref entities.MessageRef, text string) error
}

// NameDirectory resolves merchant and project ids to display names.
type NameDirectory interface {
	MerchantName(merchantID int64) string
	ProjectName(ctx context.Context, projectID int64) string
}
