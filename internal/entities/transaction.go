package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses as the processing core writes them. The set is
// open ended: unknown values are rendered verbatim, never rejected.
const (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusRejected   = "rejected"
	StatusPending    = "pending"
)

// WithdrawalTransaction is a row of project_withdrawal_crypto_transactions.
type WithdrawalTransaction struct {
	ID              int64           `db:"id"`
	OwnerMerchantID int64           `db:"owner_merchant_id"`
	ProjectID       int64           `db:"project_id"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyNetwork string          `db:"currency_network"`
	Status          string          `db:"status"`
	HashTransaction string          `db:"hash_transaction"`
	CreatedAt       time.Time       `db:"created_at"`
}

// DepositTransaction is a row of project_deposit_crypto_transactions.
// RiskScore is nil until the AML provider has scored the deposit.
type DepositTransaction struct {
	ID              int64           `db:"id"`
	OwnerMerchantID int64           `db:"owner_merchant_id"`
	ProjectID       int64           `db:"project_id"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyName    string          `db:"currency_name"`
	RiskScore       *float64        `db:"risk_score"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}

// ExchangeTransaction is a row of project_exchange_transactions.
type ExchangeTransaction struct {
	ID              int64           `db:"id"`
	OwnerMerchantID int64           `db:"owner_merchant_id"`
	ProjectID       int64           `db:"project_id"`
	AmountFrom      decimal.Decimal `db:"amount_from"`
	CurrencyFrom    string          `db:"currency_from"`
	AmountTo        decimal.Decimal `db:"amount_to"`
	CurrencyTo      string          `db:"currency_to"`
	Rate            decimal.Decimal `db:"rate"`
	FeeExchange     decimal.Decimal `db:"fee_exchange"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}

// PublicTransaction is a row of the customer-facing core.project_transactions
// table. There is no foreign key from the crypto tables to it; rows are
// correlated by (amount, owner_merchant_id, created_at) equality.
type PublicTransaction struct {
	ID              int64           `db:"id"`
	OwnerMerchantID int64           `db:"owner_merchant_id"`
	Amount          decimal.Decimal `db:"amount"`
	CreatedAt       time.Time       `db:"created_at"`
}

// Merchant maps a merchant id to its display name from merchant_data.
type Merchant struct {
	MerchantID int64  `db:"merchant_id"`
	IDMerchant string `db:"id_merchant"`
}

// MessageRef is the opaque handle Slack returns for a posted message.
// Timestamp doubles as the thread root when replying in-thread.
type MessageRef struct {
	Channel   string
	Timestamp string
}
