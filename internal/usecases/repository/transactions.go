package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/merehead/crypto-tx-notifier/pkg/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// TransactionsRepository reads transaction and lookup rows for the monitors.
// All access is read-only; the processing core owns every table.
type TransactionsRepository struct {
	logger *slog.Logger

	db       *database.Postgres // core processing database
	merchant *database.Postgres // auth database with merchant_data
}

func NewTransactionsRepository(logger *slog.Logger, db, merchant *database.Postgres) *TransactionsRepository {
	return &TransactionsRepository{
		logger:   logger,
		db:       db,
		merchant: merchant,
	}
}

const (
	withdrawalColumns = "id, owner_merchant_id, project_id, amount, currency_network, status, hash_transaction, created_at"
	depositColumns    = "id, owner_merchant_id, project_id, amount, currency_name, risk_score, status, created_at"
	exchangeColumns   = "id, owner_merchant_id, project_id, amount_from, currency_from, amount_to, currency_to, rate, fee_exchange, status, created_at"
)

// recentPublicLimit bounds the correlation window against the
// customer-facing transactions table.
const recentPublicLimit = 20

func (r *TransactionsRepository) MaxWithdrawalID(ctx context.Context) (int64, error) {
	return r.maxID(ctx, "project_withdrawal_crypto_transactions")
}

func (r *TransactionsRepository) ListWithdrawalsAfter(ctx context.Context, afterID int64) ([]entities.WithdrawalTransaction, error) {
	rows, err := r.queryAfter(ctx, "project_withdrawal_crypto_transactions", withdrawalColumns, afterID)
	if err != nil {
		return nil, err
	}
	return collect[entities.WithdrawalTransaction](r.logger, rows)
}

func (r *TransactionsRepository) ListWithdrawalsByIDs(ctx context.Context, ids []int64) ([]entities.WithdrawalTransaction, error) {
	rows, err := r.queryByIDs(ctx, "project_withdrawal_crypto_transactions", withdrawalColumns, ids)
	if err != nil || rows == nil {
		return nil, err
	}
	return collect[entities.WithdrawalTransaction](r.logger, rows)
}

func (r *TransactionsRepository) MaxDepositID(ctx context.Context) (int64, error) {
	return r.maxID(ctx, "project_deposit_crypto_transactions")
}

func (r *TransactionsRepository) ListDepositsAfter(ctx context.Context, afterID int64) ([]entities.DepositTransaction, error) {
	rows, err := r.queryAfter(ctx, "project_deposit_crypto_transactions", depositColumns, afterID)
	if err != nil {
		return nil, err
	}
	return collect[entities.DepositTransaction](r.logger, rows)
}

func (r *TransactionsRepository) ListDepositsByIDs(ctx context.Context, ids []int64) ([]entities.DepositTransaction, error) {
	rows, err := r.queryByIDs(ctx, "project_deposit_crypto_transactions", depositColumns, ids)
	if err != nil || rows == nil {
		return nil, err
	}
	return collect[entities.DepositTransaction](r.logger, rows)
}

func (r *TransactionsRepository) MaxExchangeID(ctx context.Context) (int64, error) {
	return r.maxID(ctx, "project_exchange_transactions")
}

func (r *TransactionsRepository) ListExchangesAfter(ctx context.Context, afterID int64) ([]entities.ExchangeTransaction, error) {
	rows, err := r.queryAfter(ctx, "project_exchange_transactions", exchangeColumns, afterID)
	if err != nil {
		return nil, err
	}
	return collect[entities.ExchangeTransaction](r.logger, rows)
}

func (r *TransactionsRepository) ListExchangesByIDs(ctx context.Context, ids []int64) ([]entities.ExchangeTransaction, error) {
	rows, err := r.queryByIDs(ctx, "project_exchange_transactions", exchangeColumns, ids)
	if err != nil || rows == nil {
		return nil, err
	}
	return collect[entities.ExchangeTransaction](r.logger, rows)
}

// ProjectName returns the display name for a project, or "" when the
// project row does not exist.
func (r *TransactionsRepository) ProjectName(ctx context.Context, projectID int64) (string, error) {
	query, args, err := psql.Select("name").From("projects").Where(sq.Eq{"id": projectID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build project query: %w", err)
	}

	var name string
	err = r.db.Pool.QueryRow(ctx, query, args...).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query project name: %w", err)
	}

	return name, nil
}

// Merchants loads the full merchant id to display name mapping from the
// auth database.
func (r *TransactionsRepository) Merchants(ctx context.Context) (map[int64]string, error) {
	rows, err := r.merchant.Pool.Query(ctx, "SELECT merchant_id, id_merchant FROM merchant_data")
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant_data: %w", err)
	}

	merchants, err := collect[entities.Merchant](r.logger, rows)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(merchants))
	for _, m := range merchants {
		names[m.MerchantID] = m.IDMerchant
	}

	return names, nil
}

// RecentPublicTransactions returns the newest rows of the customer-facing
// transactions table, used for real-transaction-id correlation.
func (r *TransactionsRepository) RecentPublicTransactions(ctx context.Context) ([]entities.PublicTransaction, error) {
	query, args, err := psql.
		Select("id", "owner_merchant_id", "amount", "created_at").
		From("core.project_transactions").
		OrderBy("id DESC").
		Limit(recentPublicLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build public transactions query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query public transactions: %w", err)
	}

	return collect[entities.PublicTransaction](r.logger, rows)
}

func (r *TransactionsRepository) maxID(ctx context.Context, table string) (int64, error) {
	var maxID int64
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("failed to query max id from %s: %w", table, err)
	}
	return maxID, nil
}

func (r *TransactionsRepository) queryAfter(ctx context.Context, table, columns string, afterID int64) (pgx.Rows, error) {
	builder := psql.Select(columns).From(table).OrderBy("id DESC")
	if afterID > 0 {
		builder = builder.Where(sq.Gt{"id": afterID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build poll query for %s: %w", table, err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to poll %s: %w", table, err)
	}

	return rows, nil
}

// queryByIDs fetches the given ids in a single batched query. Returns
// nil rows for an empty id set.
func (r *TransactionsRepository) queryByIDs(ctx context.Context, table, columns string, ids []int64) (pgx.Rows, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select(columns).From(table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build batch query for %s: %w", table, err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to batch query %s: %w", table, err)
	}

	return rows, nil
}

func collect[T any](logger *slog.Logger, rows pgx.Rows) ([]T, error) {
	if rows == nil {
		return nil, nil
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		logger.Error("failed to collect rows", "error", err)
		return nil, err
	}

	return collected, nil
}
