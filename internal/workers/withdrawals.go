package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/merehead/crypto-tx-notifier/internal/core/ports"
	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/merehead/crypto-tx-notifier/internal/format"
	"github.com/merehead/crypto-tx-notifier/internal/metrics"
	"github.com/merehead/crypto-tx-notifier/internal/usecases"
)

const kindWithdrawal = "withdrawal"

// WithdrawalMonitor mirrors manual cashout transactions into the cashouts
// channel: one card per withdrawal, status transitions as threaded replies.
type WithdrawalMonitor struct {
	logger    *slog.Logger
	store     ports.TransactionStore
	notifier  ports.Notifier
	directory ports.NameDirectory

	channel  string
	interval time.Duration

	// Highest withdrawal id fully processed. Rows at or below it are only
	// revisited through the reconciliation pass.
	watermark int64

	// Per-transaction message handles and last rendered status. Entries
	// live for the lifetime of the process.
	refs       map[int64]entities.MessageRef
	lastStatus map[int64]string
}

func NewWithdrawalMonitor(
	logger *slog.Logger,
	store ports.TransactionStore,
	notifier ports.Notifier,
	directory ports.NameDirectory,
	channel string,
	interval time.Duration,
) *WithdrawalMonitor {
	return &WithdrawalMonitor{
		logger:     logger,
		store:      store,
		notifier:   notifier,
		directory:  directory,
		channel:    channel,
		interval:   interval,
		refs:       make(map[int64]entities.MessageRef),
		lastStatus: make(map[int64]string),
	}
}

// Start initializes the watermark from the current maximum id, so
// pre-existing history is never replayed, then polls until the context is
// cancelled.
func (m *WithdrawalMonitor) Start(ctx context.Context) error {
	maxID, err := m.store.MaxWithdrawalID(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize withdrawal watermark: %w", err)
	}
	m.watermark = maxID

	m.logger.Info("Starting withdrawal monitor",
		"watermark", m.watermark, "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Withdrawal monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				metrics.StoreErrorsTotal.WithLabelValues(kindWithdrawal).Inc()
				m.logger.Error("Withdrawal poll cycle failed", "error", err)
			}
		}
	}
}

func (m *WithdrawalMonitor) runCycle(ctx context.Context) error {
	rows, err := m.store.ListWithdrawalsAfter(ctx, m.watermark)
	if err != nil {
		return err
	}

	// Loaded once per cycle, and only for cycles that see new rows.
	var recent []entities.PublicTransaction

	for _, row := range rows {
		if _, seen := m.refs[row.ID]; seen {
			m.observe(ctx, row)
			continue
		}

		if recent == nil {
			if recent, err = m.store.RecentPublicTransactions(ctx); err != nil {
				return err
			}
		}

		realID, ok := usecases.ResolveRealTransactionID(row.Amount, row.OwnerMerchantID, row.CreatedAt, recent)
		if !ok {
			m.logger.Warn("Real transaction id not found for withdrawal", "withdrawal_id", row.ID)
			continue
		}

		merchantName := m.directory.MerchantName(row.OwnerMerchantID)
		projectName := m.directory.ProjectName(ctx, row.ProjectID)

		text := format.WithdrawalMessage(row, merchantName, projectName, realID)
		ref, err := m.notifier.Post(ctx, m.channel, text)
		if err != nil {
			// No handle recorded: the row stays new and is retried next cycle.
			metrics.ChatErrorsTotal.Inc()
			m.logger.Error("Failed to post withdrawal card", "withdrawal_id", row.ID, "error", err)
			continue
		}

		m.refs[row.ID] = ref
		m.lastStatus[row.ID] = row.Status
		if row.ID > m.watermark {
			m.watermark = row.ID
		}
		metrics.MessagesPostedTotal.WithLabelValues(kindWithdrawal).Inc()

		m.logger.Info("Withdrawal announced",
			"withdrawal_id", row.ID, "real_transaction_id", realID, "status", row.Status)
	}

	// Re-check every known id; status changes on rows below the watermark
	// are only visible here.
	fresh, err := m.store.ListWithdrawalsByIDs(ctx, mapKeys(m.refs))
	if err != nil {
		return err
	}
	for _, row := range fresh {
		m.observe(ctx, row)
	}

	metrics.CyclesTotal.WithLabelValues(kindWithdrawal).Inc()
	return nil
}

// observe posts a threaded status reply when the row's status differs from
// the last one rendered. The first observation of an id only seeds the
// status map.
func (m *WithdrawalMonitor) observe(ctx context.Context, row entities.WithdrawalTransaction) {
	prev, ok := m.lastStatus[row.ID]
	if !ok {
		m.lastStatus[row.ID] = row.Status
		return
	}
	if prev == row.Status {
		return
	}

	text := format.WithdrawalStatusText(row.Status, row.CurrencyNetwork, row.HashTransaction)
	if err := m.notifier.PostThread(ctx, m.refs[row.ID], text); err != nil {
		metrics.ChatErrorsTotal.Inc()
		m.logger.Error("Failed to post withdrawal status", "withdrawal_id", row.ID, "error", err)
		return
	}

	m.lastStatus[row.ID] = row.Status
	metrics.ThreadRepliesTotal.Inc()

	m.logger.Info("Withdrawal status updated",
		"withdrawal_id", row.ID, "from", prev, "to", row.Status)
}

func mapKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
