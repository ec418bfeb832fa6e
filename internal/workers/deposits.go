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

const kindDeposit = "deposit"

// depositRiskThreshold gates which deposits reach the risk channel.
// Unscored deposits (nil risk_score) are skipped as well.
const depositRiskThreshold = 0.5

// DepositMonitor mirrors high-risk deposit transactions into the risk
// channel. Status transitions rewrite the original card in place instead
// of threading, so the channel always shows the current state.
type DepositMonitor struct {
	logger    *slog.Logger
	store     ports.TransactionStore
	notifier  ports.Notifier
	directory ports.NameDirectory

	channel  string
	interval time.Duration

	watermark  int64
	refs       map[int64]entities.MessageRef
	lastStatus map[int64]string

	// Correlated public transaction ids, resolved once at announce time
	// and reused when the card is re-rendered.
	realIDs map[int64]int64
}

func NewDepositMonitor(
	logger *slog.Logger,
	store ports.TransactionStore,
	notifier ports.Notifier,
	directory ports.NameDirectory,
	channel string,
	interval time.Duration,
) *DepositMonitor {
	return &DepositMonitor{
		logger:     logger,
		store:      store,
		notifier:   notifier,
		directory:  directory,
		channel:    channel,
		interval:   interval,
		refs:       make(map[int64]entities.MessageRef),
		lastStatus: make(map[int64]string),
		realIDs:    make(map[int64]int64),
	}
}

func (m *DepositMonitor) Start(ctx context.Context) error {
	maxID, err := m.store.MaxDepositID(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize deposit watermark: %w", err)
	}
	m.watermark = maxID

	m.logger.Info("Starting deposit monitor",
		"watermark", m.watermark, "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Deposit monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				metrics.StoreErrorsTotal.WithLabelValues(kindDeposit).Inc()
				m.logger.Error("Deposit poll cycle failed", "error", err)
			}
		}
	}
}

func (m *DepositMonitor) runCycle(ctx context.Context) error {
	rows, err := m.store.ListDepositsAfter(ctx, m.watermark)
	if err != nil {
		return err
	}

	var recent []entities.PublicTransaction

	for _, row := range rows {
		if _, seen := m.refs[row.ID]; seen {
			m.observe(ctx, row)
			continue
		}

		if row.RiskScore == nil || *row.RiskScore <= depositRiskThreshold {
			continue
		}

		if recent == nil {
			if recent, err = m.store.RecentPublicTransactions(ctx); err != nil {
				return err
			}
		}

		realID, ok := usecases.ResolveRealTransactionID(row.Amount, row.OwnerMerchantID, row.CreatedAt, recent)
		if !ok {
			m.logger.Warn("Real transaction id not found for deposit", "deposit_id", row.ID)
			continue
		}

		text := format.DepositMessage(row,
			m.directory.MerchantName(row.OwnerMerchantID),
			m.directory.ProjectName(ctx, row.ProjectID),
			realID)

		ref, err := m.notifier.Post(ctx, m.channel, text)
		if err != nil {
			metrics.ChatErrorsTotal.Inc()
			m.logger.Error("Failed to post deposit card", "deposit_id", row.ID, "error", err)
			continue
		}

		m.refs[row.ID] = ref
		m.lastStatus[row.ID] = row.Status
		m.realIDs[row.ID] = realID
		if row.ID > m.watermark {
			m.watermark = row.ID
		}
		metrics.MessagesPostedTotal.WithLabelValues(kindDeposit).Inc()

		m.logger.Info("Deposit announced",
			"deposit_id", row.ID, "real_transaction_id", realID,
			"risk_score", *row.RiskScore, "status", row.Status)
	}

	fresh, err := m.store.ListDepositsByIDs(ctx, mapKeys(m.refs))
	if err != nil {
		return err
	}
	for _, row := range fresh {
		m.observe(ctx, row)
	}

	metrics.CyclesTotal.WithLabelValues(kindDeposit).Inc()
	return nil
}

// observe rewrites the deposit card when the status changed since the last
// render.
func (m *DepositMonitor) observe(ctx context.Context, row entities.DepositTransaction) {
	prev, ok := m.lastStatus[row.ID]
	if !ok {
		m.lastStatus[row.ID] = row.Status
		return
	}
	if prev == row.Status {
		return
	}

	text := format.DepositMessage(row,
		m.directory.MerchantName(row.OwnerMerchantID),
		m.directory.ProjectName(ctx, row.ProjectID),
		m.realIDs[row.ID])

	if err := m.notifier.Update(ctx, m.refs[row.ID], text); err != nil {
		metrics.ChatErrorsTotal.Inc()
		m.logger.Error("Failed to update deposit card", "deposit_id", row.ID, "error", err)
		return
	}

	m.lastStatus[row.ID] = row.Status
	metrics.MessageEditsTotal.Inc()

	m.logger.Info("Deposit status updated",
		"deposit_id", row.ID, "from", prev, "to", row.Status)
}
