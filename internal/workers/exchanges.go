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
)

const kindExchange = "exchange"

// ExchangeMonitor mirrors currency exchange transactions into the cashouts
// channel. Exchanges have no customer-facing counterpart row, so no
// correlation step; status transitions are threaded replies.
type ExchangeMonitor struct {
	logger    *slog.Logger
	store     ports.TransactionStore
	notifier  ports.Notifier
	directory ports.NameDirectory

	channel  string
	interval time.Duration

	watermark  int64
	refs       map[int64]entities.MessageRef
	lastStatus map[int64]string
}

func NewExchangeMonitor(
	logger *slog.Logger,
	store ports.TransactionStore,
	notifier ports.Notifier,
	directory ports.NameDirectory,
	channel string,
	interval time.Duration,
) *ExchangeMonitor {
	return &ExchangeMonitor{
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

func (m *ExchangeMonitor) Start(ctx context.Context) error {
	maxID, err := m.store.MaxExchangeID(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize exchange watermark: %w", err)
	}
	m.watermark = maxID

	m.logger.Info("Starting exchange monitor",
		"watermark", m.watermark, "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Exchange monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.runCycle(ctx); err != nil {
				metrics.StoreErrorsTotal.WithLabelValues(kindExchange).Inc()
				m.logger.Error("Exchange poll cycle failed", "error", err)
			}
		}
	}
}

func (m *ExchangeMonitor) runCycle(ctx context.Context) error {
	rows, err := m.store.ListExchangesAfter(ctx, m.watermark)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, seen := m.refs[row.ID]; seen {
			m.observe(ctx, row)
			continue
		}

		text := format.ExchangeMessage(row,
			m.directory.MerchantName(row.OwnerMerchantID),
			m.directory.ProjectName(ctx, row.ProjectID))

		ref, err := m.notifier.Post(ctx, m.channel, text)
		if err != nil {
			metrics.ChatErrorsTotal.Inc()
			m.logger.Error("Failed to post exchange card", "exchange_id", row.ID, "error", err)
			continue
		}

		m.refs[row.ID] = ref
		m.lastStatus[row.ID] = row.Status
		if row.ID > m.watermark {
			m.watermark = row.ID
		}
		metrics.MessagesPostedTotal.WithLabelValues(kindExchange).Inc()

		m.logger.Info("Exchange announced", "exchange_id", row.ID, "status", row.Status)
	}

	fresh, err := m.store.ListExchangesByIDs(ctx, mapKeys(m.refs))
	if err != nil {
		return err
	}
	for _, row := range fresh {
		m.observe(ctx, row)
	}

	metrics.CyclesTotal.WithLabelValues(kindExchange).Inc()
	return nil
}

func (m *ExchangeMonitor) observe(ctx context.Context, row entities.ExchangeTransaction) {
	prev, ok := m.lastStatus[row.ID]
	if !ok {
		m.lastStatus[row.ID] = row.Status
		return
	}
	if prev == row.Status {
		return
	}

	if err := m.notifier.PostThread(ctx, m.refs[row.ID], format.StatusText(row.Status)); err != nil {
		metrics.ChatErrorsTotal.Inc()
		m.logger.Error("Failed to post exchange status", "exchange_id", row.ID, "error", err)
		return
	}

	m.lastStatus[row.ID] = row.Status
	metrics.ThreadRepliesTotal.Inc()

	m.logger.Info("Exchange status updated",
		"exchange_id", row.ID, "from", prev, "to", row.Status)
}
