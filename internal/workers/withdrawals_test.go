package workers

import (
	"context"
	"testing"
	"time"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/merehead/crypto-tx-notifier/internal/usecases"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWithdrawalFixture(t *testing.T) (*fakeStore, *fakeNotifier, *WithdrawalMonitor) {
	t.Helper()

	store := newFakeStore()
	notifier := &fakeNotifier{}

	directory, err := usecases.NewDirectory(context.Background(), testLogger(), store)
	require.NoError(t, err)

	monitor := NewWithdrawalMonitor(testLogger(), store, notifier, directory, "C-CASHOUTS", time.Second)
	return store, notifier, monitor
}

func addWithdrawal(store *fakeStore, id int64, status string) entities.WithdrawalTransaction {
	row := entities.WithdrawalTransaction{
		ID:              id,
		OwnerMerchantID: 7,
		ProjectID:       3,
		Amount:          decimal.NewFromInt(10),
		CurrencyNetwork: "eth",
		Status:          status,
		CreatedAt:       testTime,
	}
	store.withdrawals[id] = row
	store.recent = append(store.recent, entities.PublicTransaction{
		ID:              9000 + id,
		OwnerMerchantID: 7,
		Amount:          row.Amount,
		CreatedAt:       testTime.Add(time.Duration(id) * time.Second),
	})
	// correlation keys must match exactly
	row.CreatedAt = testTime.Add(time.Duration(id) * time.Second)
	store.withdrawals[id] = row
	return row
}

func TestWithdrawalMonitorAnnouncesOnce(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	addWithdrawal(store, 42, entities.StatusInProgress)

	require.NoError(t, monitor.runCycle(ctx))

	require.Len(t, notifier.posts, 1)
	assert.Equal(t, "C-CASHOUTS", notifier.posts[0].channel)
	assert.Contains(t, notifier.posts[0].text, "ManualCashout")
	assert.Contains(t, notifier.posts[0].text, "Acme Ltd")
	assert.Contains(t, notifier.posts[0].text, "Transaction #9042")
	assert.Contains(t, notifier.posts[0].text, ":large_yellow_circle: Transaction in progress")
	assert.Equal(t, int64(42), monitor.watermark)

	// Unchanged row: the next cycle makes no chat calls at all.
	calls := notifier.calls()
	require.NoError(t, monitor.runCycle(ctx))
	assert.Equal(t, calls, notifier.calls())
}

func TestWithdrawalMonitorStatusTransition(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	row := addWithdrawal(store, 42, entities.StatusInProgress)
	require.NoError(t, monitor.runCycle(ctx))
	require.Len(t, notifier.posts, 1)

	// The row flips to success before the next poll; the watermark has
	// already advanced past it, so only reconciliation can catch it.
	row.Status = entities.StatusSuccess
	row.HashTransaction = "0xabc"
	store.withdrawals[42] = row

	require.NoError(t, monitor.runCycle(ctx))

	require.Len(t, notifier.threads, 1)
	assert.Equal(t, notifier.posts[0].channel, notifier.threads[0].ref.Channel)
	assert.Contains(t, notifier.threads[0].text, ":large_green_circle: Transaction success")
	assert.Contains(t, notifier.threads[0].text, "https://etherscan.io/tx/0xabc")
	assert.Len(t, notifier.posts, 1, "no second card for a known transaction")

	// The transition is reported exactly once.
	require.NoError(t, monitor.runCycle(ctx))
	assert.Len(t, notifier.threads, 1)
}

func TestWithdrawalMonitorWatermarkNeverDecreases(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	addWithdrawal(store, 42, entities.StatusInProgress)
	require.NoError(t, monitor.runCycle(ctx))
	require.Equal(t, int64(42), monitor.watermark)

	// A row with a lower id appearing later is invisible to the poll
	// filter and must not move the watermark back.
	addWithdrawal(store, 41, entities.StatusInProgress)
	require.NoError(t, monitor.runCycle(ctx))
	assert.Equal(t, int64(42), monitor.watermark)
	assert.Len(t, notifier.posts, 1)

	addWithdrawal(store, 50, entities.StatusInProgress)
	require.NoError(t, monitor.runCycle(ctx))
	assert.Equal(t, int64(50), monitor.watermark)
}

func TestWithdrawalMonitorSkipsPreexistingHistory(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	addWithdrawal(store, 5, entities.StatusSuccess)

	maxID, err := store.MaxWithdrawalID(ctx)
	require.NoError(t, err)
	monitor.watermark = maxID

	require.NoError(t, monitor.runCycle(ctx))
	assert.Empty(t, notifier.posts)
}

func TestWithdrawalMonitorRetriesAfterChatError(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	addWithdrawal(store, 42, entities.StatusInProgress)

	notifier.failPost = true
	require.NoError(t, monitor.runCycle(ctx))
	assert.Empty(t, notifier.posts)
	assert.Zero(t, monitor.watermark, "failed send leaves the row new")

	notifier.failPost = false
	require.NoError(t, monitor.runCycle(ctx))
	assert.Len(t, notifier.posts, 1)
	assert.Equal(t, int64(42), monitor.watermark)
}

func TestWithdrawalMonitorCorrelationMiss(t *testing.T) {
	ctx := context.Background()
	store, notifier, monitor := newWithdrawalFixture(t)

	addWithdrawal(store, 42, entities.StatusInProgress)
	store.recent = nil // nothing to correlate against

	require.NoError(t, monitor.runCycle(ctx))
	assert.Empty(t, notifier.posts, "uncorrelated rows are skipped, not announced")
}
