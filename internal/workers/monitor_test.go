package workers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
)

// fakeStore serves canned rows the way the repository would: poll results
// in descending id order, batched lookups by id.
type fakeStore struct {
	withdrawals map[int64]entities.WithdrawalTransaction
	deposits    map[int64]entities.DepositTransaction
	exchanges   map[int64]entities.ExchangeTransaction
	recent      []entities.PublicTransaction
	merchants   map[int64]string
	projects    map[int64]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		withdrawals: make(map[int64]entities.WithdrawalTransaction),
		deposits:    make(map[int64]entities.DepositTransaction),
		exchanges:   make(map[int64]entities.ExchangeTransaction),
		merchants:   map[int64]string{7: "Acme Ltd"},
		projects:    map[int64]string{3: "Main Project"},
	}
}

func sortedDesc(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

func (s *fakeStore) MaxWithdrawalID(context.Context) (int64, error) {
	var max int64
	for id := range s.withdrawals {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (s *fakeStore) ListWithdrawalsAfter(_ context.Context, afterID int64) ([]entities.WithdrawalTransaction, error) {
	var ids []int64
	for id := range s.withdrawals {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	var rows []entities.WithdrawalTransaction
	for _, id := range sortedDesc(ids) {
		rows = append(rows, s.withdrawals[id])
	}
	return rows, nil
}

func (s *fakeStore) ListWithdrawalsByIDs(_ context.Context, ids []int64) ([]entities.WithdrawalTransaction, error) {
	var rows []entities.WithdrawalTransaction
	for _, id := range ids {
		if row, ok := s.withdrawals[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *fakeStore) MaxDepositID(context.Context) (int64, error) {
	var max int64
	for id := range s.deposits {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (s *fakeStore) ListDepositsAfter(_ context.Context, afterID int64) ([]entities.DepositTransaction, error) {
	var ids []int64
	for id := range s.deposits {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	var rows []entities.DepositTransaction
	for _, id := range sortedDesc(ids) {
		rows = append(rows, s.deposits[id])
	}
	return rows, nil
}

func (s *fakeStore) ListDepositsByIDs(_ context.Context, ids []int64) ([]entities.DepositTransaction, error) {
	var rows []entities.DepositTransaction
	for _, id := range ids {
		if row, ok := s.deposits[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *fakeStore) MaxExchangeID(context.Context) (int64, error) {
	var max int64
	for id := range s.exchanges {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (s *fakeStore) ListExchangesAfter(_ context.Context, afterID int64) ([]entities.ExchangeTransaction, error) {
	var ids []int64
	for id := range s.exchanges {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	var rows []entities.ExchangeTransaction
	for _, id := range sortedDesc(ids) {
		rows = append(rows, s.exchanges[id])
	}
	return rows, nil
}

func (s *fakeStore) ListExchangesByIDs(_ context.Context, ids []int64) ([]entities.ExchangeTransaction, error) {
	var rows []entities.ExchangeTransaction
	for _, id := range ids {
		if row, ok := s.exchanges[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *fakeStore) ProjectName(_ context.Context, projectID int64) (string, error) {
	return s.projects[projectID], nil
}

func (s *fakeStore) Merchants(context.Context) (map[int64]string, error) {
	return s.merchants, nil
}

func (s *fakeStore) RecentPublicTransactions(context.Context) ([]entities.PublicTransaction, error) {
	return s.recent, nil
}

type sentMessage struct {
	channel string
	text    string
}

type followUp struct {
	ref  entities.MessageRef
	text string
}

// fakeNotifier records every chat call and can be told to fail posts.
type fakeNotifier struct {
	posts    []sentMessage
	threads  []followUp
	updates  []followUp
	failPost bool
	nextTS   int
}

func (n *fakeNotifier) Post(_ context.Context, channel, text string) (entities.MessageRef, error) {
	if n.failPost {
		return entities.MessageRef{}, errors.New("slack: rate_limited")
	}
	n.nextTS++
	n.posts = append(n.posts, sentMessage{channel: channel, text: text})
	return entities.MessageRef{Channel: channel, Timestamp: fmt.Sprintf("1700000000.%06d", n.nextTS)}, nil
}

func (n *fakeNotifier) PostThread(_ context.Context, ref entities.MessageRef, text string) error {
	n.threads = append(n.threads, followUp{ref: ref, text: text})
	return nil
}

func (n *fakeNotifier) Update(_ context.Context, ref entities.MessageRef, text string) error {
	n.updates = append(n.updates, followUp{ref: ref, text: text})
	return nil
}

func (n *fakeNotifier) calls() int {
	return len(n.posts) + len(n.threads) + len(n.updates)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
