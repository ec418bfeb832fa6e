package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_cycles_total",
		Help: "Completed poll cycles per transaction kind",
	}, []string{"kind"})

	MessagesPostedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_messages_posted_total",
		Help: "Initial transaction cards posted to Slack",
	}, []string{"kind"})

	ThreadRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_thread_replies_total",
		Help: "Status follow-ups posted as threaded replies",
	})

	MessageEditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_message_edits_total",
		Help: "Status follow-ups delivered as in-place edits",
	})

	ChatErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_chat_errors_total",
		Help: "Slack API calls that failed",
	})

	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_store_errors_total",
		Help: "Database poll cycles that failed per transaction kind",
	}, []string{"kind"})
)
