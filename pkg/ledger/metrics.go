package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txnConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenbridge_ledger_txn_conflicts_total",
			Help: "Total number of ledger transactions retried because of a commit conflict",
		})
	accountsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenbridge_ledger_accounts_created_total",
			Help: "Total number of ledger records created, by kind",
		}, []string{"kind"})
)
