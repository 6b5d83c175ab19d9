package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tokenbridge_settlements_total",
			Help: "Total number of native transfers settled",
		})
	settlementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenbridge_settlement_failures_total",
			Help: "Total number of native transfer settlements that failed, by reason",
		}, []string{"reason"})
)
