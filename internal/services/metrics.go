package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blueelephant_store_mutations_total",
			Help: "Data store mutations by entity, operation and outcome.",
		},
		[]string{"entity", "op", "outcome"},
	)

	storeLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blueelephant_store_load_failures_total",
			Help: "Collections that failed to load during a batch fetch.",
		},
		[]string{"entity"},
	)

	membersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blueelephant_members_total",
		Help: "Cached total member count.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blueelephant_browser_sessions",
		Help: "Browser sessions tracked by the session registry.",
	})
)
