package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plateful",
			Subsystem: "state",
			Name:      "notifications_total",
			Help:      "Subscriber callbacks invoked, per store.",
		},
		[]string{"store"},
	)

	subscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "plateful",
			Subsystem: "state",
			Name:      "subscribers",
			Help:      "Currently registered subscribers, per store.",
		},
		[]string{"store"},
	)
)
