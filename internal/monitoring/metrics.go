// Package monitoring exposes Prometheus metrics for the lifecycle
// operations and the HTTP surface.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_operations_total",
			Help: "Subscription lifecycle operations by outcome",
		},
		[]string{"operation", "status"},
	)

	occupiedSeats = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seats_occupied_total",
			Help: "Seats currently marked occupied",
		},
	)

	waitingLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waiting_list_length",
			Help: "Current waiting list length",
		},
	)

	codeMints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_mints_total",
			Help: "EVOLVE codes minted by scope",
		},
		[]string{"scope"},
	)
)

// RecordLifecycleOp counts one create/change/end operation with its
// outcome ("ok", "rejected", "error").
func RecordLifecycleOp(operation, status string) {
	lifecycleOps.WithLabelValues(operation, status).Inc()
}

// SetOccupiedSeats updates the occupancy gauge after a listing.
func SetOccupiedSeats(n int) {
	occupiedSeats.Set(float64(n))
}

// SetWaitingLength updates the waiting-list gauge after a listing.
func SetWaitingLength(n int) {
	waitingLength.Set(float64(n))
}

// RecordCodeMint counts a minted member or payment code.
func RecordCodeMint(scope string) {
	codeMints.WithLabelValues(scope).Inc()
}
