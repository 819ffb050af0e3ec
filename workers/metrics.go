package workers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "merklemine"
	metricsSubsystem = "claimer"

	skipReasonVerifier  = "verifier_error"
	skipReasonGenerated = "already_generated"
	skipReasonProof     = "proof_error"
)

var (
	candidatesFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "candidates_total",
		Help:      "number of candidate addresses returned by account discovery",
	})
	discoveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "discovery_failures_total",
		Help:      "number of failed account discovery attempts",
	})
	addressesQueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "addresses_queued_total",
		Help:      "number of addresses added to a claim batch",
	})
	addressesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "addresses_skipped_total",
		Help:      "number of candidate addresses left out of a claim batch",
	}, []string{"reason"})
	txSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "transactions_submitted_total",
		Help:      "number of multiGenerate transactions broadcast",
	})
	txFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "transactions_failed_total",
		Help:      "number of multiGenerate submissions that failed before broadcast was acknowledged",
	})
	lastNonce = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "last_nonce",
		Help:      "nonce of the last broadcast transaction",
	})
)
