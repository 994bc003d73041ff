// Copyright 2025 The Indy VDR Go Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package metrics exposes Prometheus instrumentation for the engine:
// verification outcome counts by transaction type, and the latency of
// each full verification call.
// The engine itself stays a pure function; these are process-global
// observability hooks recorded alongside each call, never consulted by
// the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smqik/indy-vdr/pkg/ledger"
)

var (
	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indy_vdr",
		Subsystem: "stateproof",
		Name:      "verifications_total",
		Help:      "Count of Engine.Verify calls by transaction type and outcome.",
	}, []string{"txn_type", "outcome"})

	verificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indy_vdr",
		Subsystem: "stateproof",
		Name:      "verification_duration_seconds",
		Help:      "Wall-clock time of a full Engine.Verify call, by transaction type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"txn_type"})
)

// ObserveVerification records the outcome and elapsed time of one
// Engine.Verify call.
func ObserveVerification(txnType string, outcome ledger.Outcome, elapsed time.Duration) {
	verificationsTotal.WithLabelValues(txnType, outcome.String()).Inc()
	verificationDuration.WithLabelValues(txnType).Observe(elapsed.Seconds())
}
