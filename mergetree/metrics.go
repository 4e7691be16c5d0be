//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package mergetree

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes the throughput of the selection engine. A nil *Metrics
// is valid, callers nil-check before observing.
type Metrics struct {
	RangesProduced        prometheus.Counter
	PartsRetained         prometheus.Counter
	PrepareRangesDuration prometheus.Observer
	SelectionOutcomes     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, table string) *Metrics {
	constLabels := prometheus.Labels{"table": table}

	rangesProduced := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "mergetree_merger_ranges_produced_total",
		Help:        "Mergeable ranges produced while preparing merge candidates",
		ConstLabels: constLabels,
	})
	partsRetained := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "mergetree_merger_parts_retained_total",
		Help:        "Parts retained inside mergeable ranges",
		ConstLabels: constLabels,
	})
	prepareDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "mergetree_merger_prepare_ranges_duration_seconds",
		Help:        "Time spent splitting collected parts into mergeable ranges",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(1e-5, 4, 10),
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "mergetree_merger_selection_outcomes_total",
		Help:        "Selection attempts by outcome",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	if reg != nil {
		reg.MustRegister(rangesProduced, partsRetained, prepareDuration, outcomes)
	}

	return &Metrics{
		RangesProduced:        rangesProduced,
		PartsRetained:         partsRetained,
		PrepareRangesDuration: prepareDuration,
		SelectionOutcomes:     outcomes,
	}
}

func (m *Metrics) observeSplit(ranges PartsRanges, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.RangesProduced.Add(float64(len(ranges)))
	m.PartsRetained.Add(float64(ranges.PartsCount()))
	m.PrepareRangesDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}

	m.SelectionOutcomes.With(prometheus.Labels{"outcome": outcome}).Inc()
}
