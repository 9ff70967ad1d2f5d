// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validator

import (
	m "github.com/ethersphere/nectar/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	// all metrics fields must be exported
	// to be able to return them by Metrics()
	// using reflection
	AnalysedChunks *prometheus.CounterVec
	InvalidChunks  *prometheus.CounterVec
	UnknownChunks  prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "validator"

	return metrics{
		AnalysedChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "analysed_chunks",
			Help:      "Total chunks analysed by detected type.",
		}, []string{"type"}),
		InvalidChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "invalid_chunks",
			Help:      "Total chunks that failed validation by detected type.",
		}, []string{"type"}),
		UnknownChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "unknown_chunks",
			Help:      "Total analysed data that matched no chunk format.",
		}),
	}
}

func (v *Validator) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(v.metrics)
}
