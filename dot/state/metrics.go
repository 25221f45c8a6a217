// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ics10_grandpa_store"

// Update results labelling the updates counter.
const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
)

type storeMetrics struct {
	updates         *prometheus.CounterVec
	clients         prometheus.Gauge
	consensusStates prometheus.Gauge
	latestHeight    *prometheus.GaugeVec
}

func newStoreMetrics() *storeMetrics {
	return &storeMetrics{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "updates_total",
			Help:      "total number of client updates by kind and result",
		}, []string{"kind", "result"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "clients",
			Help:      "number of clients stored",
		}),
		consensusStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "consensus_states",
			Help:      "number of consensus states stored",
		}),
		latestHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "latest_height",
			Help:      "latest counterparty chain height of each client",
		}, []string{"client_id"}),
	}
}

func (m *storeMetrics) register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{m.updates, m.clients, m.consensusStates, m.latestHeight}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
	}
	return nil
}

func (m *storeMetrics) observeUpdate(kind string, err error) {
	result := resultAccepted
	if err != nil {
		result = resultRejected
	}
	m.updates.WithLabelValues(kind, result).Inc()
}
