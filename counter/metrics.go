// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"errors"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

type metrics struct {
	operations *prometheus.CounterVec
	rejections *prometheus.CounterVec
	created    prometheus.Counter
	conflicts  prometheus.Counter
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "operations",
			Help:      "number of counter operations by outcome",
		}, []string{"op", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "rejections",
			Help:      "number of rejected counter operations by reason",
		}, []string{"op", "reason"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "created",
			Help:      "number of counters created",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "write_conflicts",
			Help:      "number of writes that lost a swap to a concurrent writer",
		}),
	}
	if r == nil {
		return m, nil
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.operations),
		r.Register(m.rejections),
		r.Register(m.created),
		r.Register(m.conflicts),
	)
	return m, errs.Err
}

func (m *metrics) observe(op string, err error) {
	if err == nil {
		m.operations.WithLabelValues(op, outcomeOK).Inc()
		return
	}
	m.operations.WithLabelValues(op, outcomeError).Inc()
	for _, sentinel := range Errors {
		if errors.Is(err, sentinel) {
			m.rejections.WithLabelValues(op, sentinel.Error()).Inc()
			return
		}
	}
	m.rejections.WithLabelValues(op, "internal").Inc()
}
