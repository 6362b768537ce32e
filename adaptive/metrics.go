/*
 * metrics.go, part of aqmmm.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package adaptive

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsPrefix = "aqmmm_"

// Metrics collects Prometheus metrics for an Engine. A nil *Metrics
// records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	bufferGroups  prometheus.Gauge
	subsystems    prometheus.Counter
	stageDuration *prometheus.HistogramVec
}

// NewMetrics creates the engine metrics and registers them with registerer,
// or with the default registerer if it is nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{}
	m.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "runs_total",
		Help: "Total number of adaptive QM/MM runs, by scheme and outcome.",
	}, []string{"scheme", "status"})
	m.bufferGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metricsPrefix + "buffer_groups",
		Help: "Number of groups in the buffer zone of the last partitioned run.",
	})
	m.subsystems = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricsPrefix + "subsystems_evaluated_total",
		Help: "Total number of QM/MM sub-system evaluations.",
	})
	m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "stage_duration_seconds",
		Help:    "Duration of each stage of a run.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage"})
	collectors := []prometheus.Collector{m.runs, m.bufferGroups, m.subsystems, m.stageDuration}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) runDone(scheme string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runs.WithLabelValues(scheme, status).Inc()
}

func (m *Metrics) setBufferGroups(n int) {
	if m == nil {
		return
	}
	m.bufferGroups.Set(float64(n))
}

func (m *Metrics) subsystemDone() {
	if m == nil {
		return
	}
	m.subsystems.Inc()
}
