/*
 * metrics.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

//Package metrics exposes the progress of conformer generation as prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmera/goconf"
	"github.com/rmera/goconf/chem"
)

const namespace = "goconf"

//AttemptBuckets are the buckets of the attempts-per-conformer histogram.
var AttemptBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}

//Metrics is a goconf.Observer that records the generation in prometheus collectors. It can
//be shared by generators running concurrently.
type Metrics struct {
	Conformers *prometheus.CounterVec
	Proposals  prometheus.Counter
	Collisions prometheus.Counter
	Rules      prometheus.Counter
	Rejections prometheus.Counter
	Attempts   *prometheus.HistogramVec
}

var _ goconf.Observer = (*Metrics)(nil)

//New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	M := &Metrics{
		Conformers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conformers_total",
			Help:      "Conformers generated, by path and outcome.",
		}, []string{"path", "outcome"}),
		Proposals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "torsion_sets_proposed_total",
			Help:      "Torsion sets materialized.",
		}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "torsion_sets_collided_total",
			Help:      "Torsion sets that produced atom collisions.",
		}),
		Rules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elimination_rules_learned_total",
			Help:      "Elimination rules learned from collisions.",
		}),
		Rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "torsion_sets_rejected_total",
			Help:      "Proposals rejected by elimination rules before materialization.",
		}),
		Attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempts_per_conformer",
			Help:      "Torsion sets tried per conformer generated.",
			Buckets:   AttemptBuckets,
		}, []string{"path"}),
	}
	for _, c := range []prometheus.Collector{M.Conformers, M.Proposals, M.Collisions, M.Rules, M.Rejections, M.Attempts} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: failed to register collector: %w", err)
		}
	}
	return M, nil
}

func (M *Metrics) Generated(path string, outcome chem.Outcome, attempts int) {
	M.Conformers.WithLabelValues(path, outcome.String()).Inc()
	M.Attempts.WithLabelValues(path).Observe(float64(attempts))
}

func (M *Metrics) Proposed() { M.Proposals.Inc() }

func (M *Metrics) Collided() { M.Collisions.Inc() }

func (M *Metrics) Learned(rules int) { M.Rules.Add(float64(rules)) }

func (M *Metrics) Rejected(n int) { M.Rejections.Add(float64(n)) }
