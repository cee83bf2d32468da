// Package telemetry publishes session snapshots as Prometheus gauges.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexshd/dseframe"
)

const namespace = "dseframe"

var groupLabels = []string{"group", "method", "iteration"}

// Publisher owns a private registry so several sessions, or tests, never
// collide on the default one.
type Publisher struct {
	registry *prometheus.Registry

	dominance      *prometheus.GaugeVec
	adrs           *prometheus.GaugeVec
	hypervolume    *prometheus.GaugeVec
	frontierPoints *prometheus.GaugeVec
	points         *prometheus.GaugeVec

	globalFrontier prometheus.Gauge
	groupsEnabled  prometheus.Gauge
	groupsTotal    prometheus.Gauge

	rowsIngested prometheus.Counter
	rowsSkipped  prometheus.Counter

	mu        sync.Mutex // serializes Publish
	published map[groupSeries]bool
}

// NewPublisher registers every collector on a fresh registry.
func NewPublisher() *Publisher {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Publisher{
		registry: reg,

		dominance: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "group",
			Name:      "dominance",
			Help:      "Share of the global frontier found by the group (0-1)",
		}, groupLabels),
		adrs: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "group",
			Name:      "adrs",
			Help:      "Average distance between the group frontier and the global frontier",
		}, groupLabels),
		hypervolume: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "group",
			Name:      "hypervolume",
			Help:      "Area under the group frontier relative to the global frontier",
		}, groupLabels),
		frontierPoints: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "group",
			Name:      "frontier_points",
			Help:      "Points on the group's local frontier",
		}, groupLabels),
		points: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "group",
			Name:      "points",
			Help:      "Points ingested for the group",
		}, groupLabels),

		globalFrontier: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_frontier_points",
			Help:      "Points on the global frontier of enabled groups",
		}),
		groupsEnabled: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups_enabled",
			Help:      "Groups currently enabled",
		}),
		groupsTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups",
			Help:      "Groups in the session",
		}),

		rowsIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Data rows ingested from results files",
		}),
		rowsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Malformed data rows dropped by the record policy",
		}),
	}
}

// Publish replaces every gauge with the state in snap. Groups without
// metrics, and metrics that are not available, have no series.
//
// New values are set before stale series are deleted, so a concurrent scrape
// sees either the previous or the new value of a live series, never a gap.
func (p *Publisher) Publish(snap dseframe.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := make(map[groupSeries]bool, len(snap.Groups))
	enabled := 0
	for _, g := range snap.Groups {
		gs := groupSeries{
			group:     strconv.Itoa(int(g.ID)),
			method:    g.Key.Method,
			iteration: g.Key.Iteration,
		}
		live[gs] = true
		labels := gs.labels()

		p.points.With(labels).Set(float64(len(g.Points)))
		p.frontierPoints.With(labels).Set(float64(len(g.Frontier)))

		if g.Enabled {
			enabled++
		}

		var m dseframe.Metrics
		if g.Metrics != nil {
			m = *g.Metrics
		}
		setMeasure(p.dominance, labels, m.Dominance)
		setMeasure(p.adrs, labels, m.ADRS)
		setMeasure(p.hypervolume, labels, m.Hypervolume)
	}

	for gs := range p.published {
		if live[gs] {
			continue
		}
		labels := gs.labels()
		for _, v := range []*prometheus.GaugeVec{p.dominance, p.adrs, p.hypervolume, p.frontierPoints, p.points} {
			v.Delete(labels)
		}
	}
	p.published = live

	p.globalFrontier.Set(float64(len(snap.GlobalFrontier)))
	p.groupsEnabled.Set(float64(enabled))
	p.groupsTotal.Set(float64(len(snap.Groups)))
}

// groupSeries is the label set of one group's series.
type groupSeries struct {
	group, method, iteration string
}

func (gs groupSeries) labels() prometheus.Labels {
	return prometheus.Labels{"group": gs.group, "method": gs.method, "iteration": gs.iteration}
}

// setMeasure sets the series when m is available and deletes it otherwise.
func setMeasure(v *prometheus.GaugeVec, labels prometheus.Labels, m dseframe.Measure) {
	if m.Valid {
		v.With(labels).Set(m.Value)
		return
	}
	v.Delete(labels)
}

// ObserveLoad counts the rows of one load.
func (p *Publisher) ObserveLoad(ingested, skipped int) {
	p.rowsIngested.Add(float64(ingested))
	p.rowsSkipped.Add(float64(skipped))
}

// Registry exposes the registry for callers adding their own collectors.
func (p *Publisher) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Publisher) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
