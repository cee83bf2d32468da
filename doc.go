// Package dseframe explores design-space-exploration results by comparing
// optimization methods through their Pareto frontiers.
//
// # Overview
//
// An exploration run emits candidate designs as points in a two-objective
// space, for example latency against area. Both objectives are minimized.
// Points arrive grouped by (method, iteration). dseframe keeps, for every
// group and for the union of the enabled groups, the frontier of
// non-dominated points, and scores each group against the union.
//
// # Architecture
//
// The package components, leaves first:
//
//   - Point              - one design, (X, Y), both minimized
//   - FrontierSet        - sorted non-dominated staircase, incremental insert
//   - Group              - raw points and local frontier of one method-group
//   - FrontierAggregator - global reference frontier over enabled groups
//   - ComputeMetrics     - Dominance, ADRS and Hypervolume per group
//   - Session            - ingestion, toggles, analysis and snapshots
//
// Reading CSV files, watching them, launching the exploration tool and
// rendering live in internal/ and cmd/; they only talk to a Session.
//
// # Quick Start
//
//	s, err := dseframe.NewSession(dseframe.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s.Ingest(dseframe.GroupKey{Method: "FU", Iteration: "1"}, dseframe.Pt(120, 5400))
//	s.Ingest(dseframe.GroupKey{Method: "FU", Iteration: "1"}, dseframe.Pt(95, 6100))
//	s.Ingest(dseframe.GroupKey{Method: "Ant", Iteration: "1"}, dseframe.Pt(100, 5000))
//
//	for id, m := range s.Analyze() {
//	    fmt.Printf("group %d: ADRS %s, Dominance %s, Hypervolume %s\n",
//	        id, m.ADRS.Percent(), m.Dominance.Percent(), m.Hypervolume.Percent())
//	}
//
// # Dominance
//
// q dominates p when q is no worse in both objectives and q ≠ p:
//
//	q.X ≤ p.X ∧ q.Y ≤ p.Y ∧ q ≠ p
//
// A frontier is therefore strictly increasing in X and strictly decreasing
// in Y. Of two identical points the first one offered is kept.
//
// # Quality Indicators
//
// With L the group's local frontier and R the global reference frontier:
//
//	Dominance   = |L ∩ R| / |R|
//	ADRS        = ½ (mean_{p∈L} d(p, R)/|q*| + mean_{q∈R} d(q, L)/|q|)
//	Hypervolume = area under L (anchored at R₀) / area under R (anchored at Lₘ)
//
// Reading them:
//   - Dominance near 1: the group found most of the reference frontier
//   - ADRS near 0: the group's frontier sits on the reference frontier
//   - Hypervolume near 1: the group's curve covers what the reference covers
//
// An indicator is unavailable (Measure.Valid == false) when L or R is empty,
// and Hypervolume also needs at least two reference points.
//
// # Toggling Groups
//
// Enabling or disabling a group always rebuilds the global frontier from the
// enabled local frontiers. New points take the incremental path. Both give
// the same frontier.
//
// # Testing
//
// assertions.go exports helpers for frontier invariants:
//
//	func TestMyExplorer(t *testing.T) {
//	    f := dseframe.RebuildFrontier(points)
//	    dseframe.AssertFrontier(t, f.Points())
//	    dseframe.AssertCovers(t, f.Points(), points)
//	    dseframe.AssertRebuildEquivalent(t, points)
//	}
package dseframe
