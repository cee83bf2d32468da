package dseframe

import (
	"math"
	"testing"
)

// AssertFrontier verifies the two structural invariants of a frontier sequence.
//
// Sort invariant:
//
//	Xᵢ < Xᵢ₊₁ and Yᵢ > Yᵢ₊₁ for every consecutive pair
//
// Antichain invariant:
//
//	no member dominates another
//
// The sort invariant implies the antichain one; both are checked so a failure
// names the broken property.
func AssertFrontier(t testing.TB, points []Point) {
	t.Helper()

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if !(a.X < b.X) {
			t.Errorf("Sort invariant broken at %d: X %g then %g (must strictly increase)", i, a.X, b.X)
		}
		if !(a.Y > b.Y) {
			t.Errorf("Sort invariant broken at %d: Y %g then %g (must strictly decrease)", i, a.Y, b.Y)
		}
	}

	for i, p := range points {
		for j, q := range points {
			if i != j && p.Dominates(q) {
				t.Errorf("Antichain broken: %s dominates %s", p, q)
			}
		}
	}
}

// AssertCovers verifies that every point offered is either on the frontier or
// weakly dominated by a frontier member, i.e. nothing optimal was lost.
func AssertCovers(t testing.TB, frontier, offered []Point) {
	t.Helper()

	for _, p := range offered {
		covered := false
		for _, q := range frontier {
			if q.X <= p.X && q.Y <= p.Y {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("Point %s is neither on the frontier nor dominated by it", p)
		}
	}
}

// AssertRebuildEquivalent verifies that incremental insertion in arrival order
// and RebuildFrontier over the same points agree.
func AssertRebuildEquivalent(t testing.TB, points []Point) {
	t.Helper()

	incremental := NewFrontierSet()
	for _, p := range points {
		incremental.Insert(p)
	}
	rebuilt := RebuildFrontier(points)

	if !SameFrontier(incremental.Points(), rebuilt.Points()) {
		t.Errorf("Rebuild mismatch:\n  incremental: %v\n  rebuilt:     %v",
			incremental.Points(), rebuilt.Points())
	}
}

// AssertMetricsSane verifies the range properties of a group's metrics.
//
// Properties:
//   - 0 ≤ Dominance ≤ 1
//   - ADRS ≥ 0
//   - no indicator is NaN when available
func AssertMetricsSane(t testing.TB, m Metrics) {
	t.Helper()

	if m.Dominance.Valid && (m.Dominance.Value < 0 || m.Dominance.Value > 1) {
		t.Errorf("Dominance out of range: %g (want 0 ≤ d ≤ 1)", m.Dominance.Value)
	}
	if m.ADRS.Valid && m.ADRS.Value < 0 {
		t.Errorf("ADRS negative: %g", m.ADRS.Value)
	}
	for name, v := range map[string]Measure{
		"Dominance":   m.Dominance,
		"ADRS":        m.ADRS,
		"Hypervolume": m.Hypervolume,
	} {
		if v.Valid && math.IsNaN(v.Value) {
			t.Errorf("%s is NaN", name)
		}
	}
}

// SameFrontier reports whether two frontier sequences hold the same points in
// the same order.
func SameFrontier(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
