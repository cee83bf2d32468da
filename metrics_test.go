package dseframe

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
)

const tolerance = 1e-12

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// reference frontier of the two-group example: A = [(1,5),(4,1)], B = [(2,3),(3,2)]
var (
	refAB  = []Point{Pt(1, 5), Pt(2, 3), Pt(3, 2), Pt(4, 1)}
	localA = []Point{Pt(1, 5), Pt(4, 1)}
	localB = []Point{Pt(2, 3), Pt(3, 2)}
)

func TestDominance_SharedShareOfReference(t *testing.T) {
	tests := []struct {
		name  string
		local []Point
		want  float64
	}{
		{"group A", localA, 0.5},
		{"group B", localB, 0.5},
		{"identical", refAB, 1.0},
		{"one shared", []Point{Pt(2, 3), Pt(5, 0.5)}, 0.25},
		{"disjoint", []Point{Pt(10, 10)}, 0.0},
	}

	for _, tt := range tests {
		got := Dominance(tt.local, refAB)
		if !got.Valid {
			t.Errorf("%s: Dominance unavailable", tt.name)
			continue
		}
		if !approx(got.Value, tt.want) {
			t.Errorf("%s: Dominance = %g, want %g", tt.name, got.Value, tt.want)
		}
	}
}

func TestADRS_TwoGroupExample(t *testing.T) {
	sqrt := math.Sqrt

	// A sits on R, so only the reverse pass contributes: (2,3) and (3,2) are
	// √5 and √2 away from A, both normalized by √13.
	wantA := ((sqrt(5) + sqrt(2)) / sqrt(13) / 4) / 2

	// B misses (1,5) by √5 (norm √26) and (4,1) by √2 (norm √17).
	wantB := ((sqrt(5)/sqrt(26) + sqrt(2)/sqrt(17)) / 4) / 2

	if got := ADRS(localA, refAB); !got.Valid || !approx(got.Value, wantA) {
		t.Errorf("ADRS(A) = %+v, want %g", got, wantA)
	}
	if got := ADRS(localB, refAB); !got.Valid || !approx(got.Value, wantB) {
		t.Errorf("ADRS(B) = %+v, want %g", got, wantB)
	}

	t.Logf("✓ ADRS(A) = %.6f, ADRS(B) = %.6f", wantA, wantB)
}

func TestADRS_NearestPointTieKeepsFirst(t *testing.T) {
	// (1,0) is 3 away from both (1,3) and (4,0); their norms differ.
	local := []Point{Pt(1, 0)}
	reference := []Point{Pt(1, 3), Pt(4, 0)}

	forward := 3 / math.Sqrt(10) // normalized by the first candidate, (1,3)
	reverse := (3/math.Sqrt(10) + 3.0/4.0) / 2
	want := (forward + reverse) / 2

	got := ADRS(local, reference)
	if !got.Valid || !approx(got.Value, want) {
		t.Errorf("ADRS = %+v, want %g (first nearest point in X order)", got, want)
	}
}

func TestADRS_ReferenceAtOriginUnavailable(t *testing.T) {
	got := ADRS([]Point{Pt(1, 1)}, []Point{Pt(0, 0)})
	if got.Valid {
		t.Errorf("ADRS with a zero-norm reference point must be unavailable, got %g", got.Value)
	}
}

func TestHypervolume_TwoGroupExample(t *testing.T) {
	// A: numerator = 0 + ½·3·6 = 9; denominator = 0 + 1.5 + 2.5 + 4 = 8
	if got := Hypervolume(localA, refAB); !got.Valid || !approx(got.Value, 9.0/8.0) {
		t.Errorf("Hypervolume(A) = %+v, want %g", got, 9.0/8.0)
	}

	// B: numerator = ½·1·8 + ½·1·5 = 6.5; denominator = ½·1·3 + 8 = 9.5
	if got := Hypervolume(localB, refAB); !got.Valid || !approx(got.Value, 6.5/9.5) {
		t.Errorf("Hypervolume(B) = %+v, want %g", got, 6.5/9.5)
	}
}

func TestHypervolume_LocalStartsLeftOfReference(t *testing.T) {
	// L₀.x < R₀.x makes the first anchor negative. The value is reported as
	// computed, not clamped.
	local := []Point{Pt(1, 5)}
	reference := []Point{Pt(2, 4), Pt(4, 2)}

	got := Hypervolume(local, reference)
	want := -4.5 / 16.5

	if !got.Valid || !approx(got.Value, want) {
		t.Errorf("Hypervolume = %+v, want %g", got, want)
	}
	if got.Value >= 0 {
		t.Errorf("Expected a negative hypervolume, got %g", got.Value)
	}
}

func TestHypervolume_NeedsTwoReferencePoints(t *testing.T) {
	if got := Hypervolume([]Point{Pt(1, 1)}, []Point{Pt(1, 1)}); got.Valid {
		t.Errorf("Hypervolume with |R| = 1 must be unavailable, got %g", got.Value)
	}
}

func TestMetrics_IdenticalFrontiers(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 20; trial++ {
		var points []Point
		for i := 0; i < 50; i++ {
			points = append(points, Pt(1+rng.Float64()*100, 1+rng.Float64()*100))
		}
		r := RebuildFrontier(points).Points()
		if len(r) < 2 {
			continue
		}

		m := ComputeMetrics(r, r)
		AssertMetricsSane(t, m)

		if !approx(m.Dominance.Value, 1) {
			t.Errorf("Dominance(R, R) = %g, want 1", m.Dominance.Value)
		}
		if !approx(m.ADRS.Value, 0) {
			t.Errorf("ADRS(R, R) = %g, want 0", m.ADRS.Value)
		}
		if math.Abs(m.Hypervolume.Value-1) > 1e-9 {
			t.Errorf("Hypervolume(R, R) = %g, want 1", m.Hypervolume.Value)
		}
	}
}

func TestMetrics_EmptyFrontiersUnavailable(t *testing.T) {
	cases := []struct {
		name             string
		local, reference []Point
	}{
		{"empty local", nil, refAB},
		{"empty reference", localA, nil},
		{"both empty", nil, nil},
	}

	for _, c := range cases {
		m := ComputeMetrics(c.local, c.reference)
		if m.Dominance.Valid || m.ADRS.Valid || m.Hypervolume.Valid {
			t.Errorf("%s: expected every indicator unavailable, got %+v", c.name, m)
		}
	}
}

func TestMetrics_SubsetsOfGlobalFrontier(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 30; trial++ {
		groups := make([]*Group, 3)
		for i := range groups {
			groups[i] = newGroup(GroupID(i), GroupKey{Method: "M"})
			for n := 0; n < 40; n++ {
				groups[i].add(Pt(1+float64(rng.Intn(50)), 1+float64(rng.Intn(50))))
			}
		}
		reference := NewFrontierAggregator().RecomputeFull(groups).Points()

		total := 0.0
		for _, g := range groups {
			m := ComputeMetrics(g.Frontier(), reference)
			AssertMetricsSane(t, m)
			total += m.Dominance.Value
		}

		// Every reference point comes from exactly one group's frontier, unless
		// two groups found the same point.
		if total < 1-tolerance {
			t.Errorf("Dominance over all groups sums to %g, want ≥ 1", total)
		}
	}
}

func TestMeasure_JSON(t *testing.T) {
	m := Metrics{Dominance: Available(0.25), ADRS: Unavailable, Hypervolume: Available(1)}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"dominance":0.25,"adrs":null,"hypervolume":1}`
	if string(b) != want {
		t.Errorf("JSON = %s, want %s", b, want)
	}

	var back Metrics
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != m {
		t.Errorf("Round trip = %+v, want %+v", back, m)
	}
}

func TestMeasure_Percent(t *testing.T) {
	if got := Available(0.123456).Percent(); got != "12.3456%" {
		t.Errorf("Percent = %q", got)
	}
	if got := Unavailable.Percent(); got != "n/a" {
		t.Errorf("Percent = %q", got)
	}
}
