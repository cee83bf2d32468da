package dseframe

import (
	"encoding/json"
	"fmt"
)

// Measure is a quality indicator that may be unavailable.
//
// Unavailable is a result, not an error: an empty group or an all-disabled
// session is a valid steady state.
type Measure struct {
	Value float64
	Valid bool
}

// Available wraps v as a valid Measure.
func Available(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// Unavailable is the "not available" Measure.
var Unavailable = Measure{}

// MarshalJSON encodes an unavailable Measure as null.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts null or a number.
func (m *Measure) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Unavailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	*m = Available(v)
	return nil
}

// Percent formats the measure the way the explorer tree shows it.
func (m Measure) Percent() string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f%%", m.Value*100.0)
}

// Metrics holds the three comparative indicators for one group.
type Metrics struct {
	Dominance   Measure `json:"dominance"`
	ADRS        Measure `json:"adrs"`
	Hypervolume Measure `json:"hypervolume"`
}

// ComputeMetrics evaluates a group's local frontier L against the reference
// frontier R. Both must be frontier sequences (ascending X).
//
// If L or R is empty every indicator is unavailable.
func ComputeMetrics(local, reference []Point) Metrics {
	return Metrics{
		Dominance:   Dominance(local, reference),
		ADRS:        ADRS(local, reference),
		Hypervolume: Hypervolume(local, reference),
	}
}

// Dominance is the share of the reference frontier contributed by the group:
//
//	Dominance = |{p ∈ L : p ∈ R}| / |R|
//
// Membership is exact equality. Frontier points are copied values, never
// recomputed, so float comparison is structural here.
//
// Range: 0 ≤ Dominance ≤ 1.
func Dominance(local, reference []Point) Measure {
	if len(local) == 0 || len(reference) == 0 {
		return Unavailable
	}

	shared := 0
	for _, p := range local {
		for _, q := range reference {
			if p == q {
				shared++
				break
			}
		}
	}

	return Available(float64(shared) / float64(len(reference)))
}

// ADRS is the Average Distance from Reference Set, averaged in both
// directions:
//
//	adrs1 = (1/|L|) Σ_{p∈L} d(p, q*) / |q*|,   q* = argmin_{q∈R} d(p, q)
//	adrs2 = (1/|R|) Σ_{q∈R} min_{p∈L} d(p, q) / |q|
//	ADRS  = (adrs1 + adrs2) / 2
//
// Distances are Euclidean and each is normalized by the reference point's
// distance from the origin. The nearest-point search keeps the first minimum
// in ascending X order.
//
// ADRS = 0 when L and R are the same set. A reference point at the origin
// would divide by zero, so ADRS is unavailable in that case.
func ADRS(local, reference []Point) Measure {
	if len(local) == 0 || len(reference) == 0 {
		return Unavailable
	}

	norms := make([]float64, len(reference))
	for i, q := range reference {
		norms[i] = q.Norm()
		if norms[i] == 0 {
			return Unavailable
		}
	}

	var adrs1 float64
	for _, p := range local {
		nearest := 0
		minDist := p.Distance(reference[0])
		for j := 1; j < len(reference); j++ {
			if d := p.Distance(reference[j]); d < minDist {
				minDist = d
				nearest = j
			}
		}
		adrs1 += minDist / norms[nearest]
	}
	adrs1 /= float64(len(local))

	var adrs2 float64
	for i, q := range reference {
		minDist := q.Distance(local[0])
		for j := 1; j < len(local); j++ {
			if d := q.Distance(local[j]); d < minDist {
				minDist = d
			}
		}
		adrs2 += minDist / norms[i]
	}
	adrs2 /= float64(len(reference))

	return Available((adrs1 + adrs2) / 2)
}

// Hypervolume compares the area under the group's trade-off curve with the
// area under the reference curve, using the trapezoidal rule:
//
//	numerator   = ½(L₀.x − R₀.x)(L₀.y + R₀.y)
//	            + Σ_{i≥1} ½(Lᵢ.x − Lᵢ₋₁.x)(Lᵢ.y + Lᵢ₋₁.y)
//	denominator = ½(Rₙ.x − Lₘ.x)(Rₙ.y + Lₘ.y)
//	            + Σ_{i=n−1..0} ½(Rᵢ₊₁.x − Rᵢ.x)(Rᵢ₊₁.y + Rᵢ.y)
//
// The anchor terms tie the ends of L to the ends of R. With L = R both anchors
// vanish and Hypervolume = 1.
//
// Requires |L| ≥ 1 and |R| ≥ 2. The trapezoids are signed: if L starts left of
// R (L₀.x < R₀.x) the first anchor is negative and the result is reported as
// computed.
func Hypervolume(local, reference []Point) Measure {
	if len(local) == 0 || len(reference) < 2 {
		return Unavailable
	}

	first, last := local[0], local[len(local)-1]
	rFirst, rLast := reference[0], reference[len(reference)-1]

	numerator := 0.5 * (first.X - rFirst.X) * (first.Y + rFirst.Y)
	for i := 1; i < len(local); i++ {
		numerator += trapezoid(local[i-1], local[i])
	}

	denominator := 0.5 * (rLast.X - last.X) * (rLast.Y + last.Y)
	for i := len(reference) - 2; i >= 0; i-- {
		denominator += trapezoid(reference[i], reference[i+1])
	}

	if denominator == 0 {
		return Unavailable
	}

	return Available(numerator / denominator)
}

// trapezoid returns the signed area under the segment a→b.
func trapezoid(a, b Point) float64 {
	return 0.5 * (b.X - a.X) * (b.Y + a.Y)
}
