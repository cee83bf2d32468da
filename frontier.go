package dseframe

// FrontierSet maintains the non-dominated subset of every point offered to it.
//
// THE MONOTONE FRONTIER:
//
// Under minimization of both objectives, a set with no dominated member is a
// staircase:
//   - X strictly increasing
//   - Y strictly decreasing
//
// Any point left of a member with a lower Y would dominate it, so the order is
// forced. Insertion only has to find the slot by X, check the neighbour on the
// left, and drop the run of members on the right that the new point now
// dominates.
//
// Example:
//
//	f := NewFrontierSet()
//	f.Insert(Pt(1, 5)) // true
//	f.Insert(Pt(2, 3)) // true
//	f.Insert(Pt(3, 4)) // false, (2,3) dominates it
//	f.Insert(Pt(4, 1)) // true
//	f.Points()         // [(1,5) (2,3) (4,1)]
//
// A FrontierSet is not safe for concurrent mutation. Session owns its sets and
// serializes access.
type FrontierSet struct {
	points []Point // ascending X, descending Y
}

// NewFrontierSet returns an empty frontier.
func NewFrontierSet() *FrontierSet {
	return &FrontierSet{}
}

// RebuildFrontier builds a frontier from scratch by inserting points in order.
//
// This is the ground truth for incremental maintenance: any sequence of Insert
// calls over the same points yields the same final set.
func RebuildFrontier(points []Point) *FrontierSet {
	f := &FrontierSet{points: make([]Point, 0, len(points))}
	for _, p := range points {
		f.Insert(p)
	}
	return f
}

// Insert offers p to the frontier and reports whether it was accepted.
//
// p is rejected when a member with X <= p.X already has Y <= p.Y, which covers
// an exact duplicate: the earlier point wins. On acceptance p is placed before
// the first member with X >= p.X, and the members after it with Y >= p.Y are
// removed. Removal stops at the first member with a strictly smaller Y since
// every later member is lower still.
//
// O(n) time, no allocation beyond slice growth.
func (f *FrontierSet) Insert(p Point) bool {
	i := 0
	for ; i < len(f.points); i++ {
		q := f.points[i]
		if p.Y >= q.Y && p.X >= q.X {
			return false
		}
		if p.X <= q.X {
			break
		}
	}

	f.points = append(f.points, Point{})
	copy(f.points[i+1:], f.points[i:])
	f.points[i] = p

	j := i + 1
	for j < len(f.points) && f.points[j].Y >= p.Y {
		j++
	}
	if j > i+1 {
		f.points = append(f.points[:i+1], f.points[j:]...)
	}
	return true
}

// Points returns a copy of the frontier in ascending X order.
func (f *FrontierSet) Points() []Point {
	out := make([]Point, len(f.points))
	copy(out, f.points)
	return out
}

// Len returns the number of points on the frontier.
func (f *FrontierSet) Len() int {
	return len(f.points)
}

// Contains reports whether p is a member, by exact value.
func (f *FrontierSet) Contains(p Point) bool {
	for _, q := range f.points {
		if q == p {
			return true
		}
		if q.X > p.X {
			return false
		}
	}
	return false
}

// Clone returns an independent copy.
func (f *FrontierSet) Clone() *FrontierSet {
	return &FrontierSet{points: f.Points()}
}

// Reset empties the frontier, keeping its capacity.
func (f *FrontierSet) Reset() {
	f.points = f.points[:0]
}
