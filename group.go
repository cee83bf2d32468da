package dseframe

import "fmt"

// GroupKey identifies the exploration run that produced a point.
type GroupKey struct {
	Method    string `json:"method" yaml:"method"`
	Iteration string `json:"iteration" yaml:"iteration"`
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s", k.Method, k.Iteration)
}

// GroupID is the creation ordinal of a group within a session, starting at 0.
//
// Keys are not unique across a session: a key that reappears after a different
// key starts a new group, so groups are addressed by ID.
type GroupID int

// Group owns one method-group's raw points and its local frontier.
type Group struct {
	ID      GroupID
	Key     GroupKey
	Enabled bool

	points   []Point // arrival order
	frontier *FrontierSet
}

func newGroup(id GroupID, key GroupKey) *Group {
	return &Group{
		ID:       id,
		Key:      key,
		Enabled:  true,
		frontier: NewFrontierSet(),
	}
}

// add appends p and offers it to the local frontier.
func (g *Group) add(p Point) bool {
	g.points = append(g.points, p)
	return g.frontier.Insert(p)
}

// Points returns a copy of every point observed for the group, in arrival order.
func (g *Group) Points() []Point {
	out := make([]Point, len(g.points))
	copy(out, g.points)
	return out
}

// Frontier returns a copy of the group's local frontier.
func (g *Group) Frontier() []Point {
	return g.frontier.Points()
}
