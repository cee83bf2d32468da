package dseframe

// FrontierAggregator owns the global reference frontier: the union frontier
// over every enabled group's local frontier.
//
// Two update paths:
//   - OnGroupPointAccepted: a point just accepted by an enabled group's local
//     frontier is offered to the global one. This is the streaming path.
//   - RecomputeFull: rebuild from all enabled local frontiers. This is the
//     only path used when a group is enabled or disabled. Removing a group's
//     points from a merged frontier would have to resurrect points it used
//     to dominate, and those are not kept.
//
// Both paths agree: a point dominated within its own group is dominated
// globally too, so feeding only local-frontier points loses nothing.
type FrontierAggregator struct {
	global *FrontierSet
}

// NewFrontierAggregator returns an aggregator with an empty global frontier.
func NewFrontierAggregator() *FrontierAggregator {
	return &FrontierAggregator{global: NewFrontierSet()}
}

// RecomputeFull replaces the global frontier with one rebuilt from the local
// frontiers of the enabled groups, and returns it.
func (a *FrontierAggregator) RecomputeFull(groups []*Group) *FrontierSet {
	var merged []Point
	for _, g := range groups {
		if !g.Enabled {
			continue
		}
		merged = append(merged, g.frontier.points...)
	}
	a.global = RebuildFrontier(merged)
	return a.global
}

// OnGroupPointAccepted offers p to the global frontier and reports whether it
// was accepted. Callers only pass points accepted by an enabled group.
func (a *FrontierAggregator) OnGroupPointAccepted(p Point) bool {
	return a.global.Insert(p)
}

// Global returns the current global frontier. Callers must not mutate it.
func (a *FrontierAggregator) Global() *FrontierSet {
	return a.global
}

// Reset empties the global frontier.
func (a *FrontierAggregator) Reset() {
	a.global = NewFrontierSet()
}
