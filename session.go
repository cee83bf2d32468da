package dseframe

import (
	"fmt"
	"log/slog"
	"sync"
)

// State is the session's position in the ingest/analyze cycle.
type State string

const (
	StateIdle      State = "IDLE"      // Nothing ingested since creation or reset
	StateIngesting State = "INGESTING" // Data changed since the last analysis
	StateAnalyzed  State = "ANALYZED"  // Metrics reflect the current data
)

// Bounds is the smallest box holding the origin and every objective value
// ingested so far.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Session orchestrates groups, the global frontier and metrics for one
// exploration result set.
//
// Lifecycle:
//
//	IDLE ──Ingest──▶ INGESTING ──Analyze──▶ ANALYZED
//	  ▲                  ▲                      │
//	  │                  └──Ingest/SetEnabled───┘
//	  └──────────────────────Reset──────────────────
//
// Every mutation holds the write lock for its whole call, so frontier updates
// never interleave. Reads hold the read lock and return copies; they may run
// concurrently with each other.
//
// Example:
//
//	s, _ := NewSession(DefaultConfig())
//	s.Ingest(GroupKey{"FU", "1"}, Pt(1, 5))
//	s.Ingest(GroupKey{"FU", "1"}, Pt(4, 1))
//	s.Ingest(GroupKey{"Pragma", "1"}, Pt(2, 3))
//
//	for id, m := range s.Analyze() {
//	    fmt.Println(id, m.Dominance.Percent(), m.ADRS.Percent())
//	}
type Session struct {
	mu sync.RWMutex

	cfg    Config
	logger *slog.Logger

	state      State
	groups     []*Group
	lastKey    GroupKey
	aggregator *FrontierAggregator
	metrics    map[GroupID]Metrics
	bounds     Bounds
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates an idle session for the given configuration.
func NewSession(cfg Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:        cfg,
		logger:     slog.Default(),
		state:      StateIdle,
		aggregator: NewFrontierAggregator(),
		metrics:    make(map[GroupID]Metrics),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest records p for the group identified by key.
//
// A new group starts when key differs from the key of the previous call, or on
// the first call. p goes to the group's raw points and local frontier; if the
// local frontier accepts it and the group is enabled, it is offered to the
// global frontier.
//
// Non-finite points are rejected with ErrInvalidPoint before any state change.
func (s *Session) Ingest(key GroupKey, p Point) (GroupID, error) {
	if !p.Valid() {
		return -1, fmt.Errorf("%w: %s for %s", ErrInvalidPoint, p, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.groups) == 0 || key != s.lastKey {
		g := newGroup(GroupID(len(s.groups)), key)
		s.groups = append(s.groups, g)
		s.lastKey = key
		s.logger.Debug("group started", "group", g.ID, "key", key.String())
	}
	g := s.groups[len(s.groups)-1]

	if g.add(p) && g.Enabled {
		s.aggregator.OnGroupPointAccepted(p)
	}

	s.bounds.XMin = min(s.bounds.XMin, p.X)
	s.bounds.XMax = max(s.bounds.XMax, p.X)
	s.bounds.YMin = min(s.bounds.YMin, p.Y)
	s.bounds.YMax = max(s.bounds.YMax, p.Y)
	s.state = StateIngesting

	return g.ID, nil
}

// SetEnabled enables or disables one group and rebuilds the global frontier
// from the enabled groups.
func (s *Session) SetEnabled(id GroupID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(id)
	if err != nil {
		return err
	}

	g.Enabled = enabled
	if !enabled {
		delete(s.metrics, id)
	}
	s.aggregator.RecomputeFull(s.groups)
	s.markDirty()

	s.logger.Info("group toggled",
		"group", id,
		"key", g.Key.String(),
		"enabled", enabled,
		"global_frontier", s.aggregator.Global().Len(),
	)
	return nil
}

// SetAllEnabled enables or disables every group with a single rebuild.
func (s *Session) SetAllEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		g.Enabled = enabled
	}
	if !enabled {
		s.metrics = make(map[GroupID]Metrics)
	}
	s.aggregator.RecomputeFull(s.groups)
	s.markDirty()

	s.logger.Info("all groups toggled", "groups", len(s.groups), "enabled", enabled)
}

// Analyze computes metrics for every enabled group against the global
// frontier. Disabled groups have their metrics cleared and are absent from
// the result.
func (s *Session) Analyze() map[GroupID]Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	reference := s.aggregator.Global().points
	s.metrics = make(map[GroupID]Metrics, len(s.groups))
	for _, g := range s.groups {
		if !g.Enabled {
			continue
		}
		s.metrics[g.ID] = ComputeMetrics(g.frontier.points, reference)
	}

	if len(s.groups) > 0 {
		s.state = StateAnalyzed
	}

	s.logger.Debug("session analyzed",
		"groups", len(s.groups),
		"analyzed", len(s.metrics),
		"global_frontier", len(reference),
	)

	out := make(map[GroupID]Metrics, len(s.metrics))
	for id, m := range s.metrics {
		out[id] = m
	}
	return out
}

// Reset clears all groups, frontiers and derived state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Reconfigure validates cfg, installs it and resets the session. The caller
// re-ingests its data under the new objective selection.
func (s *Session) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.reset()
	s.logger.Info("session reconfigured", "x_var", cfg.XVar, "y_var", cfg.YVar, "record_policy", cfg.RecordPolicy.String())
	return nil
}

func (s *Session) reset() {
	s.groups = nil
	s.lastKey = GroupKey{}
	s.aggregator.Reset()
	s.metrics = make(map[GroupID]Metrics)
	s.bounds = Bounds{}
	s.state = StateIdle
}

func (s *Session) markDirty() {
	if len(s.groups) > 0 {
		s.state = StateIngesting
	}
}

func (s *Session) group(id GroupID) (*Group, error) {
	if id < 0 || int(id) >= len(s.groups) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	return s.groups[id], nil
}

// Config returns the active configuration.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// GlobalFrontier returns a copy of the global reference frontier.
func (s *Session) GlobalFrontier() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregator.Global().Points()
}

// Len returns the number of groups.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}

// CheckState derives the check-all state from the groups' enabled flags.
func (s *Session) CheckState() CheckState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkState()
}

func (s *Session) checkState() CheckState {
	enabled := make([]bool, len(s.groups))
	for i, g := range s.groups {
		enabled[i] = g.Enabled
	}
	return DeriveCheckState(enabled)
}

// GroupSnapshot is a read-only copy of one group.
type GroupSnapshot struct {
	ID       GroupID  `json:"id"`
	Key      GroupKey `json:"key"`
	Enabled  bool     `json:"enabled"`
	Points   []Point  `json:"points"`
	Frontier []Point  `json:"frontier"`

	// Metrics is the result of the last Analyze: nil before the first one and
	// while the group is disabled. While the snapshot's State is
	// StateIngesting the values were computed against an earlier reference
	// frontier and are stale until the next Analyze.
	Metrics *Metrics `json:"metrics,omitempty"`
}

// Snapshot is a read-only copy of everything the rendering and export side
// consumes.
type Snapshot struct {
	State          State           `json:"state"`
	Config         Config          `json:"config"`
	Bounds         Bounds          `json:"bounds"`
	CheckState     CheckState      `json:"check_state"`
	GlobalFrontier []Point         `json:"global_frontier"`
	Groups         []GroupSnapshot `json:"groups"`
}

// Group returns a snapshot of one group.
func (s *Session) Group(id GroupID) (GroupSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(id)
	if err != nil {
		return GroupSnapshot{}, err
	}
	return s.groupSnapshot(g), nil
}

// Groups returns snapshots of every group in creation order.
func (s *Session) Groups() []GroupSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupSnapshots()
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		State:          s.state,
		Config:         s.cfg,
		Bounds:         s.bounds,
		CheckState:     s.checkState(),
		GlobalFrontier: s.aggregator.Global().Points(),
		Groups:         s.groupSnapshots(),
	}
}

func (s *Session) groupSnapshots() []GroupSnapshot {
	out := make([]GroupSnapshot, len(s.groups))
	for i, g := range s.groups {
		out[i] = s.groupSnapshot(g)
	}
	return out
}

func (s *Session) groupSnapshot(g *Group) GroupSnapshot {
	gs := GroupSnapshot{
		ID:       g.ID,
		Key:      g.Key,
		Enabled:  g.Enabled,
		Points:   g.Points(),
		Frontier: g.Frontier(),
	}
	if m, ok := s.metrics[g.ID]; ok && g.Enabled {
		gs.Metrics = &m
	}
	return gs
}
