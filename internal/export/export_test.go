package export

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexshd/dseframe"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func snapshot(t *testing.T, analyze bool) dseframe.Snapshot {
	t.Helper()
	s, err := dseframe.NewSession(dseframe.DefaultConfig(),
		dseframe.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	fu := dseframe.GroupKey{Method: "FU", Iteration: "1"}
	ant := dseframe.GroupKey{Method: "Ant", Iteration: "1"}
	for _, p := range []dseframe.Point{dseframe.Pt(120, 5400), dseframe.Pt(95, 6100), dseframe.Pt(130, 5600)} {
		_, err := s.Ingest(fu, p)
		require.NoError(t, err)
	}
	_, err = s.Ingest(ant, dseframe.Pt(100, 5000))
	require.NoError(t, err)

	if analyze {
		s.Analyze()
	}
	return s.Snapshot()
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	snap := snapshot(t, true)
	path := filepath.Join(t.TempDir(), "snapshot.json")

	require.NoError(t, WriteSnapshot(path, snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back dseframe.Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, snap, back)
	assert.Contains(t, string(data), `"record_policy": "abort"`)
}

func TestWriteJSON_UnavailableIsNull(t *testing.T) {
	snap := dseframe.Snapshot{
		Groups: []dseframe.GroupSnapshot{{
			Metrics: &dseframe.Metrics{
				Dominance:   dseframe.Available(0),
				ADRS:        dseframe.Unavailable,
				Hypervolume: dseframe.Unavailable,
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, snap))
	assert.Contains(t, buf.String(), `"adrs": null`)
	assert.Contains(t, buf.String(), `"dominance": 0`)
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name string
		opts PlotOptions
	}{
		{"frontiers", DefaultPlotOptions()},
		{"all points", PlotOptions{ShowAll: true, Title: "Latency vs AREA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(&buf, snapshot(t, false), tt.opts))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
		})
	}
}

func TestRenderPNG_SinglePoint(t *testing.T) {
	snap := dseframe.Snapshot{
		Config:         dseframe.DefaultConfig(),
		Bounds:         dseframe.Bounds{XMax: 3, YMax: 4},
		GlobalFrontier: []dseframe.Point{dseframe.Pt(3, 4)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, snap, DefaultPlotOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestAxisRange(t *testing.T) {
	tests := []struct {
		name             string
		lo, hi           float64
		wantMin, wantMax float64
	}{
		{"positive", 0, 6, 0, 6.3},
		{"empty", 0, 0, 0, 1},
		{"negative", -4, 0, -4.2, 0},
		{"both sides", -2, 8, -2.5, 8.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := axisRange(tt.lo, tt.hi)
			assert.InDelta(t, tt.wantMin, r.Min, 1e-9)
			assert.InDelta(t, tt.wantMax, r.Max, 1e-9)
		})
	}
}

func TestRenderPNG_NegativeObjectives(t *testing.T) {
	s, err := dseframe.NewSession(dseframe.DefaultConfig(),
		dseframe.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	for _, p := range []dseframe.Point{dseframe.Pt(-3, 2), dseframe.Pt(1, -4)} {
		_, err := s.Ingest(dseframe.GroupKey{Method: "FU", Iteration: "1"}, p)
		require.NoError(t, err)
	}
	s.Analyze()
	snap := s.Snapshot()
	require.Equal(t, dseframe.Bounds{XMin: -3, XMax: 1, YMin: -4, YMax: 2}, snap.Bounds)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, snap, DefaultPlotOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderPNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG(&buf, dseframe.Snapshot{}, DefaultPlotOptions())
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestWritePNG_NoPartialFileOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")

	require.Error(t, WritePNG(path, dseframe.Snapshot{}, DefaultPlotOptions()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, WritePNG(path, snapshot(t, true), DefaultPlotOptions()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}
