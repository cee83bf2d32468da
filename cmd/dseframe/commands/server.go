package commands

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexshd/dseframe"
	"github.com/alexshd/dseframe/internal/export"
)

func (m *monitor) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", m.handleStatus)
	mux.Handle("GET /metrics", m.pub.Handler())
	mux.HandleFunc("GET /chart.png", m.handleChart)
	mux.HandleFunc("POST /groups/{id}/{action}", m.handleToggle)
	return logRequests(logger, mux)
}

func (m *monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	export.WriteJSON(w, m.sess.Snapshot())
}

func (m *monitor) handleChart(w http.ResponseWriter, r *http.Request) {
	opts := export.DefaultPlotOptions()
	opts.ShowAll = r.URL.Query().Get("all") == "true"

	w.Header().Set("Content-Type", "image/png")
	err := export.RenderPNG(w, m.sess.Snapshot(), opts)
	if errors.Is(err, export.ErrNothingToPlot) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleToggle serves POST /groups/{id}/enable|disable, where id is a group
// ID or "all".
func (m *monitor) handleToggle(w http.ResponseWriter, r *http.Request) {
	var enabled bool
	switch r.PathValue("action") {
	case "enable":
		enabled = true
	case "disable":
		enabled = false
	default:
		http.NotFound(w, r)
		return
	}

	if id := r.PathValue("id"); id == "all" {
		m.sess.SetAllEnabled(enabled)
	} else {
		n, err := strconv.Atoi(id)
		if err != nil {
			http.Error(w, "group id must be an integer or \"all\"", http.StatusBadRequest)
			return
		}
		if err := m.sess.SetEnabled(dseframe.GroupID(n), enabled); err != nil {
			if errors.Is(err, dseframe.ErrUnknownGroup) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	m.publish()
	m.handleStatus(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request.
func logRequests(l *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		l.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
