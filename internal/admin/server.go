// Package admin exposes the operational HTTP surface: health, metrics, and
// the read-only views operators use to inspect users and the message audit
// file.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grafamedia/keuangan-bot/internal/health"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/pkg/logger"
)

// Server bundles the admin endpoints behind one handler.
type Server struct {
	store   ledger.Store
	checker *health.Checker
	logPath string
	log     *slog.Logger
}

func NewServer(store ledger.Store, checker *health.Checker, logPath string, log *slog.Logger) *Server {
	return &Server{
		store:   store,
		checker: checker,
		logPath: logPath,
		log:     log,
	}
}

// Handler builds the admin mux. Every request gets a correlation id.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/users", s.handleUsers)
	mux.HandleFunc("/logs", s.handleLogs)

	return logger.Middleware(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	results := s.checker.Check(r.Context())

	status := http.StatusOK
	for _, state := range results {
		if state != "OK" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(results); err != nil {
		s.log.Error("encode healthz response failed", slog.Any("error", err))
	}
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.log.Error("list users failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(users); err != nil {
		s.log.Error("encode users response failed", slog.Any("error", err))
	}
}

// handleLogs serves the raw audit file. It only reads the configured path,
// never a client-supplied one.
func (s *Server) handleLogs(w http.ResponseWriter, _ *http.Request) {
	if s.logPath == "" {
		http.Error(w, "file log is not enabled", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(s.logPath)
	if err != nil {
		s.log.Error("read message log failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}
