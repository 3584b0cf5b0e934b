package sunservice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ry111/foundation/internal/version"
)

type homeResponse struct {
	Service string `json:"service"`
	Message string `json:"message"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type infoResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, homeResponse{
		Service: s.name,
		Message: fmt.Sprintf("Welcome to the %s service", s.name),
		Version: version.GetVersion().Version,
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	s.writeJSON(w, healthResponse{
		Status:    "healthy",
		Service:   s.name,
		Timestamp: s.nowFn().UTC().Format(time.RFC3339),
	})
}

func (s *Server) info(w http.ResponseWriter, _ *http.Request) {
	hostname, err := s.hostnameFn()
	if err != nil {
		hostname = "unknown"
	}
	s.writeJSON(w, infoResponse{
		Service:     s.name,
		Version:     version.GetVersion().Version,
		Hostname:    hostname,
		Environment: s.cfg.Environment,
		Timestamp:   s.nowFn().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("error writing response", zap.Error(err))
	}
}
