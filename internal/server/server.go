// Package server exposes the study configuration and constrained
// potentials over a local read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/config"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/scenario"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/validation"
)

// Server is the local server for browsing scenario results.
type Server struct {
	cfg           *config.Config
	potentialsDir string
	port          int
	logger        *zap.Logger
}

// New creates a server for cfg. potentialsDir holds one <scenario>.csv
// table of constrained potentials per scenario.
func New(cfg *config.Config, potentialsDir string, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:           cfg,
		potentialsDir: potentialsDir,
		port:          port,
		logger:        logger,
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scenarios", s.handleScenarios)
	mux.HandleFunc("GET /api/scenarios/{name}", s.handleScenario)
	mux.HandleFunc("GET /api/potentials/{name}", s.handlePotentials)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server starting",
		zap.String("url", fmt.Sprintf("http://localhost%s", srv.Addr)),
		zap.String("potentials", s.potentialsDir),
	)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Electricity autarky</title></head>
<body style="margin:0;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>Electricity autarky</h1>
<p><a href="/api/scenarios">scenarios</a> &middot; <a href="/api/validation">validation</a></p>
</div>
</body></html>`)
}

type scenarioResponse struct {
	scenario.Scenario
	FactorsPreferPV   map[string]float64 `json:"scaling-factors-prefer-pv"`
	FactorsPreferWind map[string]float64 `json:"scaling-factors-prefer-wind"`
}

func factorsByName(f map[eligibility.Category]float64) map[string]float64 {
	out := make(map[string]float64, len(f))
	for c, v := range f {
		out[c.String()] = v
	}
	return out
}

func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	out := make([]scenario.Scenario, 0, len(s.cfg.Scenarios))
	for _, name := range s.cfg.Scenarios.Names() {
		sc, _ := s.cfg.Scenario(name)
		out = append(out, sc)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.cfg.Scenario(r.PathValue("name"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scenarioResponse{
		Scenario:          sc,
		FactorsPreferPV:   factorsByName(sc.Factors(true)),
		FactorsPreferWind: factorsByName(sc.Factors(false)),
	})
}

type potentialsResponse struct {
	Scenario string                `json:"scenario"`
	Columns  []string              `json:"columns"`
	Units    map[string][]*float64 `json:"units"`
	Total    float64               `json:"total"`
}

func (s *Server) handlePotentials(w http.ResponseWriter, r *http.Request) {
	sc, err := s.cfg.Scenario(r.PathValue("name"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	f, err := os.Open(filepath.Join(s.potentialsDir, sc.Name+".csv"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no potentials for scenario %s", sc.Name))
		return
	}
	defer f.Close()
	t, err := table.ReadCSV(f)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	// missing values are encoded as null
	units := make(map[string][]*float64, len(t.IDs()))
	for i, id := range t.IDs() {
		row := t.Row(i)
		values := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[j] = &row[j]
			}
		}
		units[id] = values
	}
	s.writeJSON(w, http.StatusOK, potentialsResponse{
		Scenario: sc.Name,
		Columns:  t.Columns(),
		Units:    units,
		Total:    total(t),
	})
}

func total(t *table.Table) float64 {
	sum := 0.0
	for i := range t.IDs() {
		for _, v := range t.Row(i) {
			if !math.IsNaN(v) {
				sum += v
			}
		}
	}
	return sum
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, validation.ValidateSchema(s.cfg))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
