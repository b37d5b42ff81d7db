// Package server is the thin HTTP shell around the calculation pipeline:
// one POST endpoint, JSON in and out, CORS, request logging.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pv_estimator/internal/model"
	"pv_estimator/internal/weather"
)

// Calculator runs one estimation pass for a house.
type Calculator interface {
	Run(ctx context.Context, house model.House) (model.EconomicResult, error)
}

type Server struct {
	calc Calculator
	log  *logrus.Logger
}

func New(calc Calculator, log *logrus.Logger) *Server {
	return &Server{calc: calc, log: log}
}

// Routes returns the handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	mux.HandleFunc("OPTIONS /api/calculate", func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w)
		w.WriteHeader(http.StatusNoContent)
	})
	return s.logRequests(mux)
}

type calculateResponse struct {
	AnnualElProduction  float64   `json:"annual_el_production"`
	MonthlyElProduction []float64 `json:"monthly_el_production"`
	CostSavingsGGV      float64   `json:"cost_savings_GGV"`
	ProfitGridFeedIn    float64   `json:"profit_grid_feed_in"`
	PaybackPeriod       *float64  `json:"payback_period"`
	AnnualCO2Reduction  float64   `json:"annual_CO2_reduction"`
	MonthlyCO2Reduction []float64 `json:"monthly_CO2_reduction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	var house model.House
	if err := json.NewDecoder(r.Body).Decode(&house); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.calc.Run(r.Context(), house)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := calculateResponse{
		AnnualElProduction:  result.AnnualProductionKWh,
		MonthlyElProduction: result.MonthlyProductionKWh[:],
		CostSavingsGGV:      result.CostSavings,
		ProfitGridFeedIn:    result.GridFeedInProfit,
		AnnualCO2Reduction:  result.AnnualCO2ReductionKg,
		MonthlyCO2Reduction: result.MonthlyCO2ReductionKg[:],
	}
	if result.PaybackDefined {
		payback := result.PaybackYears
		resp.PaybackPeriod = &payback
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, weather.ErrNoData):
		status = http.StatusBadGateway
	}

	entry := s.log.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": status,
	})
	if status == http.StatusInternalServerError {
		entry.WithError(err).Error("calculation failed")
	} else {
		entry.WithError(err).Warn("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// logRequests wraps the handler tree with per-request structured logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.log.WithFields(logrus.Fields{
			"request_id": uuid.NewString(),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rw.status,
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
