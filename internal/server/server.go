// Package server exposes the scenario calculator over a JSON HTTP API. It
// owns every I/O concern the calculator does not: request decoding, the
// response cache, the submission recorder, and live rate table swaps.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mortgagepulse/refinance-engine/internal/cache"
	"github.com/mortgagepulse/refinance-engine/internal/recorder"
	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/scenarios"
	"github.com/mortgagepulse/refinance-engine/pkg/validation"
)

// Server handles scenario calculation requests. The active calculator is
// swappable at runtime so rate table reloads take effect without restarts.
type Server struct {
	logger         *zap.Logger
	calc           atomic.Pointer[scenarios.Calculator]
	generation     atomic.Uint64
	cache          cache.Cache
	recorder       recorder.Recorder
	version        string
	maxRequestSize int64
	mux            *http.ServeMux
}

// New constructs the HTTP server around the given calculator. A nil cache
// falls back to an in-process cache and a nil recorder to a no-op.
func New(logger *zap.Logger, calc *scenarios.Calculator, cch cache.Cache, rec recorder.Recorder,
	version string, maxRequestSize int64) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cch == nil {
		cch = cache.NewMemoryCache()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	s := &Server{
		logger:         logger,
		cache:          cch,
		recorder:       rec,
		version:        trimmedVersion,
		maxRequestSize: maxRequestSize,
	}
	s.calc.Store(calc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/rates", s.handleRates)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.mux = mux

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// UpdateCalculator swaps in a new calculator (e.g. after a rate table
// reload). Cached responses from the previous table stop being served.
func (s *Server) UpdateCalculator(calc *scenarios.Calculator) {
	s.calc.Store(calc)
	s.generation.Add(1)

	if err := s.recorder.RecordEvent(&recorder.Event{Name: "rates_reloaded"}); err != nil {
		s.logger.Warn("failed to record rates reload event",
			zap.String("op", "server.UpdateCalculator"),
			zap.Error(err),
		)
	}
	s.logger.Info("calculator updated",
		zap.String("op", "server.UpdateCalculator"),
		zap.Uint64("generation", s.generation.Load()),
	)
}

func (s *Server) calculator() *scenarios.Calculator {
	return s.calc.Load()
}

type scenarioResponse struct {
	scenarios.Result
	BlendedRate float64 `json:"blendedRate"`
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestSize)

	var input scenarios.LoanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode loan input: %v", err), "server.handleScenarios")
		return
	}

	key := s.cacheKey(input)
	if payload, ok := s.cache.Get(r.Context(), key); ok {
		s.writeJSONPayload(w, http.StatusOK, []byte(payload))
		return
	}

	calc := s.calculator()
	result := calc.Calculate(input)

	response := scenarioResponse{
		Result:      result,
		BlendedRate: calc.BlendedRate(input),
	}
	payload, err := json.Marshal(response)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to encode result: %v", err), "server.handleScenarios")
		return
	}

	if err := s.recorder.RecordSubmission(&recorder.Submission{Input: input, Result: result}); err != nil {
		s.logger.Warn("failed to record submission",
			zap.String("op", "server.handleScenarios"),
			zap.Error(err),
		)
	}
	if err := s.cache.Set(r.Context(), key, string(payload)); err != nil {
		s.logger.Warn("failed to cache response",
			zap.String("op", "server.handleScenarios"),
			zap.Error(err),
		)
	}

	s.logger.Info("scenarios computed",
		zap.String("op", "server.handleScenarios"),
		zap.String("specialCase", string(result.SpecialCase)),
		zap.Bool("hasValidScenarios", result.HasValidScenarios),
		zap.Duration("duration", time.Since(start)),
	)

	s.writeJSONPayload(w, http.StatusOK, payload)
}

// cacheKey canonicalizes the input; the generation prefix retires entries
// computed against a previous rate table.
func (s *Server) cacheKey(input scenarios.LoanInput) string {
	return fmt.Sprintf("scenarios:%d:%.2f:%.2f:%.2f:%.2f:%d:%.2f",
		s.generation.Load(),
		input.MortgageBalance, input.OtherLoansBalance,
		input.CurrentMortgagePayment, input.CurrentOtherLoansPayment,
		input.Age, input.PropertyValue,
	)
}

type validateRequest struct {
	TotalBalance   float64 `json:"totalBalance"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TermYears      int     `json:"termYears"`
	Age            int     `json:"age,omitempty"`
	PropertyValue  float64 `json:"propertyValue,omitempty"`
}

type validateResponse struct {
	IsValid        bool     `json:"isValid"`
	Violations     []string `json:"violations,omitempty"`
	MaxAllowedTerm int      `json:"maxAllowedTerm"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestSize)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode loan parameters: %v", err), "server.handleValidate")
		return
	}

	result := validation.ValidateLoanParams(s.calculator().Regulations(), validation.LoanParams{
		TotalBalance:   req.TotalBalance,
		MonthlyPayment: req.MonthlyPayment,
		TermYears:      req.TermYears,
		Age:            req.Age,
		PropertyValue:  req.PropertyValue,
	})

	s.writeJSON(w, http.StatusOK, validateResponse{
		IsValid:        result.IsValid,
		Violations:     result.Violations,
		MaxAllowedTerm: result.MaxAllowedTerm,
	})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	params := s.calculator().RateParameters()

	if r.URL.Query().Get("format") == "yaml" {
		data, err := yaml.Marshal(params)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError,
				fmt.Sprintf("failed to encode rate table: %v", err), "server.handleRates")
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.logger.Error("failed to write YAML response",
				zap.String("op", "server.handleRates"),
				zap.Error(err),
			)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, params)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string, op string) {
	s.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (s *Server) writeJSONPayload(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		s.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
