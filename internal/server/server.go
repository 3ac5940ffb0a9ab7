// Package server wires the HTTP surface: the daily-brief and company-research
// endpoints plus the Zoho Creator glue, with permissive CORS for the Creator
// widgets that call it from the browser.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/paintedrobot/opsrelay/internal/brief"
	"github.com/paintedrobot/opsrelay/internal/config"
	"github.com/paintedrobot/opsrelay/internal/research"
	"github.com/paintedrobot/opsrelay/internal/zoho"
)

// BriefRunner executes a daily-brief job to completion, including result
// delivery. Implemented by *brief.Service.
type BriefRunner interface {
	Run(job brief.Job)
}

// Researcher runs one company-research call. Implemented by *research.Service.
type Researcher interface {
	Research(ctx context.Context, apiKey string, seed any, opts research.Options) (*research.Result, error)
}

// ZohoAPI is the Creator surface the handlers proxy. Implemented by
// *zoho.Client.
type ZohoAPI interface {
	Report(ctx context.Context, report, criteria string) (map[string]any, error)
	ExchangeCode(ctx context.Context, code string) (*zoho.TokenGrant, error)
	AuthCodeURL() string
	Health() zoho.Health
}

// Deps carries everything the handlers need.
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Brief    BriefRunner
	Research Researcher
	Zoho     ZohoAPI
}

type Server struct {
	deps Deps

	// spawn launches the background brief worker. Tests replace it with a
	// synchronous version.
	spawn func(func())
}

func New(deps Deps) *Server {
	return &Server{
		deps:  deps,
		spawn: func(job func()) { go job() },
	}
}

// Handler builds the route table and wraps it with the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /validation_ai", s.handleValidationAI)
	mux.HandleFunc("POST /daily_brief", s.handleDailyBrief)

	mux.HandleFunc("GET /api/zoho/reports/{report}", s.handleZohoReport)
	mux.HandleFunc("GET /api/zoho/health", s.handleZohoHealth)
	mux.HandleFunc("GET /api/zoho/auth-url", s.handleZohoAuthURL)
	mux.HandleFunc("POST /api/zoho/generate-refresh-token", s.handleZohoGenerateRefreshToken)
	mux.HandleFunc("GET /api/zoho/callback", s.handleZohoCallback)

	return withCORS(mux)
}

// withCORS adds wildcard CORS headers to every response and answers OPTIONS
// preflights directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		h.Set("Access-Control-Allow-Methods", "GET,PUT,POST,DELETE,OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeBody reads the request body as a JSON object. Malformed or absent
// bodies decode to an empty map; the handlers report specific missing fields
// instead of a generic parse error.
func decodeBody(r *http.Request) map[string]any {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		return map[string]any{}
	}
	return payload
}

// secondsOr interprets a payload value as a whole number of seconds. JSON
// numbers and numeric strings both count; anything else yields the fallback.
func secondsOr(v any, fallback time.Duration) time.Duration {
	switch n := v.(type) {
	case float64:
		return time.Duration(n) * time.Second
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}
