// Package brief turns a day's timesheet payload into a daily brief: a
// structured summary plus an HTML (and Markdown) rendition, generated by two
// chained Anthropic calls running in a background worker. The HTTP handler
// answers 202 immediately; the finished result is delivered to a callback URL.
package brief

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/paintedrobot/opsrelay/core/client"
	"github.com/paintedrobot/opsrelay/core/client/middleware"
	"github.com/paintedrobot/opsrelay/core/extract"
	"github.com/paintedrobot/opsrelay/internal/callback"
	"github.com/paintedrobot/opsrelay/internal/utils"
	"github.com/paintedrobot/opsrelay/providers/llm/anthropic"
)

const (
	// connectTimeout and readTimeout mirror the upstream API's expected
	// latency: connections fail fast, completions may take minutes.
	connectTimeout = 60 * time.Second
	readTimeout    = 300 * time.Second

	// workerCeiling is the hard upper bound on a whole background job,
	// independent of the HTTP request that spawned it.
	workerCeiling = 15 * time.Minute
)

// Job carries the validated inputs of one daily-brief run. Payload is the
// request body already stripped of credentials and the callback URL, and
// already transformed.
type Job struct {
	ID          string
	Payload     map[string]any
	APIKey      string
	CallbackURL string
}

// Service runs daily-brief jobs.
type Service struct {
	logger     *slog.Logger
	httpClient *http.Client

	// newClient builds the model client for a job's API key. Tests swap it
	// for a stub.
	newClient func(apiKey string) (*client.Client, error)
}

func NewService(logger *slog.Logger) *Service {
	s := &Service{
		logger:     logger,
		httpClient: utils.NewHTTPClient(0),
	}
	s.newClient = s.anthropicClient
	return s
}

func (s *Service) anthropicClient(apiKey string) (*client.Client, error) {
	provider := anthropic.New().
		WithAPIKey(apiKey).
		WithHTTPClient(utils.NewHTTPClient(connectTimeout))

	return client.New(provider,
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(s.logger, middleware.LogLevelStandard),
			middleware.NewTimeoutMiddleware(readTimeout),
		),
	)
}

// Run executes a job and delivers the result. It is meant to be launched in
// its own goroutine; every failure mode ends up in an error result body, and
// callback delivery failures are logged and discarded so a dead webhook never
// takes the worker down.
func (s *Service) Run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), workerCeiling)
	defer cancel()

	result := s.process(ctx, job)

	if job.CallbackURL == "" {
		s.logger.Warn("no callback URL, discarding brief result", "job_id", job.ID)
		return
	}
	if err := callback.Deliver(ctx, s.httpClient, job.CallbackURL, result); err != nil {
		s.logger.Error("brief callback delivery failed", "job_id", job.ID, "error", err.Error())
	}
}

func (s *Service) process(ctx context.Context, job Job) (result map[string]any) {
	date := job.Payload["date"]

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("brief worker panicked", "job_id", job.ID, "panic", fmt.Sprint(r))
			result = errorResult(date, "Unexpected processing error", fmt.Sprint(r))
		}
	}()

	c, err := s.newClient(job.APIKey)
	if err != nil {
		return errorResult(date, "Anthropic API request failed", err.Error())
	}

	summaryRes, err := c.Generate(ctx, summaryRequest(job.Payload))
	if err != nil {
		return errorResult(date, "Anthropic API request failed", err.Error())
	}
	summary, err := extract.Object(summaryRes.Text)
	if err != nil {
		return extractionResult(date, err, summaryRes.Text)
	}

	htmlRes, err := c.Generate(ctx, htmlRequest(summary, job.Payload))
	if err != nil {
		return errorResult(date, "Anthropic API request failed", err.Error())
	}
	htmlParsed, err := extract.Object(htmlRes.Text)
	if err != nil {
		return extractionResult(date, err, htmlRes.Text)
	}

	output := make(map[string]any, len(summary)+2)
	for k, v := range summary {
		output[k] = v
	}
	html, _ := htmlParsed["html_daily_brief"].(string)
	output["html_daily_brief"] = html
	if text := TextBrief(html); text != "" {
		output["text_daily_brief"] = text
	}

	return map[string]any{
		"status": "ok",
		"date":   date,
		"output": output,
	}
}

func errorResult(date any, message, details string) map[string]any {
	return map[string]any{
		"status":  "error",
		"date":    date,
		"message": message,
		"details": details,
	}
}

// extractionResult builds the error body for a completion that held no JSON
// object. Malformed model output cannot be diagnosed without the original
// text, so the full completion rides along in raw_output.
func extractionResult(date any, err error, raw string) map[string]any {
	result := errorResult(date, "Model output was not valid JSON object", err.Error())
	result["raw_output"] = raw
	return result
}
