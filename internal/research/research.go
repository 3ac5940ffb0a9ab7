// Package research answers company-research requests: it sends seed hints
// (name, domain, notes) to Gemini with Google Search grounding and returns
// the structured company profile extracted from the completion.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paintedrobot/opsrelay/core/client"
	"github.com/paintedrobot/opsrelay/core/client/middleware"
	"github.com/paintedrobot/opsrelay/core/extract"
	"github.com/paintedrobot/opsrelay/internal/utils"
	"github.com/paintedrobot/opsrelay/providers/llm"
	"github.com/paintedrobot/opsrelay/providers/llm/gemini"
)

const researchModel = "gemini-2.5-flash"

// Timeout bounds for the upstream call. Callers may tune both, but never
// below the floor: grounded research legitimately takes minutes.
const (
	DefaultReadTimeout    = 300 * time.Second
	MinReadTimeout        = 60 * time.Second
	DefaultConnectTimeout = 60 * time.Second
	MinConnectTimeout     = 10 * time.Second
)

// Options tunes one research call. Zero values take the defaults.
type Options struct {
	ReadTimeout    time.Duration
	ConnectTimeout time.Duration
}

func (o *Options) normalize() {
	if o.ReadTimeout == 0 {
		o.ReadTimeout = DefaultReadTimeout
	} else if o.ReadTimeout < MinReadTimeout {
		o.ReadTimeout = MinReadTimeout
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	} else if o.ConnectTimeout < MinConnectTimeout {
		o.ConnectTimeout = MinConnectTimeout
	}
}

// Result is a successful research run.
type Result struct {
	Model  string
	Output map[string]any
}

// ExtractionError reports a completion that contained no recoverable JSON
// object. Raw carries the full completion text so the caller can surface it.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("model output was not a valid JSON object: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Service runs research requests against Gemini.
type Service struct {
	logger *slog.Logger

	// newClient builds the model client for one call. Tests swap it for a
	// stub.
	newClient func(apiKey string, opts Options) (*client.Client, error)
}

func NewService(logger *slog.Logger) *Service {
	s := &Service{logger: logger}
	s.newClient = s.geminiClient
	return s
}

func (s *Service) geminiClient(apiKey string, opts Options) (*client.Client, error) {
	provider := gemini.New().
		WithAPIKey(apiKey).
		WithHTTPClient(utils.NewHTTPClient(opts.ConnectTimeout))

	// Retry once, on timeout only. Upstream errors other than a timeout are
	// surfaced immediately.
	return client.New(provider,
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(s.logger, middleware.LogLevelStandard),
			middleware.NewRetryMiddleware(middleware.RetryConfig{
				MaxRetries:     1,
				InitialBackoff: 1500 * time.Millisecond,
				RetryableFunc:  middleware.TimeoutOnly,
			}),
			middleware.NewTimeoutMiddleware(opts.ReadTimeout),
		),
	)
}

// Research runs one grounded research call and extracts the company profile
// from the completion. Failures fall into three kinds: ErrUnsupportedData for
// a bad seed, *ExtractionError when the completion held no JSON object, and
// everything else for upstream trouble.
func (s *Service) Research(ctx context.Context, apiKey string, seed any, opts Options) (*Result, error) {
	opts.normalize()

	system, user, err := buildPrompts(seed)
	if err != nil {
		return nil, err
	}

	c, err := s.newClient(apiKey, opts)
	if err != nil {
		return nil, err
	}

	res, err := c.Generate(ctx, llm.Request{
		Model:     researchModel,
		System:    system,
		Prompt:    []string{user},
		WebSearch: true,
	})
	if err != nil {
		return nil, err
	}

	output, err := extract.Object(res.Text)
	if err != nil {
		return nil, &ExtractionError{Raw: res.Text, Err: err}
	}

	return &Result{Model: researchModel, Output: output}, nil
}
