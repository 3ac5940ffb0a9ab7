package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/paintedrobot/opsrelay/internal/brief"
	"github.com/paintedrobot/opsrelay/internal/research"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"Choo Choo": "Welcome aboard 🚅"})
}

// requiredResearchKeys must all be present in a /validation_ai body. The
// OpenAI key is validated for presence only; the upstream workflow always
// sends it alongside the Gemini key.
var requiredResearchKeys = []string{"OpenAI_Key", "Gemini_Key", "data"}

func (s *Server) handleValidationAI(w http.ResponseWriter, r *http.Request) {
	payload := decodeBody(r)

	var missing []string
	for _, key := range requiredResearchKeys {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Missing required keys",
			"missing": missing,
		})
		return
	}

	geminiKey := stringify(payload["Gemini_Key"])
	opts := research.Options{
		ReadTimeout:    secondsOr(payload["Timeout_Seconds"], 0),
		ConnectTimeout: secondsOr(payload["Connect_Timeout_Seconds"], 0),
	}

	result, err := s.deps.Research.Research(r.Context(), geminiKey, payload["data"], opts)
	if err != nil {
		var extractErr *research.ExtractionError
		switch {
		case errors.Is(err, research.ErrUnsupportedData):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"status":  "error",
				"message": err.Error(),
			})
		case errors.As(err, &extractErr):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"status":     "error",
				"message":    "Model output was not valid JSON object",
				"details":    extractErr.Err.Error(),
				"raw_output": extractErr.Raw,
			})
		default:
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"status":  "error",
				"message": "Gemini API request failed",
				"details": err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  result.Model,
		"output": result.Output,
	})
}

func (s *Server) handleDailyBrief(w http.ResponseWriter, r *http.Request) {
	payload := decodeBody(r)

	// Upstream workflows send the date as a string but nothing guarantees it;
	// any non-empty value counts, like the key fields.
	date := stringify(payload["date"])
	if date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Missing required field: date",
		})
		return
	}
	users, _ := payload["users"].([]any)
	if len(users) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Missing required field: users",
		})
		return
	}

	// Key from the payload wins; the environment is the fallback.
	apiKey := strings.TrimSpace(stringify(payload["Anthropic_Key"]))
	if apiKey == "" {
		apiKey = strings.TrimSpace(s.deps.Config.AnthropicKey)
	}
	if apiKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Missing Anthropic API key. Provide Anthropic_Key in payload or set ANTHROPIC_KEY environment variable.",
		})
		return
	}

	callbackURL, _ := payload["callback_url"].(string)

	// Credentials and the callback URL never reach the model.
	clean := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "Anthropic_Key" || k == "callback_url" {
			continue
		}
		clean[k] = v
	}

	job := brief.Job{
		ID:          uuid.NewString(),
		Payload:     brief.Transform(clean),
		APIKey:      apiKey,
		CallbackURL: callbackURL,
	}
	s.spawn(func() { s.deps.Brief.Run(job) })

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "accepted",
		"message": "Daily brief processing started",
		"date":    date,
		"job_id":  job.ID,
	})
}

// stringify mirrors loose payload handling: strings pass through, anything
// else is rendered, absent values become empty. JSON numbers arrive as
// float64 and are rendered without an exponent.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}
