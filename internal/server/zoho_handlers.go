package server

import (
	"net/http"
	"time"
)

func (s *Server) handleZohoReport(w http.ResponseWriter, r *http.Request) {
	report := r.PathValue("report")
	criteria := r.URL.Query().Get("criteria")

	data, err := s.deps.Zoho.Report(r.Context(), report, criteria)
	if err != nil {
		s.deps.Logger.Error("Zoho report fetch failed", "report", report, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleZohoHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"config":    s.deps.Zoho.Health(),
	})
}

func (s *Server) handleZohoAuthURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"auth_url": s.deps.Zoho.AuthCodeURL(),
		"instructions": []string{
			"1. Open the auth_url in your browser",
			"2. Authorize the application",
			"3. Copy the \"code\" parameter from the redirect URL",
			"4. Use POST /api/zoho/generate-refresh-token with the code",
		},
	})
}

func (s *Server) handleZohoGenerateRefreshToken(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	code, _ := body["code"].(string)
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Authorization code is required",
		})
		return
	}

	grant, err := s.deps.Zoho.ExchangeCode(r.Context(), code)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if grant.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "No refresh token in response",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"refresh_token": grant.RefreshToken,
		"access_token":  grant.AccessToken,
		"expires_in":    grant.ExpiresIn,
		"message":       "Copy the refresh_token into the ZOHO_REFRESH_TOKEN environment variable",
	})
}

func (s *Server) handleZohoCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "No authorization code received",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Authorization successful! Copy the code parameter and use it with the generate-refresh-token endpoint.",
		"code":    code,
	})
}
