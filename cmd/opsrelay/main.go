// Command opsrelay serves the operations relay: daily-brief generation,
// company research, and the Zoho Creator proxy.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/paintedrobot/opsrelay/internal/brief"
	"github.com/paintedrobot/opsrelay/internal/config"
	"github.com/paintedrobot/opsrelay/internal/research"
	"github.com/paintedrobot/opsrelay/internal/server"
	"github.com/paintedrobot/opsrelay/internal/zoho"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()

	srv := server.New(server.Deps{
		Logger:   logger,
		Config:   cfg,
		Brief:    brief.NewService(logger),
		Research: research.NewService(logger),
		Zoho: zoho.New(zoho.Config{
			ClientID:     cfg.ZohoClientID,
			ClientSecret: cfg.ZohoClientSecret,
			RefreshToken: cfg.ZohoRefreshToken,
			OwnerName:    cfg.ZohoOwnerName,
			AppName:      cfg.ZohoAppName,
			BaseURL:      cfg.ZohoBaseURL,
			AccountsURL:  cfg.ZohoAccountsURL,
			RedirectURL:  cfg.ZohoRedirectURL,
		}),
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
		// Research responses can take minutes to write; only the header read
		// gets a server-side deadline.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("opsrelay listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
