// Package zoho is the Zoho Creator glue: OAuth refresh-token plumbing and a
// thin client for the Creator report API. Access tokens are cached behind a
// mutex-guarded token source and refreshed five minutes before they expire,
// so concurrent request handlers never race on a stale token.
package zoho

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/paintedrobot/opsrelay/core/parse"
	"github.com/paintedrobot/opsrelay/internal/utils"
)

// scopeReportsRead is the consent scope requested for report access.
const scopeReportsRead = "ZohoCreator.reports.READ"

// earlyExpiry refreshes the cached access token this long before Zoho's
// reported expiry, so a token is never used at the edge of its lifetime.
const earlyExpiry = 5 * time.Minute

// Config carries the Zoho Creator OAuth client settings. All values come from
// the environment; nothing here is ever hardcoded in source.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	OwnerName    string
	AppName      string
	BaseURL      string // e.g. https://creator.zoho.com
	AccountsURL  string // e.g. https://accounts.zoho.com
	RedirectURL  string
}

// TokenGrant is the result of exchanging an authorization code.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Health summarizes the client configuration for the health endpoint without
// leaking credentials.
type Health struct {
	AppOwner        string `json:"app_owner"`
	AppName         string `json:"app_name"`
	HasRefreshToken bool   `json:"has_refresh_token"`
}

// Client calls the Zoho Creator API with a cached, auto-refreshed access token.
type Client struct {
	cfg        Config
	oauth      *oauth2.Config
	tokens     oauth2.TokenSource
	httpClient *http.Client
}

// New builds a Client from cfg. The refresh token becomes the seed of an
// oauth2 token source; oauth2.ReuseTokenSourceWithExpiry provides the
// thread-safe caching and early refresh.
func New(cfg Config) *Client {
	httpClient := utils.NewHTTPClient(0)

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{scopeReportsRead},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AccountsURL + "/oauth/v2/auth",
			TokenURL: cfg.AccountsURL + "/oauth/v2/token",
			// Zoho expects client credentials in the POST body, not basic auth.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	// Route token refreshes through our transport-configured client.
	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	base := oc.TokenSource(refreshCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	return &Client{
		cfg:        cfg,
		oauth:      oc,
		tokens:     oauth2.ReuseTokenSourceWithExpiry(nil, base, earlyExpiry),
		httpClient: httpClient,
	}
}

// Report fetches a Creator report, optionally filtered by criteria, and
// returns the decoded response. Zoho payloads are not always strict JSON, so
// decoding goes through the tolerant parser.
func (c *Client) Report(ctx context.Context, report, criteria string) (map[string]any, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("error getting access token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v2/%s/%s/report/%s",
		c.cfg.BaseURL, c.cfg.OwnerName, c.cfg.AppName, url.PathEscape(report))
	if criteria != "" {
		endpoint += "?criteria=" + url.QueryEscape(criteria)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling Zoho API: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading Zoho response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, utils.TruncateString(string(body), 500))
	}

	data, err := parse.As[map[string]any](string(body))
	if err != nil {
		return nil, fmt.Errorf("error decoding Zoho response: %w", err)
	}
	return data, nil
}

// ExchangeCode swaps an authorization code for a token grant. The refresh
// token in the result is empty when Zoho did not issue one (for example when
// the consent was not requested with offline access).
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("error exchanging authorization code: %w", err)
	}

	grant := &TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		grant.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return grant, nil
}

// AuthCodeURL returns the consent URL a user must visit to generate an
// authorization code with offline access.
func (c *Client) AuthCodeURL() string {
	return c.oauth.AuthCodeURL("", oauth2.AccessTypeOffline)
}

// Health reports the non-secret parts of the configuration.
func (c *Client) Health() Health {
	return Health{
		AppOwner:        c.cfg.OwnerName,
		AppName:         c.cfg.AppName,
		HasRefreshToken: c.cfg.RefreshToken != "",
	}
}
