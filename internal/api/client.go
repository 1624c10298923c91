package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/dyike/quantdesk/internal/models"
)

// CredentialSource supplies the current bearer token and clears it when
// the server reports expiry. The session store implements it.
type CredentialSource interface {
	Current() string
	Clear()
}

// ExpiryListener is notified exactly once per observed 401 response.
// The session coordinator implements it; its handling is idempotent.
type ExpiryListener interface {
	SessionExpired()
}

// Client is the authenticated gateway to the remote analysis service.
// Every authenticated call attaches the current credential and funnels
// 401 responses into the global expiry path.
type Client struct {
	http   *resty.Client
	creds  CredentialSource
	expiry ExpiryListener
}

// NewClient builds a gateway against the given base URL.
func NewClient(baseURL string, timeout time.Duration, creds CredentialSource, expiry ExpiryListener) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		creds:  creds,
		expiry: expiry,
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

// Login exchanges credentials for a bearer token. The caller stores the
// token; the gateway itself stays stateless about it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/api/login")
	if err != nil {
		return "", &NetworkError{Op: "login", Err: err}
	}

	if !resp.IsSuccess() {
		return "", &RequestError{
			StatusCode: resp.StatusCode(),
			Message:    detailMessage(resp.Body(), "login failed"),
		}
	}

	var out loginResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.AccessToken == "" {
		return "", &RequestError{StatusCode: resp.StatusCode(), Message: "login failed"}
	}

	log.Debug().Str("user", username).Msg("login succeeded")
	return out.AccessToken, nil
}

// Logout notifies the service on a best-effort basis. Any failure is
// ignored: logout must always succeed locally.
func (c *Client) Logout(ctx context.Context) {
	req := c.http.R().SetContext(ctx)
	if token := c.creds.Current(); token != "" {
		req.SetAuthToken(token)
	}
	if _, err := req.Post("/api/logout"); err != nil {
		log.Debug().Err(err).Msg("logout notification failed, ignoring")
	}
}

// Backtest runs a portfolio backtest and validates the returned payload
// before handing it to the caller.
func (c *Client) Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	var result models.BacktestResult
	if err := c.post(ctx, "backtest", "/api/backtest", req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "backtest failed"
		}
		return nil, &RequestError{Message: msg}
	}
	if err := result.Validate(); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("backtest result rejected: %v", err)}
	}
	return &result, nil
}

// Analyze runs the single-stock analysis workflow.
func (c *Client) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.post(ctx, "analyze", "/api/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeTeam runs the multi-agent team analysis workflow.
func (c *Client) AnalyzeTeam(ctx context.Context, req models.AnalysisRequest) (*models.TeamAnalysisResult, error) {
	var result models.TeamAnalysisResult
	if err := c.post(ctx, "analyze-team", "/api/analyze-team", req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &RequestError{Message: "team analysis failed"}
	}
	return &result, nil
}

// Health probes the service without authentication.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return &NetworkError{Op: "health", Err: err}
	}
	if !resp.IsSuccess() {
		return &RequestError{StatusCode: resp.StatusCode(), Message: "service unhealthy"}
	}
	return nil
}

// post performs an authenticated JSON POST. A 401 response clears the
// credential, notifies the expiry listener, and surfaces
// ErrSessionExpired so the caller does not also treat it as an ordinary
// failure.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetBody(body)
	if token := c.creds.Current(); token != "" {
		req.SetAuthToken(token)
	}

	start := time.Now()
	resp, err := req.Post(path)
	if err != nil {
		log.Warn().Err(err).Str("op", op).Msg("request transport failure")
		return &NetworkError{Op: op, Err: err}
	}

	log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode() == 401 {
		c.creds.Clear()
		c.expiry.SessionExpired()
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	if !resp.IsSuccess() {
		return &RequestError{
			StatusCode: resp.StatusCode(),
			Message:    detailMessage(resp.Body(), op+" failed"),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &RequestError{StatusCode: resp.StatusCode(), Message: op + " returned an unreadable response"}
	}
	return nil
}

// detailMessage extracts the server's {detail} message, falling back to
// a generic message when the body is empty or not parseable JSON.
func detailMessage(body []byte, fallback string) string {
	var detail errorDetail
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	return fallback
}
