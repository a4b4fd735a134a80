package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shippingbar-service/pkg/config"
	"shippingbar-service/prometheus"
)

var (
	// ErrNotConfigured is returned when the app id, secret or base URL is unset
	ErrNotConfigured = errors.New("wix gateway is not configured")
	// ErrMissingCredentials is returned instead of issuing an unauthenticated call
	ErrMissingCredentials = errors.New("missing wix credentials")
)

// APIError is a non-success response from the Wix API. Body is kept verbatim.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Operation, e.StatusCode, e.Body)
}

// IsAuthError reports whether err is a 401 or 403 from the Wix API
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Credentials is the per-instance token bundle. Either token may be empty.
type Credentials struct {
	InstanceID   string
	AccessToken  string
	RefreshToken string
}

// Tokens is the result of a code exchange or a refresh
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client talks to the Wix REST API. It never retries on its own.
type Client struct {
	cfg        config.WixConfig
	HTTPClient *http.Client
}

// NewClient creates a new Wix API client
func NewClient(cfg config.WixConfig) *Client {
	return &Client{
		cfg:        cfg,
		HTTPClient: &http.Client{},
	}
}

// Enabled reports whether calls will be attempted
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled()
}

// InstallURL builds the installer URL the user agent is sent to from /oauth/url
func (c *Client) InstallURL(token, redirectURL string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	if redirectURL == "" {
		redirectURL = c.cfg.RedirectURL
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("appId", c.cfg.AppID)
	q.Set("redirectUrl", redirectURL)
	return c.cfg.InstallerURL + "?" + q.Encode(), nil
}

// CloseWindowURL is where the user agent lands once the install completes
func (c *Client) CloseWindowURL(accessToken string) string {
	return c.cfg.CloseWindowURL + "?access_token=" + url.QueryEscape(accessToken)
}

// ExchangeCode trades an authorization code for access and refresh tokens
func (c *Client) ExchangeCode(ctx context.Context, code, instanceID string) (*Tokens, error) {
	if code == "" {
		return nil, ErrMissingCredentials
	}
	endpoint := c.cfg.OAuthURL
	if instanceID != "" {
		endpoint += "?state=" + url.QueryEscape(instanceID)
	}
	return c.requestToken(ctx, "exchange_code", endpoint, map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	})
}

// RefreshAccessToken obtains a new access token. The returned refresh token
// may be empty, in which case the caller keeps the old one.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrMissingCredentials
	}
	return c.requestToken(ctx, "refresh_token", c.cfg.OAuthURL, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (c *Client) requestToken(ctx context.Context, operation, endpoint string, params map[string]string) (*Tokens, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	body := map[string]string{
		"client_id":     c.cfg.AppID,
		"client_secret": c.cfg.AppSecret,
	}
	for k, v := range params {
		body[k] = v
	}

	respBody, err := c.do(ctx, operation, http.MethodPost, endpoint, "", body)
	if err != nil {
		return nil, err
	}

	var tokens Tokens
	if err := json.Unmarshal(respBody, &tokens); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", operation, err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carried no access token", operation)
	}
	return &tokens, nil
}

// CallAPI makes an authenticated call to a path under the API base URL
func (c *Client) CallAPI(ctx context.Context, operation, method, path, accessToken string, payload any) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if accessToken == "" {
		return nil, ErrMissingCredentials
	}
	return c.do(ctx, operation, method, c.cfg.APIBaseURL+path, accessToken, payload)
}

func (c *Client) do(ctx context.Context, operation, method, endpoint, accessToken string, payload any) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", operation, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		prometheus.RecordGatewayRequest(operation, 0)
		return nil, fmt.Errorf("%s: request failed after %s: %w", operation, time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()
	prometheus.RecordGatewayRequest(operation, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", operation, err)
	}

	if resp.StatusCode >= 300 {
		return nil, &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	return respBody, nil
}
