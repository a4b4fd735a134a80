package wix

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"shippingbar-service/internal/model"
	"shippingbar-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.WixConfig{
		APIBaseURL:       srv.URL,
		OAuthURL:         srv.URL + "/oauth/access",
		InstallerURL:     "https://www.wix.com/installer/install",
		CloseWindowURL:   "https://www.wix.com/installer/close-window",
		AppID:            "app-id",
		AppSecret:        "app-secret",
		RedirectURL:      "https://bar.example/oauth/redirect",
		DataCollectionID: "ShippingBarSettings",
		Timeout:          2 * time.Second,
	}), srv
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(config.WixConfig{APIBaseURL: "http://x"})
	assert.False(t, c.Enabled())

	_, err := c.ExchangeCode(context.Background(), "code", "t-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.QueryProducts(context.Background(), Credentials{AccessToken: "a"}, "", 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.InstallURL("tok", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestClient_MissingCredentialsFailFast(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.QueryProducts(context.Background(), Credentials{InstanceID: "t-1"}, "", 10)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	err = c.SyncSettings(context.Background(), Credentials{InstanceID: "t-1"}, model.DefaultSettings("t-1"))
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = c.RefreshAccessToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = c.GetInstance(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	assert.False(t, called, "no request may be issued without credentials")
}

func TestClient_ExchangeCode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/access", r.URL.Path)
		assert.Equal(t, "t-1", r.URL.Query().Get("state"))
		assert.Empty(t, r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, "authorization_code", body["grant_type"])
		assert.Equal(t, "app-id", body["client_id"])
		assert.Equal(t, "app-secret", body["client_secret"])
		assert.Equal(t, "the-code", body["code"])

		_, _ = w.Write([]byte(`{"access_token":"acc","refresh_token":"ref"}`))
	})

	tokens, err := c.ExchangeCode(context.Background(), "the-code", "t-1")
	require.NoError(t, err)
	assert.Equal(t, &Tokens{AccessToken: "acc", RefreshToken: "ref"}, tokens)
}

func TestClient_RefreshAccessToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "old-refresh", body["refresh_token"])
		_, _ = w.Write([]byte(`{"access_token":"new-access"}`))
	})

	tokens, err := c.RefreshAccessToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Empty(t, tokens.RefreshToken)
}

func TestClient_NonSuccessCarriesStatusAndBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	})

	_, err := c.QueryProducts(context.Background(), Credentials{InstanceID: "t-1", AccessToken: "stale"}, "", 10)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, `{"message":"token expired"}`, apiErr.Body)
	assert.Equal(t, "query_products", apiErr.Operation)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "401")
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&APIError{StatusCode: 403}))
	assert.False(t, IsAuthError(&APIError{StatusCode: 500}))
	assert.False(t, IsAuthError(&APIError{StatusCode: 400}))
	assert.False(t, IsAuthError(errors.New("network")))
}

func TestClient_TokenResponseWithoutAccessToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.ExchangeCode(context.Background(), "code", "")
	assert.Error(t, err)
}

func TestClient_TimeoutIsAFailure(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.cfg.Timeout = 50 * time.Millisecond

	_, err := c.GetInstance(context.Background(), "acc")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsAuthError(err))
}

func TestClient_GetInstance(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/v1/instance", r.URL.Path)
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"instance":{"instanceId":"inst-9","appName":"Bar"},"site":{"siteDisplayName":"Shop","url":"https://shop.example","currency":"EUR"}}`))
	})

	info, err := c.GetInstance(context.Background(), "acc")
	require.NoError(t, err)
	assert.Equal(t, "inst-9", info.InstanceID)
	assert.Equal(t, "Shop", info.SiteDisplayName)
	assert.Equal(t, "EUR", info.Currency)
}

func TestClient_QueryProductsConvertsPrices(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores/v1/products/query", r.URL.Path)
		body := decodeBody(t, r)
		q := body["query"].(map[string]any)
		assert.Equal(t, float64(5), q["paging"].(map[string]any)["limit"])
		assert.JSONEq(t, `{"name":{"$startsWith":"mug"}}`, q["filter"].(string))

		_, _ = w.Write([]byte(`{"products":[
			{"id":"p1","name":"Mug","priceData":{"price":12.99},"media":{"mainMedia":{"image":{"url":"https://img/mug.jpg"}}}},
			{"id":"p2","name":"Cap","price":{"price":5}},
			{"name":"no id"}
		]}`))
	})

	products, err := c.QueryProducts(context.Background(), Credentials{InstanceID: "t-1", AccessToken: "acc"}, "mug", 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{
		{ID: "p1", Name: "Mug", Price: 1299, ImageURL: "https://img/mug.jpg"},
		{ID: "p2", Name: "Cap", Price: 500},
	}, products)
}

func TestClient_SyncSettingsCreatesWhenMissing(t *testing.T) {
	var created map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wix-data/v2/items/query":
			body := decodeBody(t, r)
			assert.Equal(t, "ShippingBarSettings", body["dataCollectionId"])
			_, _ = w.Write([]byte(`{"dataItems":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/wix-data/v2/items":
			created = decodeBody(t, r)
			_, _ = w.Write([]byte(`{"dataItem":{"id":"new"}}`))
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	})

	rec := model.DefaultSettings("t-1")
	rec.AccessToken = "secret-token"
	require.NoError(t, c.SyncSettings(context.Background(), Credentials{InstanceID: "t-1", AccessToken: "acc"}, rec))

	require.NotNil(t, created)
	data := created["dataItem"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "t-1", data["instanceId"])
	assert.Equal(t, float64(5000), data["threshold"])

	// groups travel as JSON strings
	var colors model.Colors
	require.NoError(t, json.Unmarshal([]byte(data["colors"].(string)), &colors))
	assert.Equal(t, rec.Colors, colors)

	raw, _ := json.Marshal(created)
	assert.NotContains(t, string(raw), "secret-token")
}

func TestClient_SyncSettingsUpdatesExisting(t *testing.T) {
	var updatedPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"dataItems":[{"id":"item/1"}]}`))
		case http.MethodPut:
			updatedPath = r.URL.EscapedPath()
			body := decodeBody(t, r)
			assert.Equal(t, "item/1", body["dataItem"].(map[string]any)["id"])
			_, _ = w.Write([]byte(`{}`))
		}
	})

	err := c.SyncSettings(context.Background(), Credentials{InstanceID: "t-1", AccessToken: "acc"}, model.DefaultSettings("t-1"))
	require.NoError(t, err)
	assert.Equal(t, "/wix-data/v2/items/"+url.PathEscape("item/1"), updatedPath)
}

func TestClient_InstallAndCloseURLs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	raw, err := c.InstallURL("tok en", "")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.wix.com", u.Host)
	assert.Equal(t, "tok en", u.Query().Get("token"))
	assert.Equal(t, "app-id", u.Query().Get("appId"))
	assert.Equal(t, "https://bar.example/oauth/redirect", u.Query().Get("redirectUrl"))

	assert.Equal(t, "https://www.wix.com/installer/close-window?access_token=a%2Bb", c.CloseWindowURL("a+b"))
}

func TestClient_EmbedScript(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/v1/scripts", r.URL.Path)
		body := decodeBody(t, r)
		params := body["properties"].(map[string]any)["parameters"].(map[string]any)
		assert.Equal(t, "t-1", params["instanceId"])
		w.WriteHeader(http.StatusCreated)
	})

	assert.NoError(t, c.EmbedScript(context.Background(), Credentials{InstanceID: "t-1", AccessToken: "acc"}))
}
