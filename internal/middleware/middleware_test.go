package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"shippingbar-service/internal/identity"
	"shippingbar-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instanceToken(id string) string {
	return "sig." + base64.RawURLEncoding.EncodeToString([]byte(`{"instanceId":"`+id+`"}`))
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(logger.RequestIDKey).(string))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(logger.RequestIDKey)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "given")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get(logger.RequestIDKey))
}

func newInstanceEcho(resolver *identity.Resolver) *echo.Echo {
	e := echo.New()
	e.GET("/who", func(c echo.Context) error {
		res, ok := InstanceFromContext(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, res)
	}, InstanceMiddleware(resolver))
	return e
}

func TestInstanceMiddleware_AuthorizationHeader(t *testing.T) {
	e := newInstanceEcho(identity.NewResolver())

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(echo.HeaderAuthorization, "Instance "+instanceToken("hdr"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"instanceId":"hdr","source":"instance_token"}`, rec.Body.String())
}

func TestInstanceMiddleware_QueryBeatsHeader(t *testing.T) {
	e := newInstanceEcho(identity.NewResolver())

	req := httptest.NewRequest(http.MethodGet, "/who?instanceId=q", nil)
	req.Header.Set(echo.HeaderAuthorization, "Instance "+instanceToken("hdr"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"instanceId":"q","source":"param"}`, rec.Body.String())
}

func TestInstanceMiddleware_Unresolved(t *testing.T) {
	e := newInstanceEcho(identity.NewResolver())

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer something")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Instance ID is required")
}

func TestInstanceMiddleware_DevelopmentDefault(t *testing.T) {
	e := newInstanceEcho(identity.NewResolver(identity.WithDefaultInstance("demo")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))

	assert.JSONEq(t, `{"instanceId":"demo","source":"default"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS([]string{"https://manage.wix.com"}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	cases := map[string]bool{
		"https://manage.wix.com": true,
		"http://localhost:5173":  true,
		"http://127.0.0.1:3000":  true,
		"https://evil.example":   false,
	}
	for origin, allowed := range cases {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if allowed {
			assert.Equal(t, origin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), origin)
			assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
		} else {
			assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), origin)
		}
	}
}
