package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shippingbar-service/internal/identity"
	"shippingbar-service/pkg/logger"
	"shippingbar-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InstanceKey is the echo context key holding the identity.Resolution
const InstanceKey = "instance"

const instanceAuthScheme = "Instance "

// IdentityParams collects the identity inputs of a request: the query string,
// plus the token of an "Authorization: Instance <token>" header when the query
// carries no instance token of its own.
func IdentityParams(c echo.Context) map[string]string {
	params := make(map[string]string, 3)
	for _, key := range []string{identity.ParamInstanceID, identity.ParamInstance, identity.ParamAuthorizationCode} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if params[identity.ParamInstance] == "" && strings.HasPrefix(auth, instanceAuthScheme) {
		params[identity.ParamInstance] = strings.TrimSpace(strings.TrimPrefix(auth, instanceAuthScheme))
	}
	return params
}

// ResolveIdentity runs the resolver over the request and records the outcome
func ResolveIdentity(c echo.Context, resolver *identity.Resolver) (identity.Resolution, error) {
	res, err := resolver.Resolve(IdentityParams(c))
	if err != nil {
		prometheus.RecordIdentityResolution("unresolved")
		return res, err
	}
	prometheus.RecordIdentityResolution(string(res.Source))

	log := logger.FromContext(c).With(zap.String("instance_id", res.InstanceID))
	if res.IsFallback() {
		log.Warn("Using development default instance")
	}
	c.Set(logger.ContextKey, log)
	c.Set(InstanceKey, res)
	return res, nil
}

// InstanceMiddleware rejects requests whose tenant cannot be identified
func InstanceMiddleware(resolver *identity.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := ResolveIdentity(c, resolver); err != nil {
				if errors.Is(err, identity.ErrUnresolved) {
					logger.FromContext(c).Warn("Rejected request without instance identity")
					return c.JSON(http.StatusUnauthorized, echo.Map{
						"error": "Instance ID is required",
					})
				}
				return err
			}
			return next(c)
		}
	}
}

// InstanceFromContext returns the resolution stored by InstanceMiddleware
func InstanceFromContext(c echo.Context) (identity.Resolution, bool) {
	res, ok := c.Get(InstanceKey).(identity.Resolution)
	return res, ok
}
