package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"shippingbar-service/internal/identity"
	"shippingbar-service/internal/preview"
	"shippingbar-service/internal/settings"
	"shippingbar-service/pkg/logger"
	"shippingbar-service/pkg/wix"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP responses
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var verr *settings.ValidationError
	var serr *preview.StateError
	var apiErr *wix.APIError

	switch {
	case errors.Is(err, identity.ErrUnresolved):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Instance ID is required"})

	case errors.As(err, &verr):
		log.Info("Rejected settings update", zap.Any("fields", verr.Fields))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Invalid settings data",
			"errors": verr.Fields,
		})

	case errors.As(err, &serr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Invalid preview state",
			"errors": serr.Fields,
		})

	case errors.Is(err, settings.ErrConsistency):
		log.Error("Settings consistency violation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save settings"})

	case errors.Is(err, wix.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Wix integration is not configured"})

	case errors.Is(err, settings.ErrRefreshFailed), errors.As(err, &apiErr):
		log.Error("Wix request failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Wix request failed"})

	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
}

// bindError answers a body that could not be decoded. A value of the wrong
// JSON type is reported per field, like any other validation failure.
func bindError(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Failed to bind request body", zap.Error(err))

	var he *echo.HTTPError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &he) && errors.As(he.Internal, &ute) && ute.Field != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Invalid settings data",
			"errors": map[string]string{ute.Field: fmt.Sprintf("must be a %s", ute.Type)},
		})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
}
