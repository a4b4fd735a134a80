package handler

import (
	"net/http"
	"time"

	"shippingbar-service/internal/middleware"
	"shippingbar-service/internal/model"
	"shippingbar-service/internal/settings"

	"github.com/labstack/echo/v4"
)

// APIVersion is reported by /wix/health
const APIVersion = "1.0.0"

// WixHandler serves the endpoints called from inside the Wix editor and site.
// Routes are expected behind middleware.InstanceMiddleware.
type WixHandler struct {
	svc *settings.Service
	now func() time.Time
}

// NewWixHandler creates a Wix handler
func NewWixHandler(svc *settings.Service) *WixHandler {
	return &WixHandler{svc: svc, now: time.Now}
}

// GetUserSettings handles GET /wix/api/get_userSettings
func (h *WixHandler) GetUserSettings(c echo.Context) error {
	res, ok := middleware.InstanceFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Instance ID is required"})
	}

	rec, err := h.svc.ResolveSettings(c.Request().Context(), res.InstanceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// UpdateSettings handles PUT /wix/api/put_updateSettings
func (h *WixHandler) UpdateSettings(c echo.Context) error {
	res, ok := middleware.InstanceFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Instance ID is required"})
	}

	var patch model.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return bindError(c, err)
	}

	rec, err := h.svc.ApplySettingsUpdate(c.Request().Context(), res.InstanceID, &patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Health handles GET /wix/health
func (h *WixHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"version":   APIVersion,
	})
}
