package handler

import (
	"net/http"
	"strings"

	"shippingbar-service/internal/identity"
	"shippingbar-service/internal/middleware"
	"shippingbar-service/internal/model"
	"shippingbar-service/internal/settings"

	"github.com/labstack/echo/v4"
)

// SettingsHandler serves the dashboard settings API
type SettingsHandler struct {
	svc      *settings.Service
	resolver *identity.Resolver
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(svc *settings.Service, resolver *identity.Resolver) *SettingsHandler {
	return &SettingsHandler{svc: svc, resolver: resolver}
}

// GetSettings handles GET /api/settings/:instanceId
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	instanceID := strings.TrimSpace(c.Param("instanceId"))
	if instanceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Instance ID is required"})
	}
	return h.resolveAndRespond(c, instanceID)
}

// GetSettingsFromQuery handles GET /api/settings, deriving the tenant from
// the iframe query parameters
func (h *SettingsHandler) GetSettingsFromQuery(c echo.Context) error {
	res, err := middleware.ResolveIdentity(c, h.resolver)
	if err != nil {
		return respondError(c, err)
	}
	return h.resolveAndRespond(c, res.InstanceID)
}

func (h *SettingsHandler) resolveAndRespond(c echo.Context, instanceID string) error {
	rec, err := h.svc.ResolveSettings(c.Request().Context(), instanceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// SaveSettings handles POST /api/settings. The tenant is the one named by
// the query parameters when they resolve, otherwise the body's instanceId.
func (h *SettingsHandler) SaveSettings(c echo.Context) error {
	var patch model.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return bindError(c, err)
	}

	instanceID := patch.InstanceID
	if res, err := h.resolver.Resolve(middleware.IdentityParams(c)); err == nil && !res.IsFallback() {
		instanceID = res.InstanceID
	}

	rec, err := h.svc.ApplySettingsUpdate(c.Request().Context(), instanceID, &patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
