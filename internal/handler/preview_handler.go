package handler

import (
	"net/http"
	"strings"

	"shippingbar-service/internal/model"
	"shippingbar-service/internal/preview"
	"shippingbar-service/internal/settings"

	"github.com/labstack/echo/v4"
)

// draftInstance names the record a preview is rendered from when no tenant is given
const draftInstance = "preview"

// PreviewRequest renders a bar from stored settings, optionally overlaid with
// unsaved edits. Nothing is persisted.
type PreviewRequest struct {
	InstanceID string               `json:"instanceId"`
	Settings   *model.SettingsPatch `json:"settings"`
	Preview    *model.PreviewState  `json:"preview"`
}

// PreviewHandler renders the live preview
type PreviewHandler struct {
	svc *settings.Service
}

// NewPreviewHandler creates a preview handler
func NewPreviewHandler(svc *settings.Service) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

// Render handles POST /api/preview
func (h *PreviewHandler) Render(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	rec := model.DefaultSettings(draftInstance)
	if id := strings.TrimSpace(req.InstanceID); id != "" {
		stored, err := h.svc.SettingsOrDefault(c.Request().Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		rec = stored
	}

	if req.Settings != nil {
		draft := *req.Settings
		if draft.InstanceID == "" {
			draft.InstanceID = rec.InstanceID
		}
		if err := h.svc.Validate(rec.InstanceID, &draft); err != nil {
			return respondError(c, err)
		}
		draft.AccessToken, draft.RefreshToken = nil, nil
		draft.ApplyTo(rec)
	}

	state := model.DefaultPreviewState()
	if req.Preview != nil {
		state = *req.Preview
	}

	view, err := preview.Render(rec, state)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
