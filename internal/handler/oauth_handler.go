package handler

import (
	"context"
	"net/http"
	"strings"

	"shippingbar-service/internal/model"
	"shippingbar-service/internal/settings"
	"shippingbar-service/pkg/logger"
	"shippingbar-service/pkg/wix"
	"shippingbar-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OAuthGateway is the part of the Wix client the install flow uses
type OAuthGateway interface {
	InstallURL(token, redirectURL string) (string, error)
	CloseWindowURL(accessToken string) string
	ExchangeCode(ctx context.Context, code, instanceID string) (*wix.Tokens, error)
	GetInstance(ctx context.Context, accessToken string) (*wix.InstanceInfo, error)
	EmbedScript(ctx context.Context, creds wix.Credentials) error
}

// OAuthHandler drives the Wix app install flow
type OAuthHandler struct {
	gateway OAuthGateway
	svc     *settings.Service
}

// NewOAuthHandler creates an OAuth handler
func NewOAuthHandler(gateway OAuthGateway, svc *settings.Service) *OAuthHandler {
	return &OAuthHandler{gateway: gateway, svc: svc}
}

// InstallURL handles GET /oauth/url by redirecting to the Wix installer
func (h *OAuthHandler) InstallURL(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	target, err := h.gateway.InstallURL(token, "")
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(http.StatusFound, target)
}

// Redirect handles GET /oauth/redirect, the landing point after consent.
// Tokens are stored against the instance before the storefront script is
// embedded; the embed is best-effort.
func (h *OAuthHandler) Redirect(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Authorization code is required"})
	}
	instanceID := strings.TrimSpace(c.QueryParam("instanceId"))
	if instanceID == "" {
		instanceID = strings.TrimSpace(c.QueryParam("state"))
	}

	tokens, err := h.gateway.ExchangeCode(ctx, code, instanceID)
	if err != nil {
		log.Error("Authorization code exchange failed", zap.Error(err))
		return respondError(c, err)
	}

	if instanceID == "" {
		info, err := h.gateway.GetInstance(ctx, tokens.AccessToken)
		if err != nil {
			log.Error("Instance lookup failed", zap.Error(err))
			return respondError(c, err)
		}
		instanceID = info.InstanceID
	}

	rec, err := h.svc.StoreCredentials(ctx, instanceID, tokens)
	if err != nil {
		return respondError(c, err)
	}
	log = log.With(zap.String("instance_id", instanceID))
	log.Info("App installed")

	h.embedScript(ctx, log, rec)

	return c.Redirect(http.StatusFound, h.gateway.CloseWindowURL(rec.AccessToken))
}

func (h *OAuthHandler) embedScript(ctx context.Context, log *zap.Logger, rec *model.SettingsRecord) {
	err := h.svc.WithCredentials(ctx, rec, func(creds wix.Credentials) error {
		return h.gateway.EmbedScript(ctx, creds)
	})
	if err != nil {
		prometheus.RecordBestEffortFailure("embed_script")
		log.Warn("Embedding storefront script failed", zap.String("operation", "embed_script"), zap.Error(err))
	}
}
