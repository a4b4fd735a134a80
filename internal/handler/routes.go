package handler

import (
	"shippingbar-service/internal/identity"
	"shippingbar-service/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Settings *SettingsHandler
	Wix      *WixHandler
	OAuth    *OAuthHandler
	Products *ProductHandler
	Preview  *PreviewHandler
	Health   *HealthHandler
	Resolver *identity.Resolver
}

// RegisterRoutes mounts the public API on e
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/", Hello)
	e.GET("/health", h.Health.HealthCheck)

	// Dashboard API
	api := e.Group("/api")
	api.GET("/settings", h.Settings.GetSettingsFromQuery)
	api.GET("/settings/:instanceId", h.Settings.GetSettings)
	api.POST("/settings", h.Settings.SaveSettings)
	api.GET("/products", h.Products.SampleProducts)
	api.GET("/wix-products", h.Products.SearchProducts)
	api.POST("/preview", h.Preview.Render)

	// App install flow
	oauth := e.Group("/oauth")
	oauth.GET("/url", h.OAuth.InstallURL)
	oauth.GET("/redirect", h.OAuth.Redirect)

	// Editor and storefront endpoints
	wix := e.Group("/wix")
	wix.GET("/health", h.Wix.Health)

	wixAPI := wix.Group("/api", middleware.InstanceMiddleware(h.Resolver))
	wixAPI.GET("/get_userSettings", h.Wix.GetUserSettings)
	wixAPI.PUT("/put_updateSettings", h.Wix.UpdateSettings)
}
