package handler

import (
	"net/http"

	"shippingbar-service/internal/catalog"
	"shippingbar-service/internal/identity"
	"shippingbar-service/internal/middleware"

	"github.com/labstack/echo/v4"
)

// ProductHandler serves the recommendation picker
type ProductHandler struct {
	catalog  *catalog.Catalog
	resolver *identity.Resolver
}

// NewProductHandler creates a product handler
func NewProductHandler(cat *catalog.Catalog, resolver *identity.Resolver) *ProductHandler {
	return &ProductHandler{catalog: cat, resolver: resolver}
}

// SampleProducts handles GET /api/products
func (h *ProductHandler) SampleProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"products": catalog.SampleProducts(c.QueryParam("query")),
	})
}

// SearchProducts handles GET /api/wix-products
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	res, err := middleware.ResolveIdentity(c, h.resolver)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.catalog.Search(c.Request().Context(), res.InstanceID, c.QueryParam("query"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
