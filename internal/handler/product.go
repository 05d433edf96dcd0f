package handler

import (
	"net/http"
	"strconv"

	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	catalogService service.CatalogService
}

func NewProductHandler(catalogService service.CatalogService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
	}
}

// ListProducts serves GET /products?category=hosting&active_only=false.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	activeOnly := true
	if v := c.QueryParam("active_only"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			activeOnly = parsed
		}
	}

	products, err := h.catalogService.List(c.Request().Context(), c.QueryParam("category"), activeOnly)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.catalogService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req dto.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req dto.ProductUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.Update(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.catalogService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Product deleted"})
}
