package handler

import (
	"net/http"

	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	reportService service.ReportService
}

func NewAdminHandler(reportService service.ReportService) *AdminHandler {
	return &AdminHandler{
		reportService: reportService,
	}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.reportService.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) SalesReport(c echo.Context) error {
	report, err := h.reportService.SalesReport(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
