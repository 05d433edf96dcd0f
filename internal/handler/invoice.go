package handler

import (
	"fmt"
	"net/http"

	"hosting-storefront/internal/middleware"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

func (h *InvoiceHandler) ListMyInvoices(c echo.Context) error {
	invoices, err := h.invoiceService.ListForUser(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) ListAllInvoices(c echo.Context) error {
	invoices, err := h.invoiceService.ListAll(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	invoice, err := h.invoiceService.Get(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) DownloadPDF(c echo.Context) error {
	invoice, doc, err := h.invoiceService.RenderPDF(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=invoice_%s.pdf", invoice.InvoiceNumber))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
