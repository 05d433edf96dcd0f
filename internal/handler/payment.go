package handler

import (
	"io"
	"net/http"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/middleware"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateSession(c echo.Context) error {
	var req dto.PaymentSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.paymentService.CreateSession(c.Request().Context(), middleware.RequesterFrom(c), req.OrderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CompleteMock(c echo.Context) error {
	resp, err := h.paymentService.CompleteMock(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Webhook receives gateway notifications. The body is read raw because the
// signature covers its canonical form.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apperror.BadRequest("cannot read body")
	}

	if err := h.paymentService.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get("X-Signature")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PaymentHandler) GatewayStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.paymentService.GatewayStatus(c.Request().Context()))
}
